package review

import (
	"strings"

	"github.com/felixgeelhaar/codementor/internal/domain"
)

// Engine produces hard reviews. Its check table is read-only after
// construction, so a single Engine is safe for concurrent use.
type Engine struct {
	checks []check
}

// NewEngine creates an engine with the default check battery
func NewEngine() *Engine {
	return &Engine{checks: defaultChecks()}
}

// Classify returns the findings for a snippet, in detection order
func (e *Engine) Classify(code string) []domain.Finding {
	return classify(e.checks, strings.TrimSpace(code))
}

// Generate reviews a snippet. It accepts any string, including an empty one,
// and always returns at least one finding and the base next steps.
func (e *Engine) Generate(lang domain.Language, code string) domain.ReviewResult {
	findings := e.Classify(code)

	return domain.ReviewResult{
		Summary:   Summarize(lang, findings),
		Severity:  domain.SeverityHard,
		Findings:  findings,
		NextSteps: NextSteps(findings),
	}
}

var defaultEngine = NewEngine()

// GenerateReview reviews a snippet with the default engine
func GenerateReview(lang domain.Language, code string) domain.ReviewResult {
	return defaultEngine.Generate(lang, code)
}
