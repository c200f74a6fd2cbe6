package review

import (
	"regexp"

	"github.com/felixgeelhaar/codementor/internal/domain"
)

// matcher decides whether a check fires for the given code
type matcher func(re *regexp.Regexp, code string) bool

// check is a single pattern in the classifier battery
type check struct {
	ID      string
	Regex   *regexp.Regexp
	Match   matcher
	Finding domain.Finding
}

// fallbackFinding is reported when no check fired
var fallbackFinding = domain.Finding{
	Type:    domain.FindingDesign,
	Title:   "Missing validation for incoming inputs",
	Explain: "The code accepts inputs without validation, which makes edge cases and abuse likely.",
	Fix:     "Validate expected fields and reject malformed input early.",
}

func matchAny(re *regexp.Regexp, code string) bool {
	return re.MatchString(code)
}

// matchAbsent fires when there is code and the pattern never occurs in it.
// An empty snippet has no failure paths to handle.
func matchAbsent(re *regexp.Regexp, code string) bool {
	return code != "" && !re.MatchString(code)
}

// matchAtLeast fires when the pattern occurs n or more times in total
func matchAtLeast(n int) matcher {
	return func(re *regexp.Regexp, code string) bool {
		return len(re.FindAllStringIndex(code, n)) >= n
	}
}

// defaultChecks returns the battery in detection order. The order only
// affects the order of findings in the result.
func defaultChecks() []check {
	return []check{
		{
			ID:    "SEC001",
			Regex: regexp.MustCompile(`\b(eval|exec|Function)\s*\(`),
			Match: matchAny,
			Finding: domain.Finding{
				Type:    domain.FindingSecurity,
				Title:   "Dynamic code execution introduces critical risk",
				Explain: "Using eval/exec allows untrusted input to run arbitrary code, which is a common exploit vector.",
				Fix:     "Remove dynamic execution and replace with explicit, validated logic paths.",
			},
		},
		{
			ID:    "DES001",
			Regex: regexp.MustCompile(`\b(TODO|FIXME)\b`),
			Match: matchAny,
			Finding: domain.Finding{
				Type:    domain.FindingDesign,
				Title:   "Deferred work left in the critical path",
				Explain: "TODO/FIXME markers indicate incomplete logic that will ship to production without guardrails.",
				Fix:     "Resolve the TODOs or feature-flag the incomplete path so it cannot execute unintentionally.",
			},
		},
		{
			ID:    "STY001",
			Regex: regexp.MustCompile(`\b(console\.log|print)\s*\(`),
			Match: matchAny,
			Finding: domain.Finding{
				Type:         domain.FindingStyle,
				Title:        "Debug logging left in runtime path",
				Explain:      "Console output in hot paths increases noise and can leak sensitive data in production logs.",
				Fix:          "Remove debug statements or replace with structured logging at a controlled level.",
				ExamplePatch: "// Remove console.log/print statements or replace with logger.debug(...)\n",
			},
		},
		{
			// for and while are counted together
			ID:    "PERF001",
			Regex: regexp.MustCompile(`\b(for|while)\b`),
			Match: matchAtLeast(2),
			Finding: domain.Finding{
				Type:    domain.FindingPerformance,
				Title:   "Nested looping may cause quadratic behavior",
				Explain: "Multiple loops over unbounded input can degrade performance quickly under load.",
				Fix:     "Precompute lookups, use hash maps, or short-circuit early to reduce complexity.",
			},
		},
		{
			ID:    "BUG001",
			Regex: regexp.MustCompile(`\b(try\s*\{|try:|catch\s*\()`),
			Match: matchAbsent,
			Finding: domain.Finding{
				Type:    domain.FindingBug,
				Title:   "No explicit error handling for failure paths",
				Explain: "Unhandled errors will crash the request or return inconsistent data to callers.",
				Fix:     "Add structured error handling and surface actionable error messages to the caller.",
			},
		},
	}
}

// classify runs every check against already-trimmed code.
// The result is never empty.
func classify(checks []check, code string) []domain.Finding {
	findings := make([]domain.Finding, 0, len(checks))

	for _, c := range checks {
		if c.Match(c.Regex, code) {
			findings = addFinding(findings, c.Finding)
		}
	}

	if len(findings) == 0 {
		findings = addFinding(findings, fallbackFinding)
	}

	return findings
}

// addFinding appends f unless its type is not a recognized finding type
func addFinding(findings []domain.Finding, f domain.Finding) []domain.Finding {
	if !f.Type.Valid() {
		return findings
	}
	return append(findings, f)
}
