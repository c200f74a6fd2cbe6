package review

import (
	"fmt"

	"github.com/felixgeelhaar/codementor/internal/domain"
)

// Summarize renders the one-sentence verdict for a set of findings
func Summarize(lang domain.Language, findings []domain.Finding) string {
	return fmt.Sprintf("Hard review: %d high-signal issues found in %s code.", len(findings), lang.Label())
}
