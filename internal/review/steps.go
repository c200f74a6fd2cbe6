package review

import "github.com/felixgeelhaar/codementor/internal/domain"

// Remediation steps. The first three are always included.
const (
	StepTests      = "Add tests that cover edge cases and failure paths."
	StepDocument   = "Document any assumptions and constraints in code comments."
	StepRefactor   = "Refactor the most complex function into smaller units."
	StepSanitize   = "Add input validation and sanitize untrusted data before execution."
	StepProfile    = "Profile hot paths and set explicit performance targets."
	StepBoundaries = "Clarify responsibilities between modules and enforce boundaries."
)

// conditionalSteps are added in this order when a finding of the type exists
var conditionalSteps = []struct {
	Type domain.FindingType
	Step string
}{
	{domain.FindingSecurity, StepSanitize},
	{domain.FindingPerformance, StepProfile},
	{domain.FindingDesign, StepBoundaries},
}

// NextSteps derives the unique, order-stable remediation list for findings
func NextSteps(findings []domain.Finding) []string {
	steps := newOrderedSet(StepTests, StepDocument, StepRefactor)

	present := make(map[domain.FindingType]bool, len(findings))
	for _, f := range findings {
		present[f.Type] = true
	}

	for _, cs := range conditionalSteps {
		if present[cs.Type] {
			steps.Add(cs.Step)
		}
	}

	return steps.Values()
}

// orderedSet keeps the first insertion position of each value
type orderedSet struct {
	values []string
	seen   map[string]struct{}
}

func newOrderedSet(values ...string) *orderedSet {
	s := &orderedSet{seen: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v if it is not present yet
func (s *orderedSet) Add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

// Values returns a copy of the set contents in insertion order
func (s *orderedSet) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}
