package domain

import "slices"

// FindingType classifies a finding
type FindingType string

const (
	FindingBug         FindingType = "bug"
	FindingSecurity    FindingType = "security"
	FindingPerformance FindingType = "performance"
	FindingDesign      FindingType = "design"
	FindingStyle       FindingType = "style"
)

// AllFindingTypes returns the closed set of recognized finding types
func AllFindingTypes() []FindingType {
	return []FindingType{
		FindingBug,
		FindingSecurity,
		FindingPerformance,
		FindingDesign,
		FindingStyle,
	}
}

// Valid reports whether the type is one of the recognized finding types
func (t FindingType) Valid() bool {
	return slices.Contains(AllFindingTypes(), t)
}

// Severity is the overall strictness label of a review
type Severity string

// SeverityHard is the only review strictness implemented
const SeverityHard Severity = "hard"

// ReviewMode is the strictness requested by the caller
type ReviewMode string

// ModeHard is the only accepted review mode
const ModeHard ReviewMode = "hard"

// Finding is a single detected issue. Findings are never mutated after creation.
type Finding struct {
	Type         FindingType `json:"type"`
	Title        string      `json:"title"`
	Explain      string      `json:"explain"`
	Fix          string      `json:"fix"`
	ExamplePatch string      `json:"example_patch,omitempty"`
}

// ReviewResult is the outcome of a hard review
type ReviewResult struct {
	Summary   string    `json:"summary"`
	Severity  Severity  `json:"severity"`
	Findings  []Finding `json:"findings"`
	NextSteps []string  `json:"next_steps"`
}

// HasFindingType reports whether any finding has the given type
func (r ReviewResult) HasFindingType(t FindingType) bool {
	for _, f := range r.Findings {
		if f.Type == t {
			return true
		}
	}
	return false
}

// FindingTypes returns the type of each finding in detection order
func (r ReviewResult) FindingTypes() []FindingType {
	types := make([]FindingType, 0, len(r.Findings))
	for _, f := range r.Findings {
		types = append(types, f.Type)
	}
	return types
}
