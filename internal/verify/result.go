// Package verify implements the bounded tool-calling loop that checks a
// student's commits against a task description.
package verify

import "fmt"

// RequirementCheck is the per-requirement verdict inside a result.
type RequirementCheck struct {
	Met      bool   `json:"met"`
	Feedback string `json:"feedback"`
}

// VerificationResult is the terminal, normalized output of a run. Every
// field is always populated so callers never need nil checks.
type VerificationResult struct {
	Passed             bool                        `json:"passed"`
	OverallFeedback    string                      `json:"overall_feedback"`
	RequirementsCheck  map[string]RequirementCheck `json:"requirements_check"`
	Hints              []string                    `json:"hints"`
	IssuesFound        []string                    `json:"issues_found"`
	Suggestions        []string                    `json:"suggestions"`
	CodeQuality        string                      `json:"code_quality"`
	TestStatus         string                      `json:"test_status"`
	PatternMatchStatus string                      `json:"pattern_match_status"`
}

// Field defaults applied during normalization.
const (
	defaultCodeQuality        = "needs_improvement"
	defaultTestStatus         = "not_run"
	defaultPatternMatchStatus = "none"
)

// ErrorResult builds the failure result used whenever a run cannot produce
// a real verdict. Callers always receive this well-formed shape instead of
// an error.
func ErrorResult(message string) *VerificationResult {
	return &VerificationResult{
		Passed:          false,
		OverallFeedback: fmt.Sprintf("Verification error: %s", message),
		RequirementsCheck: map[string]RequirementCheck{
			"verification_error": {
				Met:      false,
				Feedback: message,
			},
		},
		Hints:              []string{"Please check your code and try again."},
		IssuesFound:        []string{fmt.Sprintf("Verification system error: %s", message)},
		Suggestions:        []string{},
		CodeQuality:        defaultCodeQuality,
		TestStatus:         "error",
		PatternMatchStatus: "error",
	}
}
