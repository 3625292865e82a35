package verify

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
)

// fencedJSON matches a JSON object inside a fenced code block, with or
// without a "json" language tag.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// rawResult is the loosely-typed shape the model may return. Pointer and
// nil-able fields distinguish "absent" from zero values.
type rawResult struct {
	Passed             *bool                       `json:"passed"`
	OverallFeedback    string                      `json:"overall_feedback"`
	RequirementsCheck  map[string]RequirementCheck `json:"requirements_check"`
	Hints              []string                    `json:"hints"`
	IssuesFound        []string                    `json:"issues_found"`
	Suggestions        []string                    `json:"suggestions"`
	CodeQuality        string                      `json:"code_quality"`
	TestStatus         string                      `json:"test_status"`
	PatternMatchStatus string                      `json:"pattern_match_status"`
}

// Normalize parses the model's final content into a VerificationResult.
// Parse order: direct JSON, then a fenced code block, then the outermost
// brace span, then the terminal error result. Every output field is
// defaulted so the result is always fully populated.
func Normalize(content string) *VerificationResult {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrorResult("model did not provide a verification result")
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		candidate := ""
		if match := fencedJSON.FindStringSubmatch(content); match != nil {
			candidate = match[1]
		} else if span := braceSpan(content); span != "" {
			candidate = span
		}
		if candidate == "" {
			log.Printf("[normalize] response is not valid JSON: %v", err)
			return ErrorResult("agent response is not valid JSON")
		}
		if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
			log.Printf("[normalize] extracted block is not valid JSON: %v", err)
			return ErrorResult("could not parse JSON from agent response")
		}
	}

	result := &VerificationResult{
		OverallFeedback:    raw.OverallFeedback,
		RequirementsCheck:  raw.RequirementsCheck,
		Hints:              raw.Hints,
		IssuesFound:        raw.IssuesFound,
		Suggestions:        raw.Suggestions,
		CodeQuality:        raw.CodeQuality,
		TestStatus:         raw.TestStatus,
		PatternMatchStatus: raw.PatternMatchStatus,
	}
	if raw.Passed != nil {
		result.Passed = *raw.Passed
	}

	if result.Hints == nil {
		result.Hints = []string{}
	}
	if result.IssuesFound == nil {
		result.IssuesFound = []string{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	if result.CodeQuality == "" {
		result.CodeQuality = defaultCodeQuality
	}
	if result.TestStatus == "" {
		result.TestStatus = defaultTestStatus
	}
	if result.PatternMatchStatus == "" {
		result.PatternMatchStatus = defaultPatternMatchStatus
	}

	// When the model skipped the structured breakdown, synthesize one
	// entry from the top-level verdict.
	if len(result.RequirementsCheck) == 0 {
		result.RequirementsCheck = map[string]RequirementCheck{
			"main_requirement": {
				Met:      result.Passed,
				Feedback: result.OverallFeedback,
			},
		}
	}

	return result
}

// braceSpan extracts the outermost { ... } span from prose-wrapped text.
func braceSpan(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}
