package verify

import (
	"testing"
)

func TestNormalize_DirectJSON(t *testing.T) {
	content := `{
		"passed": true,
		"overall_feedback": "Validation added as required.",
		"requirements_check": {
			"code_implements_task": {"met": true, "feedback": "ok"}
		},
		"hints": [],
		"issues_found": [],
		"suggestions": ["consider adding tests"],
		"code_quality": "good",
		"test_status": "not_run",
		"pattern_match_status": "all_matched"
	}`

	result := Normalize(content)

	if !result.Passed {
		t.Error("passed should be true")
	}
	if result.OverallFeedback != "Validation added as required." {
		t.Errorf("feedback = %q", result.OverallFeedback)
	}
	if result.CodeQuality != "good" {
		t.Errorf("code_quality = %q, want good", result.CodeQuality)
	}
	check, ok := result.RequirementsCheck["code_implements_task"]
	if !ok || !check.Met {
		t.Errorf("requirements_check = %v", result.RequirementsCheck)
	}
}

func TestNormalize_DefaultFilling(t *testing.T) {
	result := Normalize(`{"passed": true}`)

	if !result.Passed {
		t.Error("passed should be true")
	}
	if result.Hints == nil || len(result.Hints) != 0 {
		t.Errorf("hints = %v, want empty non-nil list", result.Hints)
	}
	if result.IssuesFound == nil || len(result.IssuesFound) != 0 {
		t.Errorf("issues_found = %v, want empty non-nil list", result.IssuesFound)
	}
	if result.Suggestions == nil || len(result.Suggestions) != 0 {
		t.Errorf("suggestions = %v, want empty non-nil list", result.Suggestions)
	}
	if result.CodeQuality != "needs_improvement" {
		t.Errorf("code_quality = %q, want needs_improvement", result.CodeQuality)
	}
	if result.TestStatus != "not_run" {
		t.Errorf("test_status = %q, want not_run", result.TestStatus)
	}
	if result.PatternMatchStatus != "none" {
		t.Errorf("pattern_match_status = %q, want none", result.PatternMatchStatus)
	}

	// The structured breakdown is synthesized from the top-level verdict
	check, ok := result.RequirementsCheck["main_requirement"]
	if !ok {
		t.Fatalf("requirements_check = %v, want synthesized main_requirement", result.RequirementsCheck)
	}
	if !check.Met {
		t.Error("synthesized requirement should reflect passed=true")
	}
}

func TestNormalize_FencedJSON(t *testing.T) {
	fenced := "Here is my verdict:\n```json\n{\"passed\": true, \"overall_feedback\": \"done\"}\n```\n"
	bare := "```\n{\"passed\": true, \"overall_feedback\": \"done\"}\n```"

	for _, content := range []string{fenced, bare} {
		result := Normalize(content)
		if !result.Passed {
			t.Errorf("Normalize(%q): passed should be true", content)
		}
		if result.OverallFeedback != "done" {
			t.Errorf("Normalize(%q): feedback = %q", content, result.OverallFeedback)
		}
	}
}

func TestNormalize_FencedMatchesUnfenced(t *testing.T) {
	payload := `{"passed": false, "overall_feedback": "missing validation", "hints": ["add a check"]}`

	direct := Normalize(payload)
	fenced := Normalize("```json\n" + payload + "\n```")

	if direct.Passed != fenced.Passed || direct.OverallFeedback != fenced.OverallFeedback {
		t.Errorf("fenced and unfenced parse diverge: %+v vs %+v", direct, fenced)
	}
	if len(fenced.Hints) != 1 || fenced.Hints[0] != "add a check" {
		t.Errorf("hints = %v", fenced.Hints)
	}
}

func TestNormalize_BraceSpan(t *testing.T) {
	content := `Based on my analysis: {"passed": false, "overall_feedback": "endpoint unchanged"} Let me know if you need more detail.`

	result := Normalize(content)

	if result.Passed {
		t.Error("passed should be false")
	}
	if result.OverallFeedback != "endpoint unchanged" {
		t.Errorf("feedback = %q", result.OverallFeedback)
	}
}

func TestNormalize_Garbage(t *testing.T) {
	result := Normalize("I could not complete the verification, sorry.")

	if result.Passed {
		t.Error("passed should be false")
	}
	if result.TestStatus != "error" {
		t.Errorf("test_status = %q, want error", result.TestStatus)
	}
	if result.PatternMatchStatus != "error" {
		t.Errorf("pattern_match_status = %q, want error", result.PatternMatchStatus)
	}
	if len(result.Hints) == 0 {
		t.Error("error result should carry a hint")
	}
	if _, ok := result.RequirementsCheck["verification_error"]; !ok {
		t.Errorf("requirements_check = %v, want verification_error entry", result.RequirementsCheck)
	}
}

func TestNormalize_Empty(t *testing.T) {
	result := Normalize("   ")

	if result.Passed {
		t.Error("passed should be false")
	}
	if result.OverallFeedback == "" {
		t.Error("error result should explain itself")
	}
}

func TestNormalize_BadFencedBlock(t *testing.T) {
	result := Normalize("```json\n{not valid}\n```")

	if result.Passed {
		t.Error("passed should be false")
	}
	if _, ok := result.RequirementsCheck["verification_error"]; !ok {
		t.Error("want verification_error entry for unparseable fenced block")
	}
}
