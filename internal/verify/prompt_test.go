package verify

import (
	"fmt"
	"strings"
	"testing"
)

func TestBuildUserMessage_Basic(t *testing.T) {
	msg := buildUserMessage(Request{
		TaskDescription: "add input validation",
		BaseCommit:      "abc123",
		HeadCommit:      "def456",
		RepoURL:         "https://github.com/student/notebook",
	})

	for _, want := range []string{
		"add input validation",
		"**Repository:** https://github.com/student/notebook",
		"**Base Commit:** abc123",
		"**Head Commit:** def456",
		"Use the GitHub API tools",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	if strings.Contains(msg, "Previous Concept Summaries") {
		t.Error("context sections should be absent without context")
	}
}

func TestBuildUserMessage_WithContext(t *testing.T) {
	msg := buildUserMessage(Request{
		TaskDescription: "task",
		Context: &Context{
			TaskTitle: "Login validation",
			TaskType:  "github",
			PreviousConcepts: []ConceptSummary{
				{Title: "HTTP basics", Summary: "requests and responses"},
			},
			PreviousTasks: []TaskSummary{
				{Title: "Hello route", Description: "add a hello endpoint"},
			},
		},
	})

	for _, want := range []string{
		"**Task Title:** Login validation",
		"**Task Type:** github",
		"1. **HTTP basics**: requests and responses",
		"1. **Hello route**: add a hello endpoint",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildUserMessage_ContextBounded(t *testing.T) {
	var concepts []ConceptSummary
	for i := 0; i < 12; i++ {
		concepts = append(concepts, ConceptSummary{Title: fmt.Sprintf("concept-%d", i), Summary: "s"})
	}

	msg := buildUserMessage(Request{
		TaskDescription: "task",
		Context:         &Context{PreviousConcepts: concepts},
	})

	if !strings.Contains(msg, "concept-4") {
		t.Error("fifth concept should be included")
	}
	if strings.Contains(msg, "concept-5") {
		t.Error("sixth concept should be truncated")
	}
}

func TestSystemPrompt_NamesAllTools(t *testing.T) {
	for _, tool := range []string{
		"compare_commits",
		"get_file_contents",
		"get_commit_details",
		"list_changed_files",
		"list_repository_files",
	} {
		if !strings.Contains(systemPrompt, tool) {
			t.Errorf("system prompt does not mention %s", tool)
		}
	}
}
