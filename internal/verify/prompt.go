package verify

import (
	"fmt"
	"strings"
)

// systemPrompt instructs the model to act as a strict reviewer and defines
// the exact JSON shape it must return. The tool descriptions here must stay
// in sync with the evidence catalogue.
const systemPrompt = `You are a STRICT code reviewer verifying if a student's code fulfills task requirements.

Your task is to verify if code changes between two commits fulfill the given task requirements.

**Available Tools:**
- compare_commits: Compare two commits - returns metadata for changed files (build artifacts filtered). Analyze which files are relevant to the task, then use get_file_contents for specific files you need to examine.
- get_file_contents: Get the contents of specific files. Use this after analyzing file metadata to fetch only files relevant to verification.
- get_commit_details: Get commit details - returns metadata for files (build artifacts filtered). Analyze which files are relevant, then fetch specific file contents as needed.
- list_changed_files: List changed files with metadata (build artifacts filtered). Analyze relevance, then fetch specific file contents.
- list_repository_files: List all files in the repository at a specific commit. Use this if compare_commits returns 0 files - the task might have been completed in a different commit or the file might already exist.

**Verification Process:**
1. Use compare_commits or get_commit_details to get file metadata (filename, status, stats)
2. Analyze which files are relevant to the task (ignore node_modules, build artifacts, etc.)
3. Use get_file_contents to fetch contents of ONLY relevant files
4. Analyze the changes against the task requirements
5. Determine if the task is fulfilled
6. Provide detailed feedback

**Verification Rules (STRICT):**
- Only PASS if ALL requirements are clearly met
- Check if code implements what was asked
- Verify all specific requirements are met
- Look for critical bugs or issues
- Be thorough but fair

**CRITICAL DISTINCTION:**
- "issues_found": ONLY actual problems that prevent code from working (bugs, syntax errors, missing functionality)
- "suggestions": Optional improvements and best practices (NOT issues)

**When you have enough information, return ONLY valid JSON (no markdown, no extra text):**
{
  "passed": true/false,
  "overall_feedback": "2-3 sentence summary explaining decision",
  "requirements_check": {
    "code_implements_task": {"met": true/false, "feedback": "..."},
    "meets_all_requirements": {"met": true/false, "feedback": "..."},
    "no_critical_issues": {"met": true/false, "feedback": "..."}
  },
  "hints": ["Helpful hint if failed"],
  "issues_found": ["ONLY actual problems. If task PASSED, use empty array []."],
  "suggestions": ["Optional code quality improvements. These are NOT issues."],
  "code_quality": "good/acceptable/needs_improvement",
  "test_status": "passed/failed/not_run/error",
  "pattern_match_status": "all_matched/partial/none"
}

**IMPORTANT**: Use tools to gather information first, then provide your verification decision.`

// maxContextEntries bounds the prior-concept and prior-task lists injected
// into the prompt.
const maxContextEntries = 5

// ConceptSummary is a prior concept provided as background context.
type ConceptSummary struct {
	Title   string
	Summary string
}

// TaskSummary is a prior task description provided as background context.
type TaskSummary struct {
	Title       string
	Description string
}

// Context carries optional extra information about the task being verified.
// It enriches the prompt only; nothing in it is re-verified.
type Context struct {
	TaskTitle        string
	TaskType         string
	PreviousConcepts []ConceptSummary
	PreviousTasks    []TaskSummary
}

// Request holds the inputs to one verification run. Immutable for the
// duration of the run.
type Request struct {
	TaskDescription string
	BaseCommit      string
	HeadCommit      string
	RepoURL         string
	GitHubToken     string
	Context         *Context
}

// buildUserMessage assembles the initial user turn from the request.
func buildUserMessage(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Task Description:**\n%s\n\n", req.TaskDescription)
	fmt.Fprintf(&b, "**Repository:** %s\n", req.RepoURL)
	fmt.Fprintf(&b, "**Base Commit:** %s\n", req.BaseCommit)
	fmt.Fprintf(&b, "**Head Commit:** %s\n", req.HeadCommit)

	if ctx := req.Context; ctx != nil {
		if ctx.TaskTitle != "" {
			fmt.Fprintf(&b, "\n**Task Title:** %s\n", ctx.TaskTitle)
		}
		if ctx.TaskType != "" {
			fmt.Fprintf(&b, "\n**Task Type:** %s\n", ctx.TaskType)
		}

		concepts := ctx.PreviousConcepts
		if len(concepts) > maxContextEntries {
			concepts = concepts[:maxContextEntries]
		}
		if len(concepts) > 0 {
			b.WriteString("\n**Previous Concept Summaries (for context):**\n")
			for i, c := range concepts {
				fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, c.Title, c.Summary)
			}
		}

		tasks := ctx.PreviousTasks
		if len(tasks) > maxContextEntries {
			tasks = tasks[:maxContextEntries]
		}
		if len(tasks) > 0 {
			b.WriteString("\n**Previous Task Descriptions (for context):**\n")
			for i, task := range tasks {
				fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, task.Title, task.Description)
			}
		}
	}

	b.WriteString("\nPlease verify if the code changes fulfill the task requirements. Use the GitHub API tools to gather information as needed.")
	return b.String()
}
