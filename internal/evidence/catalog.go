package evidence

import (
	"github.com/anthropics/anthropic-sdk-go"
)

// Tool names recognized by the dispatcher. The set is fixed; the schemas
// below are the wire contract with the model and must stay stable.
const (
	ToolCompareCommits      = "compare_commits"
	ToolGetFileContents     = "get_file_contents"
	ToolGetCommitDetails    = "get_commit_details"
	ToolListChangedFiles    = "list_changed_files"
	ToolListRepositoryFiles = "list_repository_files"
)

// Definitions returns the GitHub tool schemas offered to the model.
func Definitions() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        ToolCompareCommits,
				Description: anthropic.String("Compare two commits in a GitHub repository. Returns metadata (filename, status, additions/deletions) for changed files; build artifacts like node_modules are automatically filtered. Analyze which files are relevant to the task, then use get_file_contents to fetch specific file contents as needed."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"repo_url": map[string]interface{}{
							"type":        "string",
							"description": "Full GitHub repository URL (e.g., https://github.com/owner/repo)",
						},
						"base_commit": map[string]interface{}{
							"type":        "string",
							"description": "Base commit SHA or branch name (e.g., 'abc123' or 'main')",
						},
						"head_commit": map[string]interface{}{
							"type":        "string",
							"description": "Head commit SHA or branch name (e.g., 'def456' or 'HEAD')",
						},
					},
					Required: []string{"repo_url", "base_commit", "head_commit"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        ToolGetFileContents,
				Description: anthropic.String("Get the contents of a specific file from a GitHub repository at a given commit. Use this after analyzing file metadata from compare_commits or get_commit_details to fetch only files relevant to the task verification."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"repo_url": map[string]interface{}{
							"type":        "string",
							"description": "Full GitHub repository URL",
						},
						"file_path": map[string]interface{}{
							"type":        "string",
							"description": "Path to the file in the repository (e.g., 'src/main.py')",
						},
						"commit_sha": map[string]interface{}{
							"type":        "string",
							"description": "Optional commit SHA or branch name. If not provided, uses default branch.",
						},
					},
					Required: []string{"repo_url", "file_path"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        ToolGetCommitDetails,
				Description: anthropic.String("Get detailed information about a specific commit including message, author, files changed (with metadata), and statistics. Build artifacts are filtered. Analyze which files are relevant, then fetch specific file contents as needed."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"repo_url": map[string]interface{}{
							"type":        "string",
							"description": "Full GitHub repository URL",
						},
						"commit_sha": map[string]interface{}{
							"type":        "string",
							"description": "Commit SHA to get details for",
						},
					},
					Required: []string{"repo_url", "commit_sha"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        ToolListChangedFiles,
				Description: anthropic.String("List all files that changed between two commits with their status (added/modified/deleted) and metadata. Build artifacts like node_modules are automatically filtered. Analyze relevance, then fetch specific file contents."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"repo_url": map[string]interface{}{
							"type":        "string",
							"description": "Full GitHub repository URL",
						},
						"base_commit": map[string]interface{}{
							"type":        "string",
							"description": "Base commit SHA or branch name",
						},
						"head_commit": map[string]interface{}{
							"type":        "string",
							"description": "Head commit SHA or branch name",
						},
					},
					Required: []string{"repo_url", "base_commit", "head_commit"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        ToolListRepositoryFiles,
				Description: anthropic.String("List all files in the repository at a specific commit/branch. Returns file paths only. Use this if compare_commits returns 0 files - the task might have been completed in an earlier commit already on the default branch."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"repo_url": map[string]interface{}{
							"type":        "string",
							"description": "Full GitHub repository URL",
						},
						"commit_sha": map[string]interface{}{
							"type":        "string",
							"description": "Optional commit SHA or branch name. If not provided, uses default branch.",
						},
						"path": map[string]interface{}{
							"type":        "string",
							"description": "Optional path to list files from (e.g., 'src' or 'routes'). If not provided, lists from repository root.",
						},
					},
					Required: []string{"repo_url"},
				},
			},
		},
	}
}
