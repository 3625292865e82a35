package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// Result is the outcome of one tool call. Content is always valid JSON:
// either the tool's payload or a {success:false, error, tool} envelope.
type Result struct {
	Content string
	IsError bool
}

// Dispatcher maps tool names to their implementations. It validates
// arguments, executes the matching operation, and wraps every failure as a
// structured error result so a single bad tool call never aborts a
// verification run.
type Dispatcher struct {
	client *Client
}

// NewDispatcher creates a dispatcher backed by the given GitHub client.
func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// Execute runs a tool by name with the given JSON arguments. The token is
// the application's GitHub credential, passed per call and never cached.
func (d *Dispatcher) Execute(ctx context.Context, name string, args json.RawMessage, token string) Result {
	log.Printf("[dispatch] executing tool %s", name)

	switch name {
	case ToolCompareCommits:
		var p struct {
			RepoURL    string `json:"repo_url"`
			BaseCommit string `json:"base_commit"`
			HeadCommit string `json:"head_commit"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return errorResult(name, fmt.Sprintf("invalid arguments: %v", err))
		}
		if msg, ok := missing("repo_url", p.RepoURL, "base_commit", p.BaseCommit, "head_commit", p.HeadCommit); !ok {
			return errorResult(name, msg)
		}
		return toResult(name)(d.client.CompareCommits(ctx, token, p.RepoURL, p.BaseCommit, p.HeadCommit))

	case ToolGetFileContents:
		var p struct {
			RepoURL   string `json:"repo_url"`
			FilePath  string `json:"file_path"`
			CommitSHA string `json:"commit_sha"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return errorResult(name, fmt.Sprintf("invalid arguments: %v", err))
		}
		if msg, ok := missing("repo_url", p.RepoURL, "file_path", p.FilePath); !ok {
			return errorResult(name, msg)
		}
		return toResult(name)(d.client.GetFileContents(ctx, token, p.RepoURL, p.FilePath, p.CommitSHA))

	case ToolGetCommitDetails:
		var p struct {
			RepoURL   string `json:"repo_url"`
			CommitSHA string `json:"commit_sha"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return errorResult(name, fmt.Sprintf("invalid arguments: %v", err))
		}
		if msg, ok := missing("repo_url", p.RepoURL, "commit_sha", p.CommitSHA); !ok {
			return errorResult(name, msg)
		}
		return toResult(name)(d.client.GetCommitDetails(ctx, token, p.RepoURL, p.CommitSHA))

	case ToolListChangedFiles:
		var p struct {
			RepoURL    string `json:"repo_url"`
			BaseCommit string `json:"base_commit"`
			HeadCommit string `json:"head_commit"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return errorResult(name, fmt.Sprintf("invalid arguments: %v", err))
		}
		if msg, ok := missing("repo_url", p.RepoURL, "base_commit", p.BaseCommit, "head_commit", p.HeadCommit); !ok {
			return errorResult(name, msg)
		}
		return toResult(name)(d.client.ListChangedFiles(ctx, token, p.RepoURL, p.BaseCommit, p.HeadCommit))

	case ToolListRepositoryFiles:
		var p struct {
			RepoURL   string `json:"repo_url"`
			CommitSHA string `json:"commit_sha"`
			Path      string `json:"path"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return errorResult(name, fmt.Sprintf("invalid arguments: %v", err))
		}
		if msg, ok := missing("repo_url", p.RepoURL); !ok {
			return errorResult(name, msg)
		}
		return toResult(name)(d.client.ListRepositoryFiles(ctx, token, p.RepoURL, p.CommitSHA, p.Path))

	default:
		// A name outside the catalogue means the model and the tool
		// schemas have drifted; surface it instead of ignoring.
		return errorResult(name, fmt.Sprintf("unknown tool: %s", name))
	}
}

// missing checks name/value pairs and reports the first empty required
// argument by name.
func missing(pairs ...string) (string, bool) {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Sprintf("missing required argument: %s", pairs[i]), false
		}
	}
	return "", true
}

// toResult converts an operation's (payload, error) return into a Result.
func toResult(tool string) func(payload any, err error) Result {
	return func(payload any, err error) Result {
		if err != nil {
			log.Printf("[dispatch] tool %s failed: %v", tool, err)
			return errorResult(tool, err.Error())
		}
		content, err := json.Marshal(payload)
		if err != nil {
			return errorResult(tool, fmt.Sprintf("serialize result: %v", err))
		}
		return Result{Content: string(content)}
	}
}

func errorResult(tool, msg string) Result {
	content, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   msg,
		"tool":    tool,
	})
	return Result{Content: string(content), IsError: true}
}
