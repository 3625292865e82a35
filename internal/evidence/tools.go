package evidence

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
)

// FileChange is per-file diff metadata. Content is never included; the
// agent fetches specific files with GetFileContents when it needs them.
type FileChange struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"` // added, modified, removed, renamed
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
}

// DiffStats aggregates addition/deletion counts across a comparison.
type DiffStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

// CommitRef identifies one intermediate commit in a comparison.
type CommitRef struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
}

// CommitAuthor is the author identity recorded on a commit.
type CommitAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

// CompareCommitsResult is the payload of the compare_commits tool.
type CompareCommitsResult struct {
	Success      bool         `json:"success"`
	Diff         string       `json:"diff"`
	FilesChanged []FileChange `json:"files_changed"`
	Stats        DiffStats    `json:"stats"`
	Commits      []CommitRef  `json:"commits"`
}

// FileContentsResult is the payload of the get_file_contents tool.
type FileContentsResult struct {
	Success  bool   `json:"success"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	Size     int    `json:"size"`
	SHA      string `json:"sha"`
}

// CommitDetailsResult is the payload of the get_commit_details tool.
type CommitDetailsResult struct {
	Success bool         `json:"success"`
	SHA     string       `json:"sha"`
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
	Files   []FileChange `json:"files"`
	Stats   DiffStats    `json:"stats"`
}

// ChangedFilesResult is the payload of the list_changed_files tool.
type ChangedFilesResult struct {
	Success      bool         `json:"success"`
	Files        []FileChange `json:"files"`
	TotalChanges int          `json:"total_changes"`
	Additions    int          `json:"additions"`
	Deletions    int          `json:"deletions"`
}

// RepositoryFilesResult is the payload of the list_repository_files tool.
type RepositoryFilesResult struct {
	Success    bool     `json:"success"`
	Files      []string `json:"files"`
	TotalFiles int      `json:"total_files"`
}

// compareResponse is the wire shape of GET /repos/{o}/{r}/compare/{b}...{h}.
type compareResponse struct {
	Files []struct {
		Filename  string `json:"filename"`
		Status    string `json:"status"`
		Additions int    `json:"additions"`
		Deletions int    `json:"deletions"`
		Changes   int    `json:"changes"`
	} `json:"files"`
	Stats struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
		Total     int `json:"total"`
	} `json:"stats"`
	Commits []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string `json:"name"`
			} `json:"author"`
		} `json:"commit"`
	} `json:"commits"`
}

func (r *compareResponse) fileChanges() []FileChange {
	files := make([]FileChange, 0, len(r.Files))
	for _, f := range r.Files {
		files = append(files, FileChange{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Changes:   f.Changes,
		})
	}
	return files
}

func (c *Client) compare(ctx context.Context, token, repoURL, base, head string) (*compareResponse, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	var data compareResponse
	path := fmt.Sprintf("/repos/%s/%s/compare/%s...%s", owner, repo, base, head)
	if err := c.get(ctx, token, path, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CompareCommits returns diff metadata between two commits: the changed
// files (build artifacts dropped), aggregate stats, and the intermediate
// commits.
func (c *Client) CompareCommits(ctx context.Context, token, repoURL, base, head string) (*CompareCommitsResult, error) {
	data, err := c.compare(ctx, token, repoURL, base, head)
	if err != nil {
		return nil, err
	}

	files, dropped := FilterChanges(data.fileChanges())

	diff := ""
	if len(files) > 0 {
		diff = fmt.Sprintf("Diff metadata available for %d files (after filtering build artifacts). Use get_file_contents to fetch specific file contents.", len(files))
	}

	commits := make([]CommitRef, 0, len(data.Commits))
	for _, commit := range data.Commits {
		commits = append(commits, CommitRef{
			SHA:     commit.SHA,
			Message: commit.Commit.Message,
			Author:  commit.Commit.Author.Name,
		})
	}

	log.Printf("[evidence] compare %s...%s: %d files (%d artifacts filtered)", short(base), short(head), len(files), dropped)

	return &CompareCommitsResult{
		Success:      true,
		Diff:         diff,
		FilesChanged: files,
		Stats: DiffStats{
			Additions: data.Stats.Additions,
			Deletions: data.Stats.Deletions,
			Total:     data.Stats.Total,
		},
		Commits: commits,
	}, nil
}

// GetFileContents returns a file's raw text content at the given ref. The
// ref is optional; the default branch is used when empty.
func (c *Client) GetFileContents(ctx context.Context, token, repoURL, filePath, ref string) (*FileContentsResult, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	var data struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		Size     int    `json:"size"`
		SHA      string `json:"sha"`
	}
	query := url.Values{}
	if ref != "" {
		query.Set("ref", ref)
	}
	path := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, filePath)
	if err := c.get(ctx, token, path, query, &data); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, errors.New("File not found")
		}
		return nil, err
	}

	content := data.Content
	if data.Encoding == "base64" {
		// The contents API wraps base64 at 60 columns.
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(data.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("decode file content: %w", err)
		}
		content = string(decoded)
	}

	return &FileContentsResult{
		Success:  true,
		Content:  content,
		Encoding: data.Encoding,
		Size:     data.Size,
		SHA:      data.SHA,
	}, nil
}

// GetCommitDetails returns a commit's message, author, changed files
// (build artifacts dropped), and stats.
func (c *Client) GetCommitDetails(ctx context.Context, token, repoURL, sha string) (*CommitDetailsResult, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	var data struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name  string `json:"name"`
				Email string `json:"email"`
				Date  string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		Files []struct {
			Filename  string `json:"filename"`
			Status    string `json:"status"`
			Additions int    `json:"additions"`
			Deletions int    `json:"deletions"`
			Changes   int    `json:"changes"`
		} `json:"files"`
		Stats struct {
			Additions int `json:"additions"`
			Deletions int `json:"deletions"`
			Total     int `json:"total"`
		} `json:"stats"`
	}
	path := fmt.Sprintf("/repos/%s/%s/commits/%s", owner, repo, sha)
	if err := c.get(ctx, token, path, nil, &data); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, errors.New("Commit not found")
		}
		return nil, err
	}

	all := make([]FileChange, 0, len(data.Files))
	for _, f := range data.Files {
		all = append(all, FileChange{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Changes:   f.Changes,
		})
	}
	files, dropped := FilterChanges(all)

	log.Printf("[evidence] commit %s: %d files (%d artifacts filtered)", short(sha), len(files), dropped)

	return &CommitDetailsResult{
		Success: true,
		SHA:     data.SHA,
		Message: data.Commit.Message,
		Author: CommitAuthor{
			Name:  data.Commit.Author.Name,
			Email: data.Commit.Author.Email,
			Date:  data.Commit.Author.Date,
		},
		Files: files,
		Stats: DiffStats{
			Additions: data.Stats.Additions,
			Deletions: data.Stats.Deletions,
			Total:     data.Stats.Total,
		},
	}, nil
}

// ListChangedFiles is the lighter-weight view of CompareCommits: the same
// filtered file list without the diff wrapper.
func (c *Client) ListChangedFiles(ctx context.Context, token, repoURL, base, head string) (*ChangedFilesResult, error) {
	data, err := c.compare(ctx, token, repoURL, base, head)
	if err != nil {
		return nil, err
	}

	files, dropped := FilterChanges(data.fileChanges())
	log.Printf("[evidence] changed files %s...%s: %d files (%d artifacts filtered)", short(base), short(head), len(files), dropped)

	return &ChangedFilesResult{
		Success:      true,
		Files:        files,
		TotalChanges: len(files),
		Additions:    data.Stats.Additions,
		Deletions:    data.Stats.Deletions,
	}, nil
}

// ListRepositoryFiles returns the flat file list at a ref, optionally
// scoped to a path prefix. It is the fallback when a diff-based tool
// returns zero files (work already merged to the default branch).
func (c *Client) ListRepositoryFiles(ctx context.Context, token, repoURL, ref, pathPrefix string) (*RepositoryFilesResult, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	if ref == "" {
		var repoData struct {
			DefaultBranch string `json:"default_branch"`
		}
		if err := c.get(ctx, token, fmt.Sprintf("/repos/%s/%s", owner, repo), nil, &repoData); err != nil {
			return nil, err
		}
		ref = repoData.DefaultBranch
	}

	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
		} `json:"tree"`
	}
	query := url.Values{"recursive": {"1"}}
	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s", owner, repo, ref)
	if err := c.get(ctx, token, path, query, &tree); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, errors.New("Commit or branch not found")
		}
		return nil, err
	}

	var all []string
	for _, item := range tree.Tree {
		if item.Type != "blob" {
			continue
		}
		if pathPrefix != "" && !strings.HasPrefix(item.Path, pathPrefix) {
			continue
		}
		all = append(all, item.Path)
	}

	files, dropped := FilterPaths(all)
	log.Printf("[evidence] tree %s: %d files (%d artifacts filtered)", short(ref), len(files), dropped)

	return &RepositoryFilesResult{
		Success:    true,
		Files:      files,
		TotalFiles: len(files),
	}, nil
}

// short truncates a ref for log lines.
func short(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
