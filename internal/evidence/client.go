// Package evidence implements the read-only GitHub tools the verification
// agent reasons over: commit diffs, file contents, commit metadata, and
// tree listings, with build artifacts filtered out.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// Client calls the GitHub REST API. The auth token is not stored on the
// client; it is passed down by value on every operation so nothing outlives
// the call stack.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientConfig contains configuration for creating a Client.
type ClientConfig struct {
	// BaseURL overrides the GitHub API endpoint (used by tests).
	BaseURL string
	// Timeout is the per-request timeout (0 = 30s).
	Timeout time.Duration
}

// NewClient creates a GitHub API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

var repoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`),
	regexp.MustCompile(`github\.com/([^/]+)/([^/]+?)/.+$`),
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
// Trailing ".git", trailing slashes, and deep paths are all accepted.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	for _, pattern := range repoURLPatterns {
		if m := pattern.FindStringSubmatch(repoURL); m != nil {
			return m[1], m[2], nil
		}
	}
	return "", "", fmt.Errorf("invalid GitHub repository URL: %s", repoURL)
}

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %d", e.StatusCode)
}

// NotFound reports whether the error was a 404. A 404 is an expected
// outcome (missing file, unknown ref), not a fault.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// get performs an authenticated GET against the API and decodes the JSON
// response into v.
func (c *Client) get(ctx context.Context, token, path string, query url.Values, v any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GitHub API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
