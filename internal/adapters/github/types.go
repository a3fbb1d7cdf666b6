// Package github provides a GitHub REST client and the GitHub import source.
package github

import (
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for rate-limited or failed requests.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries (exponential backoff).
	RetryDelay = time.Second

	// MaxPageSize is the maximum number of items to fetch per page.
	MaxPageSize = 100

	// MaxPages is the maximum number of pages to fetch before stopping.
	// This prevents infinite loops from malformed Link headers.
	MaxPages = 100
)

// SourceName identifies GitHub in imported items and CLI arguments.
const SourceName = "github"

// Client provides methods to interact with the GitHub REST API.
type Client struct {
	Token      string        // GitHub personal access token
	Owner      string        // Repository owner (user or org)
	Repo       string        // Repository name
	BaseURL    string        // API base URL (default: https://api.github.com)
	HTTPClient *http.Client  // Optional custom HTTP client
	RetryDelay time.Duration // Initial backoff interval
}

// Issue represents an issue from the GitHub API.
type Issue struct {
	ID          int        `json:"id"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	State       string     `json:"state"` // "open" or "closed"
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	Labels      []Label    `json:"labels"`
	Assignees   []User     `json:"assignees,omitempty"`
	User        *User      `json:"user,omitempty"` // Author
	Milestone   *Milestone `json:"milestone,omitempty"`
	HTMLURL     string     `json:"html_url"`
	PullRequest *PullRef   `json:"pull_request,omitempty"` // Non-nil if this is a PR
}

// PullRef indicates an issue is actually a pull request.
// The issues endpoint returns PRs alongside issues; this field tells them apart.
type PullRef struct {
	URL string `json:"url,omitempty"`
}

// PullRequest represents a pull request from the pulls endpoint.
type PullRequest struct {
	ID        int        `json:"id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     string     `json:"state"`
	Draft     bool       `json:"draft"`
	Labels    []Label    `json:"labels"`
	Assignees []User     `json:"assignees,omitempty"`
	User      *User      `json:"user,omitempty"`
	Milestone *Milestone `json:"milestone,omitempty"`
	HTMLURL   string     `json:"html_url"`
}

// User represents a GitHub user.
type User struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

// Label represents a GitHub label.
type Label struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Milestone represents a GitHub milestone.
type Milestone struct {
	Number int        `json:"number"`
	Title  string     `json:"title"`
	DueOn  *time.Time `json:"due_on,omitempty"`
}
