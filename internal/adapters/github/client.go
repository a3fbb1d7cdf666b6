package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/cenkalti/backoff/v4"
)

// NewClient creates a new GitHub client.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		Token:   token,
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		RetryDelay: RetryDelay,
	}
}

// WithBaseURL returns a new client with a custom base URL (for testing or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	clone := *c
	clone.BaseURL = baseURL
	return &clone
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	clone := *c
	clone.HTTPClient = httpClient
	return &clone
}

// repoPath returns the "owner/repo" path segment.
func (c *Client) repoPath() string {
	return c.Owner + "/" + c.Repo
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// APIError is a non-2xx response from GitHub.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (status %d)", e.Body, e.Status)
}

// retryable reports whether a status is worth another attempt:
// rate limiting (429, or 403 with no remaining quota) and server errors.
func retryable(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return true
	}
	return resp.StatusCode >= 500
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	if c.RetryDelay > 0 {
		bo.InitialInterval = c.RetryDelay
	}
	return backoff.WithContext(backoff.WithMaxRetries(bo, MaxRetries), ctx)
}

// doGet performs an authenticated GET with exponential-backoff retries.
func (c *Client) doGet(ctx context.Context, urlStr string) ([]byte, http.Header, error) {
	var (
		body    []byte
		headers http.Header
	)
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		const maxResponseSize = 50 * 1024 * 1024
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{Status: resp.StatusCode, Body: string(respBody)}
			if retryable(resp) {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		body, headers = respBody, resp.Header
		return nil
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		return nil, nil, err
	}
	return body, headers, nil
}

// linkNextPattern matches the "next" relation in GitHub Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// hasNextPage checks the Link header for a next page URL and returns it.
func hasNextPage(headers http.Header) (string, bool) {
	link := headers.Get("Link")
	if link == "" {
		return "", false
	}
	matches := linkNextPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// fetchPages follows page numbers until the Link header has no next relation.
func fetchPages[T any](ctx context.Context, c *Client, path string, params map[string]string) ([]T, error) {
	var all []T
	page := 1

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		query := map[string]string{
			"per_page": strconv.Itoa(MaxPageSize),
			"page":     strconv.Itoa(page),
		}
		for k, v := range params {
			query[k] = v
		}

		respBody, headers, err := c.doGet(ctx, c.buildURL(path, query))
		if err != nil {
			return nil, err
		}

		var batch []T
		if err := json.Unmarshal(respBody, &batch); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		all = append(all, batch...)

		if _, ok := hasNextPage(headers); !ok {
			break
		}
		page++

		if page > MaxPages {
			return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}
	}

	return all, nil
}

func normalizeState(state string) string {
	switch state {
	case "closed", "all":
		return state
	default:
		return "open"
	}
}

// ListIssues retrieves issues in the given state ("open", "closed" or "all").
// Pull requests returned by the issues endpoint are filtered out.
func (c *Client) ListIssues(ctx context.Context, state string) ([]Issue, error) {
	raw, err := fetchPages[Issue](ctx, c, "/repos/"+c.repoPath()+"/issues", map[string]string{
		"state": normalizeState(state),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}

	issues := make([]Issue, 0, len(raw))
	for i := range raw {
		if raw[i].PullRequest == nil {
			issues = append(issues, raw[i])
		}
	}
	return issues, nil
}

// ListOpenIssues retrieves all open issues.
func (c *Client) ListOpenIssues(ctx context.Context) ([]Issue, error) {
	return c.ListIssues(ctx, "open")
}

// ListPullRequests retrieves pull requests in the given state.
func (c *Client) ListPullRequests(ctx context.Context, state string) ([]PullRequest, error) {
	pulls, err := fetchPages[PullRequest](ctx, c, "/repos/"+c.repoPath()+"/pulls", map[string]string{
		"state": normalizeState(state),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests: %w", err)
	}
	return pulls, nil
}

// ListOpenPullRequests retrieves all open pull requests.
func (c *Client) ListOpenPullRequests(ctx context.Context) ([]PullRequest, error) {
	return c.ListPullRequests(ctx, "open")
}

// AuthenticatedUser returns the login the token belongs to.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	respBody, _, err := c.doGet(ctx, c.buildURL("/user", nil))
	if err != nil {
		return "", fmt.Errorf("failed to fetch authenticated user: %w", err)
	}
	var u User
	if err := json.Unmarshal(respBody, &u); err != nil {
		return "", fmt.Errorf("failed to parse user response: %w", err)
	}
	return u.Login, nil
}
