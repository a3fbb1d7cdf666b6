package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/secondary"
)

// SourceConfig holds the integration settings the source needs.
type SourceConfig struct {
	Enabled  bool
	Token    string
	Owner    string
	Repo     string
	Assignee string // login used for AssignedToMe; resolved from the token when empty
	BaseURL  string
}

// Source implements secondary.ImportSource over the GitHub REST API.
type Source struct {
	cfg    SourceConfig
	client *Client
	logger *slog.Logger
}

// NewSource creates a GitHub import source.
func NewSource(cfg SourceConfig, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	client := NewClient(cfg.Token, cfg.Owner, cfg.Repo)
	if cfg.BaseURL != "" {
		client = client.WithBaseURL(cfg.BaseURL)
	}
	return &Source{cfg: cfg, client: client, logger: logger}
}

// WithClient replaces the underlying client.
func (s *Source) WithClient(c *Client) *Source {
	clone := *s
	clone.client = c
	return &clone
}

// Name returns "github".
func (s *Source) Name() string {
	return SourceName
}

// IsConfigured reports whether the integration is enabled with a token and repository.
func (s *Source) IsConfigured() bool {
	return s.cfg.Enabled && s.cfg.Token != "" && s.cfg.Owner != "" && s.cfg.Repo != ""
}

// FetchItems lists issues and pull requests, then filters by label and
// assignee locally before truncating to opts.Limit.
func (s *Source) FetchItems(ctx context.Context, opts secondary.FetchOptions) ([]models.ImportedItem, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("github: %w", secondary.ErrImporterNotConfigured)
	}

	issues, err := s.client.ListIssues(ctx, opts.State)
	if err != nil {
		return nil, err
	}
	pulls, err := s.client.ListPullRequests(ctx, opts.State)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched from github", "issues", len(issues), "pulls", len(pulls), "repo", s.client.repoPath())

	items := make([]models.ImportedItem, 0, len(issues)+len(pulls))
	for _, issue := range issues {
		items = append(items, IssueToImported(issue))
	}
	for _, pr := range pulls {
		items = append(items, PullToImported(pr))
	}

	assignee := ""
	if opts.AssignedToMe {
		assignee = s.cfg.Assignee
		if assignee == "" {
			assignee, err = s.client.AuthenticatedUser(ctx)
			if err != nil {
				return nil, err
			}
		}
	}

	return Filter(items, opts.Label, assignee, opts.Limit), nil
}

// Filter keeps items carrying label and assigned to assignee (empty values
// match everything), then truncates to limit when limit > 0.
func Filter(items []models.ImportedItem, label, assignee string, limit int) []models.ImportedItem {
	var out []models.ImportedItem
	for _, it := range items {
		if label != "" && !containsFold(it.Labels, label) {
			continue
		}
		if assignee != "" && !containsFold(it.Assignees, assignee) {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

var _ secondary.ImportSource = (*Source)(nil)
