package github

import (
	"strings"
	"time"

	"github.com/example/safer/internal/models"
)

// priorityLevels maps priority label values to the level names used by the importer.
var priorityLevels = map[string]string{
	"urgent":   "urgent",
	"critical": "critical",
	"high":     "high",
	"medium":   "medium",
	"low":      "low",
	"p0":       "critical",
	"p1":       "high",
	"p2":       "medium",
	"p3":       "low",
}

// ParseLabelName splits a scoped label like "priority:high" or "priority/high"
// into prefix and value. Unscoped labels return an empty prefix.
func ParseLabelName(label string) (prefix, value string) {
	// Try colon separator first (priority:high)
	if parts := strings.SplitN(label, ":", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	// Try slash separator (priority/high)
	if parts := strings.SplitN(label, "/", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", label
}

// PriorityFromLabels extracts a priority level from labels.
// Supports "priority:high", "priority/high", bare "urgent"/"critical" and P0-P3.
// Returns "" when no label carries a priority.
func PriorityFromLabels(labels []Label) string {
	for _, label := range labels {
		prefix, value := ParseLabelName(strings.TrimSpace(label.Name))
		value = strings.ToLower(strings.TrimSpace(value))
		switch strings.ToLower(prefix) {
		case "priority":
			if level, ok := priorityLevels[value]; ok {
				return level
			}
		case "":
			switch value {
			case "urgent", "critical", "p0", "p1", "p2", "p3":
				return priorityLevels[value]
			}
		}
	}
	return ""
}

func labelNames(labels []Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}

func logins(users []User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Login)
	}
	return out
}

func login(u *User) string {
	if u == nil {
		return ""
	}
	return u.Login
}

func dueDate(m *Milestone) *time.Time {
	if m == nil || m.DueOn == nil {
		return nil
	}
	due := *m.DueOn
	return &due
}

// IssueToImported converts an issue into the source-neutral import shape.
func IssueToImported(issue Issue) models.ImportedItem {
	return models.ImportedItem{
		Source:    SourceName,
		Kind:      models.KindIssue,
		Number:    issue.Number,
		Title:     issue.Title,
		Body:      issue.Body,
		State:     issue.State,
		Labels:    labelNames(issue.Labels),
		Author:    login(issue.User),
		Assignees: logins(issue.Assignees),
		Priority:  PriorityFromLabels(issue.Labels),
		URL:       issue.HTMLURL,
		DueDate:   dueDate(issue.Milestone),
	}
}

// PullToImported converts a pull request into the source-neutral import shape.
func PullToImported(pr PullRequest) models.ImportedItem {
	return models.ImportedItem{
		Source:    SourceName,
		Kind:      models.KindPullRequest,
		Number:    pr.Number,
		Title:     pr.Title,
		Body:      pr.Body,
		State:     pr.State,
		Labels:    labelNames(pr.Labels),
		Author:    login(pr.User),
		Assignees: logins(pr.Assignees),
		Priority:  PriorityFromLabels(pr.Labels),
		URL:       pr.HTMLURL,
		DueDate:   dueDate(pr.Milestone),
	}
}
