package models

import "time"

// ImportedKind distinguishes issues from pull requests.
type ImportedKind string

// Imported item kinds.
const (
	KindIssue       ImportedKind = "issue"
	KindPullRequest ImportedKind = "pull_request"
)

// ImportedItem is an external work item as returned by an import source,
// before it is mapped onto a DeliveryItem.
type ImportedItem struct {
	Source    string       `json:"source"`
	Kind      ImportedKind `json:"kind"`
	Number    int          `json:"number"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	State     string       `json:"state"`
	Labels    []string     `json:"labels"`
	Author    string       `json:"author"`
	Assignees []string     `json:"assignees"`
	Priority  string       `json:"priority"` // urgent, critical, high, medium, low or empty
	URL       string       `json:"url"`
	DueDate   *time.Time   `json:"dueDate,omitempty"`
}
