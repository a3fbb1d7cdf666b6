package github

import (
	"testing"
	"time"

	"github.com/example/safer/internal/models"
)

func TestParseLabelName(t *testing.T) {
	tests := []struct {
		label      string
		wantPrefix string
		wantValue  string
	}{
		{"priority:high", "priority", "high"},
		{"priority/low", "priority", "low"},
		{"bug", "", "bug"},
	}
	for _, tt := range tests {
		prefix, value := ParseLabelName(tt.label)
		if prefix != tt.wantPrefix || value != tt.wantValue {
			t.Errorf("ParseLabelName(%q) = (%q, %q), want (%q, %q)", tt.label, prefix, value, tt.wantPrefix, tt.wantValue)
		}
	}
}

func TestPriorityFromLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{"scoped colon", []string{"bug", "priority:High"}, "high"},
		{"scoped slash", []string{"priority/medium"}, "medium"},
		{"shorthand", []string{"P0"}, "critical"},
		{"bare urgent", []string{"urgent"}, "urgent"},
		{"unknown scoped value", []string{"priority:whenever"}, ""},
		{"none", []string{"enhancement"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := make([]Label, 0, len(tt.labels))
			for _, l := range tt.labels {
				labels = append(labels, Label{Name: l})
			}
			if got := PriorityFromLabels(labels); got != tt.want {
				t.Errorf("PriorityFromLabels(%v) = %q, want %q", tt.labels, got, tt.want)
			}
		})
	}
}

func TestIssueToImported(t *testing.T) {
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	issue := Issue{
		Number:    42,
		Title:     "Fix login",
		State:     "open",
		Labels:    []Label{{Name: "bug"}, {Name: "priority:high"}},
		User:      &User{Login: "sam"},
		Assignees: []User{{Login: "avery"}},
		Milestone: &Milestone{DueOn: &due},
		HTMLURL:   "https://github.com/owner/repo/issues/42",
	}

	got := IssueToImported(issue)
	if got.Kind != models.KindIssue || got.Source != SourceName {
		t.Errorf("kind/source = %s/%s", got.Kind, got.Source)
	}
	if got.Author != "sam" || got.Priority != "high" {
		t.Errorf("author/priority = %s/%s", got.Author, got.Priority)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due = %v, want %v", got.DueDate, due)
	}
	if len(got.Assignees) != 1 || got.Assignees[0] != "avery" {
		t.Errorf("assignees = %v", got.Assignees)
	}
}
