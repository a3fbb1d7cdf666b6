package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

// ReportAdapter renders metrics, weekly reviews, history and the activity log.
type ReportAdapter struct {
	metrics primary.MetricsService
	reviews primary.ReviewService
	sync    primary.SyncService
	logs    primary.LogService
	out     io.Writer
	json    bool
}

// NewReportAdapter creates a new ReportAdapter.
func NewReportAdapter(
	metrics primary.MetricsService,
	reviews primary.ReviewService,
	sync primary.SyncService,
	logs primary.LogService,
	out io.Writer,
	asJSON bool,
) *ReportAdapter {
	return &ReportAdapter{
		metrics: metrics,
		reviews: reviews,
		sync:    sync,
		logs:    logs,
		out:     out,
		json:    asJSON,
	}
}

// Metrics prints the archive aggregate.
func (a *ReportAdapter) Metrics(ctx context.Context) error {
	agg, err := a.metrics.Aggregate(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return writeJSON(a.out, agg)
	}

	if agg.TotalCompleted == 0 {
		fmt.Fprintln(a.out, "No archived items yet")
		return nil
	}
	fmt.Fprintf(a.out, "\n%-28s %d\n", "Completed:", agg.TotalCompleted)
	fmt.Fprintf(a.out, "%-28s %d\n", "Completed (last 7 days):", agg.CompletedLast7Days)
	fmt.Fprintf(a.out, "%-28s %.1f\n", "Average stress:", agg.AverageStress)
	fmt.Fprintf(a.out, "%-28s %d\n", "Incidents:", agg.TotalIncidents)
	fmt.Fprintf(a.out, "%-28s %.1f days\n", "Average cycle time:", agg.AverageCycleTime)
	fmt.Fprintf(a.out, "%-28s %dm\n\n", "Focus time:", agg.TotalFocusMinutes)
	return nil
}

// GenerateReview writes the weekly review.
func (a *ReportAdapter) GenerateReview(ctx context.Context, weekID string) error {
	result, err := a.reviews.Generate(ctx, weekID)
	if err != nil {
		return err
	}
	if a.json {
		return writeJSON(a.out, result)
	}

	verb := "Generated"
	if result.Merged {
		verb = "Refreshed"
	}
	fmt.Fprintf(a.out, "%s %s review %s (%d completed item(s))\n", okMark, verb, result.WeekID, result.Completed)
	return nil
}

// ShowReview prints a stored weekly review.
func (a *ReportAdapter) ShowReview(ctx context.Context, weekID string) error {
	content, err := a.reviews.Show(ctx, weekID)
	if err != nil {
		return err
	}
	if a.json {
		return writeJSON(a.out, map[string]string{"weekId": weekID, "content": content})
	}
	fmt.Fprint(a.out, content)
	return nil
}

// ListReviews prints stored review week ids.
func (a *ReportAdapter) ListReviews(ctx context.Context) error {
	weeks, err := a.reviews.List(ctx)
	if err != nil {
		return err
	}
	if a.json {
		if weeks == nil {
			weeks = []string{}
		}
		return writeJSON(a.out, weeks)
	}
	if len(weeks) == 0 {
		fmt.Fprintln(a.out, "No weekly reviews yet")
		return nil
	}
	for _, w := range weeks {
		fmt.Fprintln(a.out, w)
	}
	return nil
}

// History prints recent commits of the data directory.
func (a *ReportAdapter) History(ctx context.Context, limit int) error {
	commits, err := a.sync.History(ctx, limit)
	if err != nil {
		return err
	}
	if a.json {
		if commits == nil {
			commits = []secondary.CommitRecord{}
		}
		return writeJSON(a.out, commits)
	}
	if len(commits) == 0 {
		fmt.Fprintln(a.out, "No history yet")
		return nil
	}
	for _, c := range commits {
		fmt.Fprintf(a.out, "%s  %s  %s\n", shortHash(c.Hash), formatTime(c.When), c.Message)
	}
	return nil
}

// Activity prints activity log entries.
func (a *ReportAdapter) Activity(ctx context.Context, filters primary.LogFilters) error {
	entries, err := a.logs.ListLogs(ctx, filters)
	if err != nil {
		return err
	}
	if a.json {
		if entries == nil {
			entries = []*primary.LogEntry{}
		}
		return writeJSON(a.out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No activity recorded")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-8s %-20s %-8s %-8s %-14s %s\n", "ID", "TIME", "ACTION", "ITEM", "ACTOR", "CHANGE")
	fmt.Fprintln(a.out, rule)
	for _, e := range entries {
		change := ""
		if e.FieldName != "" {
			change = fmt.Sprintf("%s: %s → %s", e.FieldName, truncate(orDash(e.OldValue), 20), truncate(orDash(e.NewValue), 20))
		}
		fmt.Fprintf(a.out, "%-8s %-20s %-8s %-8s %-14s %s\n", e.ID, e.Timestamp, e.Action, e.EntityID, orDash(e.ActorID), change)
	}
	fmt.Fprintln(a.out)
	return nil
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
