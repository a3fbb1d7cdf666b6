package primary

import "context"

// MetricsService defines the primary port for archive-wide metrics.
type MetricsService interface {
	// Aggregate scans the archive. An empty archive yields a zero aggregate.
	Aggregate(ctx context.Context) (*Aggregate, error)
}

// Aggregate summarises every archived item.
type Aggregate struct {
	TotalCompleted     int     `json:"totalCompleted"`
	AverageStress      float64 `json:"averageStress"`
	TotalIncidents     int     `json:"totalIncidents"`
	AverageCycleTime   float64 `json:"averageCycleTime"`
	CompletedLast7Days int     `json:"completedLast7Days"`
	TotalFocusMinutes  int     `json:"totalFocusMinutes"`
}

// ReviewService defines the primary port for weekly review artifacts.
type ReviewService interface {
	// Generate writes the review of weekID (current week when empty), keeping written reflections.
	Generate(ctx context.Context, weekID string) (*ReviewResult, error)

	// Show returns the stored markdown of a week.
	Show(ctx context.Context, weekID string) (string, error)

	// List returns the stored week ids, newest first.
	List(ctx context.Context) ([]string, error)
}

// ReviewResult describes a generated review.
type ReviewResult struct {
	WeekID    string `json:"weekId"`
	Completed int    `json:"completed"`
	Merged    bool   `json:"merged"`
	Content   string `json:"content"`
}
