package app

import (
	"context"
	"testing"
	"time"

	"github.com/example/safer/internal/models"
)

func archivedItem(id string, updated time.Time, stress, incidents, cycle int, sessionMinutes ...int) *models.DeliveryItem {
	d := activeItem(id, 1)
	d.Updated = updated
	d.OutcomeTracking.Review.StressLevel = stress
	d.OutcomeTracking.Review.IncidentCount = incidents
	d.OutcomeTracking.Metrics.CycleTimeDays = cycle
	for _, m := range sessionMinutes {
		start := updated.Add(-time.Duration(m) * time.Minute)
		end := updated
		d.Constraints.TimeBox.Sessions = append(d.Constraints.TimeBox.Sessions, models.FocusSession{
			Start:           start,
			End:             &end,
			DurationMinutes: m,
		})
	}
	return d
}

func TestMetricsService_EmptyArchive(t *testing.T) {
	clock := newTestClock()
	service := NewMetricsService(newMockItemRepository(clock.now))

	agg, err := service.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if agg.TotalCompleted != 0 || agg.AverageStress != 0 || agg.AverageCycleTime != 0 {
		t.Errorf("expected zero aggregate, got %+v", agg)
	}
}

func TestMetricsService_Aggregate(t *testing.T) {
	clock := newTestClock()
	repo := newMockItemRepository(clock.now)
	now := clock.now()

	repo.seedArchived(archivedItem("DI-001", now.Add(-2*24*time.Hour), 4, 1, 3, 30, 15))
	repo.seedArchived(archivedItem("DI-002", now.Add(-30*24*time.Hour), 2, 0, 5, 60))
	// Stress never recorded: excluded from the stress average only.
	repo.seedArchived(archivedItem("DI-003", now.Add(-1*time.Hour), 0, 2, 1))

	service := NewMetricsService(repo)
	service.now = clock.now

	agg, err := service.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if agg.TotalCompleted != 3 {
		t.Errorf("expected 3 completed, got %d", agg.TotalCompleted)
	}
	if agg.AverageStress != 3 {
		t.Errorf("expected average stress 3, got %v", agg.AverageStress)
	}
	if agg.TotalIncidents != 3 {
		t.Errorf("expected 3 incidents, got %d", agg.TotalIncidents)
	}
	if agg.AverageCycleTime != 3 {
		t.Errorf("expected average cycle time 3, got %v", agg.AverageCycleTime)
	}
	if agg.CompletedLast7Days != 2 {
		t.Errorf("expected 2 completed in the last 7 days, got %d", agg.CompletedLast7Days)
	}
	if agg.TotalFocusMinutes != 105 {
		t.Errorf("expected 105 focus minutes, got %d", agg.TotalFocusMinutes)
	}
}
