package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

// trendWindow is the look-back of the completion trend.
const trendWindow = 7 * 24 * time.Hour

// MetricsServiceImpl implements the MetricsService interface.
type MetricsServiceImpl struct {
	repo secondary.ItemRepository
	now  func() time.Time
}

// NewMetricsService creates a new MetricsService with injected dependencies.
func NewMetricsService(repo secondary.ItemRepository) *MetricsServiceImpl {
	return &MetricsServiceImpl{
		repo: repo,
		now:  time.Now,
	}
}

// Aggregate scans the archive. An empty archive yields a zero aggregate.
func (s *MetricsServiceImpl) Aggregate(ctx context.Context) (*primary.Aggregate, error) {
	archived, err := s.repo.ListArchived(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived items: %w", err)
	}
	agg := aggregate(archived, s.now())
	return &agg, nil
}

// aggregate accumulates archive-wide metrics. Average stress only counts
// items whose stress was recorded.
func aggregate(items []*models.DeliveryItem, now time.Time) primary.Aggregate {
	var (
		agg         primary.Aggregate
		stressSum   int
		stressCount int
		cycleSum    int
	)
	for _, d := range items {
		agg.TotalCompleted++
		if stress := d.OutcomeTracking.Review.StressLevel; stress > 0 {
			stressSum += stress
			stressCount++
		}
		agg.TotalIncidents += d.OutcomeTracking.Review.IncidentCount
		cycleSum += d.OutcomeTracking.Metrics.CycleTimeDays
		agg.TotalFocusMinutes += item.SessionMinutes(d.Constraints.TimeBox.Sessions)

		age := now.Sub(d.Updated)
		if age >= 0 && age <= trendWindow {
			agg.CompletedLast7Days++
		}
	}
	if stressCount > 0 {
		agg.AverageStress = float64(stressSum) / float64(stressCount)
	}
	if agg.TotalCompleted > 0 {
		agg.AverageCycleTime = float64(cycleSum) / float64(agg.TotalCompleted)
	}
	return agg
}

// Ensure MetricsServiceImpl implements the interface
var _ primary.MetricsService = (*MetricsServiceImpl)(nil)
