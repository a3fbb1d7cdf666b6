package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/safer/internal/core/review"
	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

// ReviewServiceImpl implements the ReviewService interface.
type ReviewServiceImpl struct {
	repo  secondary.ItemRepository
	store secondary.ReviewStore
	rec   *recorder
	now   func() time.Time
}

// NewReviewService creates a new ReviewService with injected dependencies.
func NewReviewService(
	repo secondary.ItemRepository,
	store secondary.ReviewStore,
	locker secondary.Locker,
	history secondary.VersionRecorder,
	logger *slog.Logger,
) *ReviewServiceImpl {
	return &ReviewServiceImpl{
		repo:  repo,
		store: store,
		rec: &recorder{
			locker:  locker,
			history: history,
			logger:  logger,
		},
		now: time.Now,
	}
}

// Generate writes the review of weekID, defaulting to the current week.
// Written reflections of an existing review are kept.
func (s *ReviewServiceImpl) Generate(ctx context.Context, weekID string) (*primary.ReviewResult, error) {
	now := s.now()
	weekID, err := s.resolveWeek(weekID, now)
	if err != nil {
		return nil, err
	}

	unlock, err := s.rec.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	archived, err := s.repo.ListArchived(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived items: %w", err)
	}
	completed := itemsInWeek(archived, weekID)

	agg := aggregate(completed, now)
	summary := review.Summary{
		Completed:     agg.TotalCompleted,
		AverageStress: agg.AverageStress,
		Incidents:     agg.TotalIncidents,
		AverageCycle:  agg.AverageCycleTime,
		FocusMinutes:  agg.TotalFocusMinutes,
	}
	entries := make([]review.CompletedEntry, len(completed))
	for i, d := range completed {
		entries[i] = review.CompletedEntry{
			ID:            d.ID,
			Title:         d.Title(),
			CycleTimeDays: d.OutcomeTracking.Metrics.CycleTimeDays,
			StressLevel:   d.OutcomeTracking.Review.StressLevel,
		}
	}

	doc := review.NewDocument(review.FrontMatter{
		Week:      weekID,
		Generated: now,
		Items:     len(completed),
	}, summary, entries)

	existing, found, err := s.store.Read(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if found {
		doc, err = review.Merge(existing, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to merge existing review %s: %w", weekID, err)
		}
	}

	content, err := doc.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render review: %w", err)
	}
	if err := s.store.Write(ctx, weekID, content); err != nil {
		return nil, err
	}
	s.rec.commit(ctx, fmt.Sprintf("Weekly review %s", weekID))

	return &primary.ReviewResult{
		WeekID:    weekID,
		Completed: len(completed),
		Merged:    found,
		Content:   content,
	}, nil
}

// Show returns the stored markdown of a week.
func (s *ReviewServiceImpl) Show(ctx context.Context, weekID string) (string, error) {
	weekID, err := s.resolveWeek(weekID, s.now())
	if err != nil {
		return "", err
	}
	content, found, err := s.store.Read(ctx, weekID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("review %s: %w. Generate it with: safer weekly generate %s", weekID, secondary.ErrNotFound, weekID)
	}
	return content, nil
}

// List returns the stored week ids, newest first.
func (s *ReviewServiceImpl) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Helper methods

func (s *ReviewServiceImpl) resolveWeek(weekID string, now time.Time) (string, error) {
	if weekID == "" {
		return review.WeekID(now), nil
	}
	if _, _, err := review.ParseWeekID(weekID); err != nil {
		return "", err
	}
	return weekID, nil
}

// itemsInWeek selects items whose last update falls in weekID, oldest first.
func itemsInWeek(items []*models.DeliveryItem, weekID string) []*models.DeliveryItem {
	var selected []*models.DeliveryItem
	for _, d := range items {
		if review.WeekID(d.Updated) == weekID {
			selected = append(selected, d)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Updated.Before(selected[j].Updated)
	})
	return selected
}

// Ensure ReviewServiceImpl implements the interface
var _ primary.ReviewService = (*ReviewServiceImpl)(nil)
