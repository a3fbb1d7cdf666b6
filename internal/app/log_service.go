package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

const defaultActivityLimit = 50

// LogServiceImpl reads and prunes the activity log of item mutations.
type LogServiceImpl struct {
	logRepo secondary.ActivityLogRepository
}

// NewLogService creates a new LogService over the activity log repository.
func NewLogService(logRepo secondary.ActivityLogRepository) *LogServiceImpl {
	return &LogServiceImpl{logRepo: logRepo}
}

// ListLogs returns activity entries, newest first. Item ids match
// case-insensitively and an unset limit shows the most recent 50.
func (s *LogServiceImpl) ListLogs(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	action := strings.ToLower(strings.TrimSpace(filters.Action))
	switch action {
	case "", "create", "update", "delete":
	default:
		return nil, fmt.Errorf("unknown action %q (expected create, update or delete)", filters.Action)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	records, err := s.logRepo.List(ctx, secondary.ActivityLogFilters{
		EntityType: filters.EntityType,
		EntityID:   strings.ToUpper(strings.TrimSpace(filters.EntityID)),
		ActorID:    filters.ActorID,
		Action:     action,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	entries := make([]*primary.LogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, toLogEntry(r))
	}
	return entries, nil
}

// GetLog looks up one entry by its AL-#### id.
func (s *LogServiceImpl) GetLog(ctx context.Context, id string) (*primary.LogEntry, error) {
	record, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLogEntry(record), nil
}

// PruneLogs deletes entries older than the retention window.
func (s *LogServiceImpl) PruneLogs(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays < 1 {
		return 0, fmt.Errorf("retention must be at least 1 day (got %d)", olderThanDays)
	}
	n, err := s.logRepo.PruneOlderThan(ctx, olderThanDays)
	if err != nil {
		return 0, fmt.Errorf("failed to prune activity: %w", err)
	}
	return n, nil
}

func toLogEntry(r *secondary.ActivityLogRecord) *primary.LogEntry {
	e := primary.LogEntry(*r)
	return &e
}

// Ensure LogServiceImpl implements the interface
var _ primary.LogService = (*LogServiceImpl)(nil)
