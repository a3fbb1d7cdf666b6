package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/safer/internal/ports/secondary"
)

// recorder runs writes to the data root under its lock and records them in
// version history and the activity log. Any dependency may be nil.
type recorder struct {
	locker    secondary.Locker
	history   secondary.VersionRecorder
	logWriter secondary.LogWriter
	logger    *slog.Logger
}

func (r *recorder) lock(ctx context.Context) (func(), error) {
	if r.locker == nil {
		return func() {}, nil
	}
	unlock, err := r.locker.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock data directory: %w", err)
	}
	return unlock, nil
}

// commit records the current state of the data root. A failed commit does not
// undo the write; the failure is logged and returned as a warning.
func (r *recorder) commit(ctx context.Context, message string) string {
	if r.history == nil {
		return ""
	}
	committed, err := r.history.Commit(ctx, message)
	if err != nil {
		r.log().Warn("auto-commit failed", "message", message, "error", err)
		return fmt.Sprintf("change saved but not committed: %v", err)
	}
	if committed {
		r.log().Debug("committed", "message", message)
	}
	return ""
}

func (r *recorder) logCreate(ctx context.Context, entityType, entityID string) {
	if r.logWriter == nil {
		return
	}
	if err := r.logWriter.LogCreate(ctx, entityType, entityID); err != nil {
		r.log().Warn("activity log write failed", "entity", entityID, "error", err)
	}
}

func (r *recorder) logUpdate(ctx context.Context, entityType, entityID, field, oldValue, newValue string) {
	if r.logWriter == nil {
		return
	}
	if err := r.logWriter.LogUpdate(ctx, entityType, entityID, field, oldValue, newValue); err != nil {
		r.log().Warn("activity log write failed", "entity", entityID, "error", err)
	}
}

func (r *recorder) logDelete(ctx context.Context, entityType, entityID string) {
	if r.logWriter == nil {
		return
	}
	if err := r.logWriter.LogDelete(ctx, entityType, entityID); err != nil {
		r.log().Warn("activity log write failed", "entity", entityID, "error", err)
	}
}

func (r *recorder) log() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}
	return r.logger
}
