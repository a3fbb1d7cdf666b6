package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

// defaultHistoryLimit applies when History is called without a limit.
const defaultHistoryLimit = 20

// SyncServiceImpl implements the SyncService interface.
type SyncServiceImpl struct {
	history secondary.VersionRecorder
	locker  secondary.Locker
	logger  *slog.Logger
}

// NewSyncService creates a new SyncService with injected dependencies.
func NewSyncService(history secondary.VersionRecorder, locker secondary.Locker, logger *slog.Logger) *SyncServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncServiceImpl{
		history: history,
		locker:  locker,
		logger:  logger,
	}
}

// Push sends local history to the remote.
func (s *SyncServiceImpl) Push(ctx context.Context) error {
	if err := s.history.Push(ctx); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	s.logger.Info("pushed data history")
	return nil
}

// Pull merges remote history. The data root is held so no mutation runs mid-merge.
func (s *SyncServiceImpl) Pull(ctx context.Context) error {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx)
		if err != nil {
			return fmt.Errorf("failed to lock data directory: %w", err)
		}
		defer unlock()
	}
	if err := s.history.Pull(ctx); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}
	s.logger.Info("pulled data history")
	return nil
}

// History lists recent commits of the data directory.
func (s *SyncServiceImpl) History(ctx context.Context, limit int) ([]secondary.CommitRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.history.History(ctx, limit)
}

// Ensure SyncServiceImpl implements the interface
var _ primary.SyncService = (*SyncServiceImpl)(nil)
