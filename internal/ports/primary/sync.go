package primary

import (
	"context"

	"github.com/example/safer/internal/ports/secondary"
)

// SyncService defines the primary port for history and remote synchronisation.
// Push and Pull are only ever run on request.
type SyncService interface {
	// Push sends local history to the remote.
	Push(ctx context.Context) error

	// Pull merges remote history into the data directory.
	Pull(ctx context.Context) error

	// History lists recent commits of the data directory.
	History(ctx context.Context, limit int) ([]secondary.CommitRecord, error)
}
