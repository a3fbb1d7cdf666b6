package secondary

import (
	"context"
	"time"
)

// VersionRecorder defines the secondary port for the change history of the data directory.
type VersionRecorder interface {
	// Commit stages every change and commits it with the configured prefix.
	// Returns false without error when auto-commit is off or nothing changed.
	Commit(ctx context.Context, message string) (bool, error)

	// History returns up to limit commits, newest first.
	History(ctx context.Context, limit int) ([]CommitRecord, error)

	// Push sends local history to the configured remote.
	Push(ctx context.Context) error

	// Pull fetches and merges history from the configured remote.
	Pull(ctx context.Context) error
}

// CommitRecord represents one commit of the data directory.
type CommitRecord struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	When    time.Time `json:"when"`
}
