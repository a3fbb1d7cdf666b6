package primary

import (
	"context"

	"github.com/example/safer/internal/models"
)

// ImportService defines the primary port for pulling work from external sources.
type ImportService interface {
	// Import fetches candidates, drops already-linked ones and creates items within WIP headroom.
	// Per-item failures are reported in the result, not returned.
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)

	// Preview runs the same selection as Import without writing anything.
	Preview(ctx context.Context, req ImportRequest) (*ImportResult, error)
}

// ImportRequest contains parameters for an import run.
type ImportRequest struct {
	Source       string // e.g. "github"
	AssignedToMe bool
	Label        string
	State        string
	Limit        int
}

// ImportResult is the structured outcome of an import run.
type ImportResult struct {
	Success  bool                   `json:"success"`
	Imported int                    `json:"imported"`
	Skipped  int                    `json:"skipped"`
	Errors   []string               `json:"errors"`
	Warnings []string               `json:"warnings"`
	Items    []*models.DeliveryItem `json:"items"`
	Note     string                 `json:"note,omitempty"`
	DryRun   bool                   `json:"dryRun,omitempty"`
}
