package secondary

import (
	"context"

	"github.com/example/safer/internal/models"
)

// ImportSource is the capability set every external work source implements.
// Sources share no state; conversion to delivery items lives in core/importer.
type ImportSource interface {
	// Name returns the lowercase identifier of the source (e.g. "github").
	Name() string

	// IsConfigured reports whether the source is enabled and has credentials.
	// Checked before any network or file activity.
	IsConfigured() bool

	// FetchItems returns candidate items, filtered and truncated per opts.
	FetchItems(ctx context.Context, opts FetchOptions) ([]models.ImportedItem, error)
}

// FetchOptions narrows what a source returns.
type FetchOptions struct {
	AssignedToMe bool
	Label        string
	State        string // open (default), closed, all
	Limit        int    // 0 means no limit
}
