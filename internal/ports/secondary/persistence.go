// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
)

// ItemRepository defines the secondary port for delivery item persistence.
// Items live in exactly one of two stores: active or archive.
type ItemRepository interface {
	// ListActive returns active items ordered by WIP slot ascending.
	ListActive(ctx context.Context) ([]*models.DeliveryItem, error)

	// ListArchived returns archived items across all partitions, most recently updated first.
	ListArchived(ctx context.Context) ([]*models.DeliveryItem, error)

	// Get checks the active store, then the archive. Returns ErrNotFound if absent from both.
	Get(ctx context.Context, id string) (*models.DeliveryItem, error)

	// Create writes a new active record and sets Updated.
	Create(ctx context.Context, d *models.DeliveryItem) error

	// Save overwrites the active record. Updated is always refreshed.
	Save(ctx context.Context, d *models.DeliveryItem) error

	// Archive moves the item into the archive partition of the current month.
	Archive(ctx context.Context, d *models.DeliveryItem) error

	// Delete removes the active record only and reports whether one existed.
	Delete(ctx context.Context, id string) (bool, error)

	// NextID returns the next unused DI-### id.
	NextID(ctx context.Context) (string, error)

	// IssuedHighWater returns the highest id number ever issued.
	IssuedHighWater(ctx context.Context) (int, error)

	// NextWipSlot returns the lowest free slot in [1,max], or 1 if none is free.
	NextWipSlot(ctx context.Context, max int) (int, error)

	// CheckWipLimit reports current and max active counts. Advisory only.
	CheckWipLimit(ctx context.Context, max int) (item.WipStatus, error)
}

// ReviewStore defines the secondary port for weekly review artifacts.
type ReviewStore interface {
	// Read returns the stored markdown and whether it exists.
	Read(ctx context.Context, weekID string) (string, bool, error)

	// Write stores the markdown for a week, replacing any previous version.
	Write(ctx context.Context, weekID, content string) error

	// List returns the stored week ids, newest first.
	List(ctx context.Context) ([]string, error)
}

// Locker serialises mutations of one data root.
type Locker interface {
	// Lock blocks until the data root is held and returns the release func.
	Lock(ctx context.Context) (func(), error)
}
