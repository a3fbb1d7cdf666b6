package primary

import (
	"context"

	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
)

// ItemService defines the primary port for delivery item operations.
type ItemService interface {
	// CreateItem creates a new active item. Fails with ErrWipLimitExceeded when no slot is free.
	CreateItem(ctx context.Context, req CreateItemRequest) (*CreateItemResponse, error)

	// GetItem retrieves an item from the active store or the archive.
	GetItem(ctx context.Context, id string) (*models.DeliveryItem, error)

	// ListItems lists active items by slot, or archived items newest first.
	ListItems(ctx context.Context, filters ItemFilters) ([]*models.DeliveryItem, error)

	// CheckWipLimit reports active capacity.
	CheckWipLimit(ctx context.Context) (item.WipStatus, error)

	// UpdateItem changes scope and plan fields. Nil fields are left untouched.
	UpdateItem(ctx context.Context, req UpdateItemRequest) (*models.DeliveryItem, error)

	// SetStatus moves an item between active and blocked.
	SetStatus(ctx context.Context, id string, status models.ItemStatus) (*models.DeliveryItem, error)

	// AddDoD appends a Definition-of-Done entry.
	AddDoD(ctx context.Context, id, text string) (*models.DoDEntry, error)

	// ToggleDoD sets the completed flag of a DoD entry.
	ToggleDoD(ctx context.Context, id, entryID string, completed bool) (*models.DoDEntry, error)

	// RemoveDoD deletes a DoD entry.
	RemoveDoD(ctx context.Context, id, entryID string) error

	// StartSession opens a focus session.
	StartSession(ctx context.Context, id string) (*models.FocusSession, error)

	// StopSession closes the running focus session.
	StopSession(ctx context.Context, id, notes string) (*models.FocusSession, error)

	// AddWorkLog appends a note to the work log.
	AddWorkLog(ctx context.Context, id, note string) (*models.WorkLogEntry, error)

	// RecordReview stores the post-delivery reflection.
	RecordReview(ctx context.Context, req RecordReviewRequest) (*models.DeliveryItem, error)

	// CompleteItem computes metrics and marks the item completed, optionally archiving it.
	CompleteItem(ctx context.Context, req CompleteItemRequest) (*models.DeliveryItem, error)

	// ArchiveItem moves an item into the archive.
	ArchiveItem(ctx context.Context, id string) (*models.DeliveryItem, error)

	// DeleteItem removes an active item without archiving. Reports whether it existed.
	DeleteItem(ctx context.Context, id string) (bool, error)
}

// CreateItemRequest contains parameters for creating an item.
type CreateItemRequest struct {
	Title          string
	Description    string
	Outcome        string
	Stakeholder    string
	Due            string // natural language, RFC3339 or YYYY-MM-DD; empty means one week
	Objectives     []string
	Dependencies   []string
	ValueStatement string
	DoD            []string // empty seeds the standard checklist
	TimeBoxMinutes int      // 0 uses the configured default
	LinkedIssues   []int
}

// CreateItemResponse contains the result of item creation.
type CreateItemResponse struct {
	Item    *models.DeliveryItem
	Warning string // set when the change could not be committed
}

// ItemFilters selects which store to list.
type ItemFilters struct {
	Archived bool
}

// UpdateItemRequest contains parameters for updating an item.
type UpdateItemRequest struct {
	ID             string
	Title          *string
	Description    *string
	Outcome        *string
	Stakeholder    *string
	Due            *string
	ValueStatement *string
	Objectives     []string // replaces when non-nil
	Dependencies   []string // replaces when non-nil
	TimeBoxMinutes *int
}

// RecordReviewRequest contains the review fields of an item.
type RecordReviewRequest struct {
	ID            string
	StressLevel   int
	IncidentCount int
	Blockers      []string
	Learnings     []string
}

// CompleteItemRequest contains parameters for completing an item.
type CompleteItemRequest struct {
	ID      string
	Archive bool
}
