package secondary

import "context"

// LogWriter defines the interface for writing audit log entries.
// Implementations extract the actor from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error
}

// ActivityLogRepository defines the secondary port for activity log (audit trail) persistence.
// Logs are immutable - no Update operations, but old entries can be pruned.
type ActivityLogRepository interface {
	// Create persists a new activity log entry.
	Create(ctx context.Context, log *ActivityLogRecord) error

	// GetByID retrieves a log entry by its ID.
	GetByID(ctx context.Context, id string) (*ActivityLogRecord, error)

	// List retrieves log entries matching the given filters.
	List(ctx context.Context, filters ActivityLogFilters) ([]*ActivityLogRecord, error)

	// GetNextID returns the next available log ID.
	GetNextID(ctx context.Context) (string, error)

	// PruneOlderThan deletes log entries older than the given number of days.
	// Returns the number of deleted entries.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

// ActivityLogRecord represents an activity log entry as stored in persistence.
type ActivityLogRecord struct {
	ID         string
	Timestamp  string
	ActorID    string // Empty string means null
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete'
	FieldName  string // Empty string means null - for updates only
	OldValue   string // Empty string means null
	NewValue   string // Empty string means null
}

// ActivityLogFilters contains filter options for querying logs.
type ActivityLogFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Limit      int
}
