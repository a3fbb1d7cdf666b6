package secondary

import "errors"

// Sentinel errors shared by adapters and services. Wrap them with fmt.Errorf
// and test with errors.Is.
var (
	// ErrNotFound is returned when an item id is in neither store.
	ErrNotFound = errors.New("not found")

	// ErrIO wraps filesystem failures.
	ErrIO = errors.New("io error")

	// ErrWipLimitExceeded is returned when no WIP headroom is left.
	ErrWipLimitExceeded = errors.New("wip limit exceeded")

	// ErrRemoteNotConfigured is returned by push/pull without a remote.
	ErrRemoteNotConfigured = errors.New("remote not configured")

	// ErrSyncDisabled is returned by push/pull when sync is turned off.
	ErrSyncDisabled = errors.New("sync disabled")

	// ErrImporterNotConfigured is returned when an import source is disabled or lacks credentials.
	ErrImporterNotConfigured = errors.New("importer not configured")
)
