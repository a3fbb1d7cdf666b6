package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.ItemRepository  = (*mockItemRepository)(nil)
	_ secondary.Locker          = (*mockLocker)(nil)
	_ secondary.VersionRecorder = (*mockVersionRecorder)(nil)
	_ secondary.LogWriter       = (*mockLogWriter)(nil)
	_ secondary.ImportSource    = (*mockImportSource)(nil)
	_ secondary.ReviewStore     = (*mockReviewStore)(nil)
)

// mockItemRepository keeps items in two maps mirroring the active and archive stores.
type mockItemRepository struct {
	active   map[string]*models.DeliveryItem
	archived map[string]*models.DeliveryItem
	issued   int
	now      func() time.Time

	// createErr, when set, is consulted for every Create.
	createErr  func(d *models.DeliveryItem) error
	archiveErr error
	listErr    error
}

func newMockItemRepository(now func() time.Time) *mockItemRepository {
	return &mockItemRepository{
		active:   make(map[string]*models.DeliveryItem),
		archived: make(map[string]*models.DeliveryItem),
		now:      now,
	}
}

// seedActive stores an item directly, bypassing Updated bookkeeping.
func (m *mockItemRepository) seedActive(d *models.DeliveryItem) {
	m.active[d.ID] = d
	if n, ok := item.ParseIDNumber(d.ID); ok && n > m.issued {
		m.issued = n
	}
}

func (m *mockItemRepository) seedArchived(d *models.DeliveryItem) {
	d.Status = models.StatusArchived
	m.archived[d.ID] = d
	if n, ok := item.ParseIDNumber(d.ID); ok && n > m.issued {
		m.issued = n
	}
}

func (m *mockItemRepository) ListActive(ctx context.Context) ([]*models.DeliveryItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*models.DeliveryItem
	for _, d := range m.active {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Constraints.WipSlot < result[j].Constraints.WipSlot
	})
	return result, nil
}

func (m *mockItemRepository) ListArchived(ctx context.Context) ([]*models.DeliveryItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*models.DeliveryItem
	for _, d := range m.archived {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Updated.After(result[j].Updated)
	})
	return result, nil
}

func (m *mockItemRepository) Get(ctx context.Context, id string) (*models.DeliveryItem, error) {
	if d, ok := m.active[id]; ok {
		c := *d
		return &c, nil
	}
	if d, ok := m.archived[id]; ok {
		c := *d
		return &c, nil
	}
	return nil, fmt.Errorf("item %s: %w", id, secondary.ErrNotFound)
}

func (m *mockItemRepository) Create(ctx context.Context, d *models.DeliveryItem) error {
	if m.createErr != nil {
		if err := m.createErr(d); err != nil {
			return err
		}
	}
	d.Updated = m.now()
	if d.Created.IsZero() {
		d.Created = d.Updated
	}
	c := *d
	m.active[d.ID] = &c
	if n, ok := item.ParseIDNumber(d.ID); ok && n > m.issued {
		m.issued = n
	}
	return nil
}

func (m *mockItemRepository) Save(ctx context.Context, d *models.DeliveryItem) error {
	d.Updated = m.now()
	c := *d
	m.active[d.ID] = &c
	return nil
}

func (m *mockItemRepository) Archive(ctx context.Context, d *models.DeliveryItem) error {
	if m.archiveErr != nil {
		return m.archiveErr
	}
	d.Status = models.StatusArchived
	d.Updated = m.now()
	c := *d
	m.archived[d.ID] = &c
	delete(m.active, d.ID)
	return nil
}

func (m *mockItemRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.active[id]; !ok {
		return false, nil
	}
	delete(m.active, id)
	return true, nil
}

func (m *mockItemRepository) NextID(ctx context.Context) (string, error) {
	return item.NextID(m.ids(), m.issued), nil
}

func (m *mockItemRepository) IssuedHighWater(ctx context.Context) (int, error) {
	return m.issued, nil
}

func (m *mockItemRepository) NextWipSlot(ctx context.Context, max int) (int, error) {
	active, _ := m.ListActive(ctx)
	return item.NextWipSlot(usedSlots(active), max), nil
}

func (m *mockItemRepository) CheckWipLimit(ctx context.Context, max int) (item.WipStatus, error) {
	return item.CheckWipLimit(len(m.active), max), nil
}

// Helper methods

func (m *mockItemRepository) ids() []string {
	var ids []string
	for id := range m.active {
		ids = append(ids, id)
	}
	for id := range m.archived {
		ids = append(ids, id)
	}
	return ids
}

// mockLocker counts lock and unlock calls.
type mockLocker struct {
	locks   int
	unlocks int
	lockErr error
}

func (m *mockLocker) Lock(ctx context.Context) (func(), error) {
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	m.locks++
	return func() { m.unlocks++ }, nil
}

// mockVersionRecorder records commit messages.
type mockVersionRecorder struct {
	commits   []string
	commitErr error
	pushErr   error
	pullErr   error
	pushes    int
	pulls     int
	history   []secondary.CommitRecord
	lastLimit int
}

func (m *mockVersionRecorder) Commit(ctx context.Context, message string) (bool, error) {
	if m.commitErr != nil {
		return false, m.commitErr
	}
	m.commits = append(m.commits, message)
	return true, nil
}

func (m *mockVersionRecorder) History(ctx context.Context, limit int) ([]secondary.CommitRecord, error) {
	m.lastLimit = limit
	if limit < len(m.history) {
		return m.history[:limit], nil
	}
	return m.history, nil
}

func (m *mockVersionRecorder) Push(ctx context.Context) error {
	m.pushes++
	return m.pushErr
}

func (m *mockVersionRecorder) Pull(ctx context.Context) error {
	m.pulls++
	return m.pullErr
}

// mockLogWriter records activity entries as "action:entity[:field]".
type mockLogWriter struct {
	entries []string
	err     error
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, "create:"+entityID)
	return m.err
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	m.entries = append(m.entries, "update:"+entityID+":"+fieldName)
	return m.err
}

func (m *mockLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, "delete:"+entityID)
	return m.err
}

// mockImportSource returns a fixed candidate list.
type mockImportSource struct {
	name       string
	configured bool
	items      []models.ImportedItem
	fetchErr   error
	fetched    int
	lastOpts   secondary.FetchOptions
}

func newMockImportSource(items ...models.ImportedItem) *mockImportSource {
	return &mockImportSource{name: "github", configured: true, items: items}
}

func (m *mockImportSource) Name() string { return m.name }

func (m *mockImportSource) IsConfigured() bool { return m.configured }

func (m *mockImportSource) FetchItems(ctx context.Context, opts secondary.FetchOptions) ([]models.ImportedItem, error) {
	m.fetched++
	m.lastOpts = opts
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.items, nil
}

// mockReviewStore keeps reviews in memory.
type mockReviewStore struct {
	reviews  map[string]string
	writeErr error
}

func newMockReviewStore() *mockReviewStore {
	return &mockReviewStore{reviews: make(map[string]string)}
}

func (m *mockReviewStore) Read(ctx context.Context, weekID string) (string, bool, error) {
	content, ok := m.reviews[weekID]
	return content, ok, nil
}

func (m *mockReviewStore) Write(ctx context.Context, weekID, content string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.reviews[weekID] = content
	return nil
}

func (m *mockReviewStore) List(ctx context.Context) ([]string, error) {
	var weeks []string
	for w := range m.reviews {
		weeks = append(weeks, w)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(weeks)))
	return weeks, nil
}

// ============================================================================
// Fixtures
// ============================================================================

var errDiskFull = errors.New("disk full")

// testClock is a settable clock shared by services and mocks.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// activeItem builds an active item occupying slot.
func activeItem(id string, slot int, linked ...int) *models.DeliveryItem {
	return &models.DeliveryItem{
		ID:     id,
		Status: models.StatusActive,
		Scope:  models.Scope{Title: "Item " + id},
		Constraints: models.Constraints{
			WipSlot: slot,
		},
		OutcomeTracking: models.OutcomeTracking{LinkedIssues: linked},
	}
}

func idFor(n int) string {
	return item.FormatID(n)
}

func issue(number int, title string, labels ...string) models.ImportedItem {
	return models.ImportedItem{
		Source: "github",
		Number: number,
		Title:  title,
		State:  "open",
		Labels: labels,
		Author: "octocat",
		Kind:   models.KindIssue,
	}
}
