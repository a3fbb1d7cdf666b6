package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safer/internal/adapters/filesystem"
	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/secondary"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupRepo(t *testing.T) (*filesystem.ItemRepository, string, *fakeClock) {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "data")
	clock := &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	repo := filesystem.NewItemRepository(dataDir, clock.now)
	require.NoError(t, repo.Init())
	return repo, dataDir, clock
}

func newItem(id string, slot int) *models.DeliveryItem {
	return &models.DeliveryItem{
		ID:     id,
		Status: models.StatusActive,
		Scope:  models.Scope{Title: "item " + id},
		Constraints: models.Constraints{
			WipSlot: slot,
		},
	}
}

func TestItemRepository_CreateAndGet(t *testing.T) {
	repo, dataDir, clock := setupRepo(t)
	ctx := context.Background()

	d := newItem("DI-001", 1)
	require.NoError(t, repo.Create(ctx, d))

	assert.FileExists(t, filepath.Join(dataDir, "active", "DI-001.json"))
	assert.Equal(t, clock.t, d.Updated)
	assert.Equal(t, clock.t, d.Created)

	got, err := repo.Get(ctx, "DI-001")
	require.NoError(t, err)
	assert.Equal(t, "item DI-001", got.Title())
	assert.Equal(t, 1, got.Constraints.WipSlot)
}

func TestItemRepository_GetMissing(t *testing.T) {
	repo, _, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), "DI-404")
	assert.ErrorIs(t, err, secondary.ErrNotFound)
}

func TestItemRepository_SaveAlwaysTouches(t *testing.T) {
	repo, _, clock := setupRepo(t)
	ctx := context.Background()

	d := newItem("DI-001", 1)
	require.NoError(t, repo.Create(ctx, d))
	first := d.Updated

	clock.advance(time.Minute)
	require.NoError(t, repo.Save(ctx, d))

	got, err := repo.Get(ctx, "DI-001")
	require.NoError(t, err)
	assert.True(t, got.Updated.After(first))
}

func TestItemRepository_ListActiveOrderedBySlot(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newItem("DI-001", 3)))
	require.NoError(t, repo.Create(ctx, newItem("DI-002", 1)))
	require.NoError(t, repo.Create(ctx, newItem("DI-003", 2)))

	items, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"DI-002", "DI-003", "DI-001"}, ids(items))
}

func TestItemRepository_NextID(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	id, err := repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "DI-001", id)

	require.NoError(t, repo.Create(ctx, newItem("DI-001", 1)))
	require.NoError(t, repo.Create(ctx, newItem("DI-002", 2)))
	require.NoError(t, repo.Archive(ctx, newItem("DI-002", 2)))

	id, err = repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "DI-003", id, "archived ids count")
}

func TestItemRepository_NextIDNotReusedAfterDelete(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newItem("DI-001", 1)))
	require.NoError(t, repo.Create(ctx, newItem("DI-002", 2)))

	existed, err := repo.Delete(ctx, "DI-002")
	require.NoError(t, err)
	assert.True(t, existed)

	id, err := repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "DI-003", id)
}

func TestItemRepository_DeleteMissing(t *testing.T) {
	repo, _, _ := setupRepo(t)

	existed, err := repo.Delete(context.Background(), "DI-009")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestItemRepository_Archive(t *testing.T) {
	repo, dataDir, _ := setupRepo(t)
	ctx := context.Background()

	d := newItem("DI-001", 2)
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.Archive(ctx, d))

	assert.NoFileExists(t, filepath.Join(dataDir, "active", "DI-001.json"))
	assert.FileExists(t, filepath.Join(dataDir, "archive", "2026", "03", "DI-001.json"))

	got, err := repo.Get(ctx, "DI-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, got.Status)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := repo.ListArchived(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "DI-001", archived[0].ID)
}

func TestItemRepository_ArchiveRollsBackWhenActiveCannotBeRemoved(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	repo, dataDir, _ := setupRepo(t)
	ctx := context.Background()

	d := newItem("DI-001", 1)
	require.NoError(t, repo.Create(ctx, d))

	activeDir := filepath.Join(dataDir, "active")
	require.NoError(t, os.Chmod(activeDir, 0o555))
	t.Cleanup(func() { os.Chmod(activeDir, 0o755) })

	err := repo.Archive(ctx, d)
	require.ErrorIs(t, err, secondary.ErrIO)

	archived, err := repo.ListArchived(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)
	assert.FileExists(t, filepath.Join(activeDir, "DI-001.json"))
}

func TestItemRepository_ListArchivedNewestFirst(t *testing.T) {
	repo, _, clock := setupRepo(t)
	ctx := context.Background()

	for _, id := range []string{"DI-001", "DI-002", "DI-003"} {
		d := newItem(id, 1)
		require.NoError(t, repo.Create(ctx, d))
		require.NoError(t, repo.Archive(ctx, d))
		clock.advance(40 * 24 * time.Hour)
	}

	archived, err := repo.ListArchived(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"DI-003", "DI-002", "DI-001"}, ids(archived))
}

func TestItemRepository_WipSlotsAndLimit(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	slot, err := repo.NextWipSlot(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	require.NoError(t, repo.Create(ctx, newItem("DI-001", 1)))
	require.NoError(t, repo.Create(ctx, newItem("DI-002", 3)))

	slot, err = repo.NextWipSlot(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, slot)

	status, err := repo.CheckWipLimit(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Current)
	assert.Equal(t, 3, status.Max)
	assert.True(t, status.WithinLimit)

	require.NoError(t, repo.Create(ctx, newItem("DI-003", 2)))
	status, err = repo.CheckWipLimit(ctx, 3)
	require.NoError(t, err)
	assert.False(t, status.WithinLimit)

	slot, err = repo.NextWipSlot(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, slot, "falls back to 1 when full")
}

func TestItemRepository_UnreadableActiveRecordFailsCapacityChecks(t *testing.T) {
	repo, dataDir, _ := setupRepo(t)
	ctx := context.Background()

	for i, id := range []string{"DI-001", "DI-002", "DI-003"} {
		require.NoError(t, repo.Create(ctx, newItem(id, i+1)))
	}
	truncated := filepath.Join(dataDir, "active", "DI-002.json")
	require.NoError(t, os.WriteFile(truncated, []byte(`{"id": "DI-0`), 0o644))

	_, err := repo.ListActive(ctx)
	assert.ErrorIs(t, err, secondary.ErrIO)
	assert.ErrorContains(t, err, "DI-002.json")

	_, err = repo.CheckWipLimit(ctx, 3)
	assert.ErrorIs(t, err, secondary.ErrIO)

	_, err = repo.NextWipSlot(ctx, 3)
	assert.ErrorIs(t, err, secondary.ErrIO)
}

func TestItemRepository_ListArchivedSkipsUnreadableRecord(t *testing.T) {
	repo, dataDir, _ := setupRepo(t)
	ctx := context.Background()

	d := newItem("DI-001", 1)
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.Archive(ctx, d))
	broken := filepath.Join(dataDir, "archive", "2026", "03", "DI-002.json")
	require.NoError(t, os.WriteFile(broken, []byte("not json"), 0o644))

	archived, err := repo.ListArchived(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"DI-001"}, ids(archived))
}

func TestItemRepository_RejectsMalformedIDs(t *testing.T) {
	repo, dataDir, _ := setupRepo(t)
	ctx := context.Background()

	d := newItem("DI-001", 1)
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.Archive(ctx, d))
	archived := filepath.Join(dataDir, "archive", "2026", "03", "DI-001.json")
	require.FileExists(t, archived)

	bad := []string{
		"../archive/2026/03/DI-001",
		"DI-001/../DI-001",
		"di-001",
		"",
	}
	for _, id := range bad {
		t.Run(id, func(t *testing.T) {
			existed, err := repo.Delete(ctx, id)
			assert.ErrorIs(t, err, secondary.ErrNotFound)
			assert.False(t, existed)

			_, err = repo.Get(ctx, id)
			assert.ErrorIs(t, err, secondary.ErrNotFound)

			assert.Error(t, repo.Create(ctx, newItem(id, 2)))
			assert.Error(t, repo.Save(ctx, newItem(id, 2)))
		})
	}

	assert.FileExists(t, archived)
	got, err := repo.Get(ctx, "DI-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, got.Status)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestItemRepository_CreateLeavesNoRecordWhenMetaWriteFails(t *testing.T) {
	repo, dataDir, _ := setupRepo(t)
	ctx := context.Background()

	// A directory in place of meta.json makes the high-water update fail.
	require.NoError(t, os.Mkdir(filepath.Join(dataDir, "meta.json"), 0o755))

	err := repo.Create(ctx, newItem("DI-001", 1))
	require.ErrorIs(t, err, secondary.ErrIO)
	assert.NoFileExists(t, filepath.Join(dataDir, "active", "DI-001.json"))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func ids(items []*models.DeliveryItem) []string {
	out := make([]string, 0, len(items))
	for _, d := range items {
		out = append(out, d.ID)
	}
	return out
}
