// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/secondary"
)

const (
	activeDirName  = "active"
	archiveDirName = "archive"
	metaFileName   = "meta.json"
)

// meta holds repository bookkeeping that must survive deletions.
type meta struct {
	LastID int `json:"lastId"`
}

// ItemRepository implements secondary.ItemRepository with one JSON file per item.
type ItemRepository struct {
	dataDir string
	now     func() time.Time
	logger  *slog.Logger
}

// NewItemRepository creates a repository rooted at dataDir.
// now may be nil, in which case time.Now is used.
func NewItemRepository(dataDir string, now func() time.Time) *ItemRepository {
	if now == nil {
		now = time.Now
	}
	return &ItemRepository{dataDir: dataDir, now: now, logger: slog.Default()}
}

// WithLogger sets the logger used to report skipped archive records.
func (r *ItemRepository) WithLogger(logger *slog.Logger) *ItemRepository {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Init creates the active and archive directories.
func (r *ItemRepository) Init() error {
	for _, dir := range []string{r.activeDir(), r.archiveDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %v", secondary.ErrIO, dir, err)
		}
	}
	return nil
}

func (r *ItemRepository) activeDir() string {
	return filepath.Join(r.dataDir, activeDirName)
}

func (r *ItemRepository) archiveDir() string {
	return filepath.Join(r.dataDir, archiveDirName)
}

func (r *ItemRepository) activePath(id string) string {
	return filepath.Join(r.activeDir(), id+".json")
}

func (r *ItemRepository) archivePath(id string, at time.Time) string {
	return filepath.Join(r.archiveDir(), fmt.Sprintf("%04d", at.Year()), fmt.Sprintf("%02d", int(at.Month())), id+".json")
}

// ListActive returns active items ordered by WIP slot ascending.
func (r *ItemRepository) ListActive(ctx context.Context) ([]*models.DeliveryItem, error) {
	items, err := readDir(r.activeDir())
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Constraints.WipSlot != items[j].Constraints.WipSlot {
			return items[i].Constraints.WipSlot < items[j].Constraints.WipSlot
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// ListArchived walks every year/month partition and returns items newest first.
func (r *ItemRepository) ListArchived(ctx context.Context) ([]*models.DeliveryItem, error) {
	var items []*models.DeliveryItem
	err := filepath.WalkDir(r.archiveDir(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		rec, err := readItem(path)
		if err != nil {
			r.logger.Warn("skipping unreadable archived item", "path", path, "error", err)
			return nil
		}
		items = append(items, rec)
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: walk archive: %v", secondary.ErrIO, err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Updated.After(items[j].Updated)
	})
	return items, nil
}

// Get checks the active store first, then the archive.
func (r *ItemRepository) Get(ctx context.Context, id string) (*models.DeliveryItem, error) {
	if !validID(id) {
		return nil, fmt.Errorf("item %q: %w", id, secondary.ErrNotFound)
	}
	d, err := readItem(r.activePath(id))
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read %s: %v", secondary.ErrIO, id, err)
	}

	path, err := r.findArchived(id)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("item %s: %w", id, secondary.ErrNotFound)
	}
	d, err = readItem(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", secondary.ErrIO, id, err)
	}
	return d, nil
}

// findArchived returns the archive path of id, or "" when it is not archived.
func (r *ItemRepository) findArchived(id string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(r.archiveDir(), "*", "*", id+".json"))
	if err != nil {
		return "", fmt.Errorf("%w: search archive: %v", secondary.ErrIO, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Create records the id as issued, then writes the new active record.
// A failed meta.json write leaves no record behind.
func (r *ItemRepository) Create(ctx context.Context, d *models.DeliveryItem) error {
	n, ok := item.ParseIDNumber(d.ID)
	if !ok {
		return fmt.Errorf("invalid item id %q", d.ID)
	}
	if err := os.MkdirAll(r.activeDir(), 0o755); err != nil {
		return fmt.Errorf("%w: create active dir: %v", secondary.ErrIO, err)
	}
	if err := r.raiseHighWater(n); err != nil {
		return err
	}
	d.Updated = r.now()
	if d.Created.IsZero() {
		d.Created = d.Updated
	}
	if err := atomicWriteJSON(r.activePath(d.ID), d); err != nil {
		return fmt.Errorf("%w: write %s: %v", secondary.ErrIO, d.ID, err)
	}
	return nil
}

// Save overwrites the active record. Every save refreshes Updated.
func (r *ItemRepository) Save(ctx context.Context, d *models.DeliveryItem) error {
	if !validID(d.ID) {
		return fmt.Errorf("invalid item id %q", d.ID)
	}
	d.Updated = r.now()
	if err := atomicWriteJSON(r.activePath(d.ID), d); err != nil {
		return fmt.Errorf("%w: write %s: %v", secondary.ErrIO, d.ID, err)
	}
	return nil
}

// Archive writes the archived record, then removes the active one.
// If the removal fails the archived copy is removed again so the item stays
// in exactly one store. A crash between the two steps can still leave both
// files; Get prefers the active copy in that case.
func (r *ItemRepository) Archive(ctx context.Context, d *models.DeliveryItem) error {
	if !validID(d.ID) {
		return fmt.Errorf("invalid item id %q", d.ID)
	}
	now := r.now()
	d.Status = models.StatusArchived
	d.Updated = now

	archived := r.archivePath(d.ID, now)
	if err := os.MkdirAll(filepath.Dir(archived), 0o755); err != nil {
		return fmt.Errorf("%w: create archive partition: %v", secondary.ErrIO, err)
	}
	if err := atomicWriteJSON(archived, d); err != nil {
		return fmt.Errorf("%w: write archive %s: %v", secondary.ErrIO, d.ID, err)
	}

	if err := os.Remove(r.activePath(d.ID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		os.Remove(archived)
		return fmt.Errorf("%w: remove active %s: %v", secondary.ErrIO, d.ID, err)
	}
	return nil
}

// Delete removes the active record only.
func (r *ItemRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, fmt.Errorf("item %q: %w", id, secondary.ErrNotFound)
	}
	err := os.Remove(r.activePath(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: delete %s: %v", secondary.ErrIO, id, err)
}

// NextID returns one past the highest id stored or ever issued.
func (r *ItemRepository) NextID(ctx context.Context) (string, error) {
	ids, err := r.allIDs(ctx)
	if err != nil {
		return "", err
	}
	issued, err := r.IssuedHighWater(ctx)
	if err != nil {
		return "", err
	}
	return item.NextID(ids, issued), nil
}

// IssuedHighWater returns the highest id number recorded in meta.json.
func (r *ItemRepository) IssuedHighWater(ctx context.Context) (int, error) {
	m, err := r.readMeta()
	if err != nil {
		return 0, err
	}
	return m.LastID, nil
}

// NextWipSlot returns the lowest slot not held by an active item.
func (r *ItemRepository) NextWipSlot(ctx context.Context, max int) (int, error) {
	active, err := r.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	return item.NextWipSlot(usedSlots(active), max), nil
}

// CheckWipLimit reports capacity. It does not prevent Create from exceeding it.
func (r *ItemRepository) CheckWipLimit(ctx context.Context, max int) (item.WipStatus, error) {
	active, err := r.ListActive(ctx)
	if err != nil {
		return item.WipStatus{}, err
	}
	return item.CheckWipLimit(len(active), max), nil
}

func (r *ItemRepository) allIDs(ctx context.Context) ([]string, error) {
	var ids []string
	collect := func(dir string, recursive bool) error {
		return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				if !recursive && path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == ".json" {
				ids = append(ids, strings.TrimSuffix(d.Name(), ".json"))
			}
			return nil
		})
	}
	if err := collect(r.activeDir(), false); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: scan active: %v", secondary.ErrIO, err)
	}
	if err := collect(r.archiveDir(), true); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: scan archive: %v", secondary.ErrIO, err)
	}
	return ids, nil
}

func (r *ItemRepository) readMeta() (meta, error) {
	var m meta
	data, err := os.ReadFile(filepath.Join(r.dataDir, metaFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return m, fmt.Errorf("%w: read meta: %v", secondary.ErrIO, err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: parse meta: %v", secondary.ErrIO, err)
	}
	return m, nil
}

func (r *ItemRepository) raiseHighWater(n int) error {
	m, err := r.readMeta()
	if err != nil {
		return err
	}
	if n <= m.LastID {
		return nil
	}
	m.LastID = n
	if err := atomicWriteJSON(filepath.Join(r.dataDir, metaFileName), m); err != nil {
		return fmt.Errorf("%w: write meta: %v", secondary.ErrIO, err)
	}
	return nil
}

// validID reports whether id is a DI-<n> id, which also keeps it a plain file name.
func validID(id string) bool {
	_, ok := item.ParseIDNumber(id)
	return ok
}

func usedSlots(active []*models.DeliveryItem) []int {
	slots := make([]int, 0, len(active))
	for _, d := range active {
		slots = append(slots, d.Constraints.WipSlot)
	}
	return slots
}

// readDir fails on any unreadable record: a skipped active item would free
// its WIP slot and let capacity checks pass.
func readDir(dir string) ([]*models.DeliveryItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list %s: %v", secondary.ErrIO, dir, err)
	}

	var items []*models.DeliveryItem
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		d, err := readItem(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: unreadable record %s: %v", secondary.ErrIO, entry.Name(), err)
		}
		items = append(items, d)
	}
	return items, nil
}

func readItem(path string) (*models.DeliveryItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d models.DeliveryItem
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func atomicWriteJSON(path string, data any) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

var _ secondary.ItemRepository = (*ItemRepository)(nil)
