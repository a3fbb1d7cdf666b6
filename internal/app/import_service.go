package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/safer/internal/core/importer"
	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

// ImportServiceImpl implements the ImportService interface.
type ImportServiceImpl struct {
	repo     secondary.ItemRepository
	sources  map[string]secondary.ImportSource
	rec      *recorder
	settings ItemSettings
	now      func() time.Time
}

// NewImportService creates a new ImportService with injected dependencies.
func NewImportService(
	repo secondary.ItemRepository,
	sources []secondary.ImportSource,
	locker secondary.Locker,
	history secondary.VersionRecorder,
	logWriter secondary.LogWriter,
	settings ItemSettings,
	logger *slog.Logger,
) *ImportServiceImpl {
	bySource := make(map[string]secondary.ImportSource, len(sources))
	for _, src := range sources {
		bySource[src.Name()] = src
	}
	return &ImportServiceImpl{
		repo:    repo,
		sources: bySource,
		rec: &recorder{
			locker:    locker,
			history:   history,
			logWriter: logWriter,
			logger:    logger,
		},
		settings: settings,
		now:      time.Now,
	}
}

// Import creates delivery items for new candidates within WIP headroom.
func (s *ImportServiceImpl) Import(ctx context.Context, req primary.ImportRequest) (*primary.ImportResult, error) {
	return s.run(ctx, req, false)
}

// Preview reports what Import would create without writing anything.
func (s *ImportServiceImpl) Preview(ctx context.Context, req primary.ImportRequest) (*primary.ImportResult, error) {
	return s.run(ctx, req, true)
}

func (s *ImportServiceImpl) run(ctx context.Context, req primary.ImportRequest, dryRun bool) (*primary.ImportResult, error) {
	source, err := s.source(req.Source)
	if err != nil {
		return nil, err
	}
	// Checked before any network or file activity.
	if !source.IsConfigured() {
		return nil, fmt.Errorf("%w: %s integration is disabled or has no credentials", secondary.ErrImporterNotConfigured, source.Name())
	}

	if !dryRun {
		unlock, err := s.rec.lock(ctx)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	candidates, err := source.FetchItems(ctx, secondary.FetchOptions{
		AssignedToMe: req.AssignedToMe,
		Label:        req.Label,
		State:        req.State,
		Limit:        req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", source.Name(), err)
	}

	result := &primary.ImportResult{
		Errors:   []string{},
		Warnings: []string{},
		Items:    []*models.DeliveryItem{},
		DryRun:   dryRun,
	}
	if len(candidates) == 0 {
		result.Success = true
		result.Note = "no matching issues found"
		return result, nil
	}

	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active items: %w", err)
	}
	archived, err := s.repo.ListArchived(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived items: %w", err)
	}

	existing := importer.LinkedIssueNumbers(active, archived)
	fresh, skipped := importer.PartitionNew(candidates, existing)
	result.Skipped = skipped
	if len(fresh) == 0 {
		result.Success = true
		result.Note = "all available issues already imported"
		return result, nil
	}

	wip := item.CheckWipLimit(len(active), s.settings.WipLimit)
	headroom := wip.Headroom()
	if headroom == 0 {
		reason := fmt.Sprintf("WIP limit reached (%d/%d active); %d new issue(s) not imported", wip.Current, wip.Max, len(fresh))
		result.Errors = append(result.Errors, reason)
		return result, fmt.Errorf("%w: %s", secondary.ErrWipLimitExceeded, reason)
	}

	batch := fresh
	if len(fresh) > headroom {
		batch = fresh[:headroom]
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"importing %d of %d new issue(s): WIP limit %d leaves room for %d more active item(s)",
			headroom, len(fresh), wip.Max, headroom))
	}

	// Slots go out in ascending order regardless of candidate priority.
	slots := item.FreeSlots(usedSlots(active), s.settings.WipLimit)
	issued, err := s.repo.IssuedHighWater(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read id high-water mark: %w", err)
	}
	ids := item.NewIDSequence(itemIDs(active, archived), issued)
	now := s.now()

	for i, imp := range batch {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("import interrupted: %v", err))
			result.Skipped += len(batch) - i
			break
		}

		slot := 1
		if i < len(slots) {
			slot = slots[i]
		}
		d := importer.ConvertToDeliveryItem(imp, importer.ConvertOptions{
			ID:             ids.Next(),
			WipSlot:        slot,
			TimeBoxMinutes: s.settings.TimeBoxMinutes,
			Now:            now,
		})

		if dryRun {
			result.Items = append(result.Items, &d)
			continue
		}

		if err := s.repo.Create(ctx, &d); err != nil {
			s.rec.log().Warn("import of issue failed", "source", source.Name(), "issue", imp.Number, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("#%d %s: %v", imp.Number, imp.Title, err))
			result.Skipped++
			continue
		}
		s.rec.logCreate(ctx, entityItem, d.ID)
		result.Imported++
		result.Items = append(result.Items, &d)
	}

	if dryRun {
		result.Success = true
		result.Note = fmt.Sprintf("dry run: %d item(s) would be imported", len(result.Items))
		return result, nil
	}

	result.Success = result.Imported > 0
	if result.Imported > 0 {
		created := make([]string, len(result.Items))
		for i, d := range result.Items {
			created[i] = d.ID
		}
		message := fmt.Sprintf("Import %d item(s) from %s: %s", result.Imported, source.Name(), strings.Join(created, ", "))
		if warning := s.rec.commit(ctx, message); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}

	return result, nil
}

// Helper methods

func (s *ImportServiceImpl) source(name string) (secondary.ImportSource, error) {
	if name == "" && len(s.sources) == 1 {
		for _, src := range s.sources {
			return src, nil
		}
	}
	src, ok := s.sources[name]
	if !ok {
		known := make([]string, 0, len(s.sources))
		for n := range s.sources {
			known = append(known, n)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown import source %q (available: %s)", name, strings.Join(known, ", "))
	}
	return src, nil
}

func usedSlots(items []*models.DeliveryItem) []int {
	slots := make([]int, 0, len(items))
	for _, d := range items {
		slots = append(slots, d.Constraints.WipSlot)
	}
	return slots
}

func itemIDs(sets ...[]*models.DeliveryItem) []string {
	var ids []string
	for _, set := range sets {
		for _, d := range set {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Ensure ImportServiceImpl implements the interface
var _ primary.ImportService = (*ImportServiceImpl)(nil)
