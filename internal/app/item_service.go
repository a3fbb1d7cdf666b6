package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

const entityItem = "item"

// ItemSettings are the configured limits applied to item operations.
type ItemSettings struct {
	WipLimit       int
	TimeBoxMinutes int
}

// ItemServiceImpl implements the ItemService interface.
type ItemServiceImpl struct {
	repo     secondary.ItemRepository
	rec      *recorder
	settings ItemSettings
	now      func() time.Time
}

// NewItemService creates a new ItemService with injected dependencies.
func NewItemService(
	repo secondary.ItemRepository,
	locker secondary.Locker,
	history secondary.VersionRecorder,
	logWriter secondary.LogWriter,
	settings ItemSettings,
	logger *slog.Logger,
) *ItemServiceImpl {
	return &ItemServiceImpl{
		repo: repo,
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

// CreateItem creates a new active item in the lowest free WIP slot.
func (s *ItemServiceImpl) CreateItem(ctx context.Context, req primary.CreateItemRequest) (*primary.CreateItemResponse, error) {
	unlock, err := s.rec.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	title := strings.TrimSpace(req.Title)
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active items: %w", err)
	}

	guardCtx := item.CreateItemContext{
		Title:       title,
		ActiveCount: len(active),
		MaxWIP:      s.settings.WipLimit,
	}
	if result := item.CanCreateItem(guardCtx); !result.Allowed {
		if title != "" {
			return nil, fmt.Errorf("%w: %s", secondary.ErrWipLimitExceeded, result.Reason)
		}
		return nil, result.Error()
	}

	now := s.now()
	due, err := item.ParseDue(req.Due, now)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate id: %w", err)
	}
	slot, err := s.repo.NextWipSlot(ctx, s.settings.WipLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate WIP slot: %w", err)
	}

	timeBox := req.TimeBoxMinutes
	if timeBox <= 0 {
		timeBox = s.settings.TimeBoxMinutes
	}

	dod := item.StandardDoDEntries()
	if len(req.DoD) > 0 {
		dod = make([]models.DoDEntry, 0, len(req.DoD))
		for _, text := range req.DoD {
			dod = append(dod, item.NewDoDEntry(text))
		}
	}

	var stakeholders []string
	if req.Stakeholder != "" {
		stakeholders = []string{req.Stakeholder}
	}

	d := &models.DeliveryItem{
		ID:      id,
		Status:  models.StatusActive,
		Created: now,
		Scope: models.Scope{
			Title:       title,
			Description: req.Description,
			Outcome:     req.Outcome,
			Stakeholder: req.Stakeholder,
			DueDate:     due,
		},
		Plan: models.Plan{
			Objectives:     req.Objectives,
			Stakeholders:   stakeholders,
			Dependencies:   req.Dependencies,
			ValueStatement: req.ValueStatement,
		},
		Constraints: models.Constraints{
			TimeBox:          models.TimeBox{DurationMinutes: timeBox},
			DefinitionOfDone: dod,
			WipSlot:          slot,
		},
		OutcomeTracking: models.OutcomeTracking{
			LinkedIssues: req.LinkedIssues,
		},
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.rec.logCreate(ctx, entityItem, d.ID)
	warning := s.rec.commit(ctx, fmt.Sprintf("Create %s: %s", d.ID, title))

	return &primary.CreateItemResponse{Item: d, Warning: warning}, nil
}

// GetItem retrieves an item from the active store or the archive.
func (s *ItemServiceImpl) GetItem(ctx context.Context, id string) (*models.DeliveryItem, error) {
	return s.repo.Get(ctx, id)
}

// ListItems lists active items by slot, or archived items newest first.
func (s *ItemServiceImpl) ListItems(ctx context.Context, filters primary.ItemFilters) ([]*models.DeliveryItem, error) {
	if filters.Archived {
		return s.repo.ListArchived(ctx)
	}
	return s.repo.ListActive(ctx)
}

// CheckWipLimit reports active capacity.
func (s *ItemServiceImpl) CheckWipLimit(ctx context.Context) (item.WipStatus, error) {
	return s.repo.CheckWipLimit(ctx, s.settings.WipLimit)
}

// UpdateItem changes scope and plan fields.
func (s *ItemServiceImpl) UpdateItem(ctx context.Context, req primary.UpdateItemRequest) (*models.DeliveryItem, error) {
	return s.mutate(ctx, req.ID, "update", func(d *models.DeliveryItem) ([]fieldChange, error) {
		var changes []fieldChange
		set := func(field string, target *string, value *string) {
			if value == nil || *value == *target {
				return
			}
			changes = append(changes, fieldChange{field, *target, *value})
			*target = *value
		}

		if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("title cannot be empty")
		}
		set("title", &d.Scope.Title, req.Title)
		set("description", &d.Scope.Description, req.Description)
		set("outcome", &d.Scope.Outcome, req.Outcome)
		set("stakeholder", &d.Scope.Stakeholder, req.Stakeholder)
		set("valueStatement", &d.Plan.ValueStatement, req.ValueStatement)

		if req.Stakeholder != nil {
			d.Plan.Stakeholders = nil
			if *req.Stakeholder != "" {
				d.Plan.Stakeholders = []string{*req.Stakeholder}
			}
		}
		if req.Due != nil {
			due, err := item.ParseDue(*req.Due, s.now())
			if err != nil {
				return nil, err
			}
			changes = append(changes, fieldChange{"dueDate", d.Scope.DueDate.Format(time.RFC3339), due.Format(time.RFC3339)})
			d.Scope.DueDate = due
		}
		if req.Objectives != nil {
			changes = append(changes, fieldChange{"objectives", strings.Join(d.Plan.Objectives, "; "), strings.Join(req.Objectives, "; ")})
			d.Plan.Objectives = req.Objectives
		}
		if req.Dependencies != nil {
			changes = append(changes, fieldChange{"dependencies", strings.Join(d.Plan.Dependencies, "; "), strings.Join(req.Dependencies, "; ")})
			d.Plan.Dependencies = req.Dependencies
		}
		if req.TimeBoxMinutes != nil {
			if *req.TimeBoxMinutes <= 0 {
				return nil, fmt.Errorf("time-box must be positive (got %d)", *req.TimeBoxMinutes)
			}
			changes = append(changes, fieldChange{"timeBox", strconv.Itoa(d.Constraints.TimeBox.DurationMinutes), strconv.Itoa(*req.TimeBoxMinutes)})
			d.Constraints.TimeBox.DurationMinutes = *req.TimeBoxMinutes
		}
		return changes, nil
	})
}

// SetStatus moves an item between active and blocked.
func (s *ItemServiceImpl) SetStatus(ctx context.Context, id string, status models.ItemStatus) (*models.DeliveryItem, error) {
	return s.mutate(ctx, id, "set status", func(d *models.DeliveryItem) ([]fieldChange, error) {
		result := item.CanChangeStatus(item.StatusChangeContext{ItemID: d.ID, From: d.Status, To: status})
		if err := result.Error(); err != nil {
			return nil, err
		}
		change := fieldChange{"status", string(d.Status), string(status)}
		d.Status = status
		return []fieldChange{change}, nil
	})
}

// AddDoD appends a Definition-of-Done entry.
func (s *ItemServiceImpl) AddDoD(ctx context.Context, id, text string) (*models.DoDEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("DoD text is required")
	}

	entry := item.NewDoDEntry(text)
	_, err := s.mutate(ctx, id, "add DoD", func(d *models.DeliveryItem) ([]fieldChange, error) {
		d.Constraints.DefinitionOfDone = append(d.Constraints.DefinitionOfDone, entry)
		return []fieldChange{{"dod", "", text}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ToggleDoD sets the completed flag of a DoD entry.
func (s *ItemServiceImpl) ToggleDoD(ctx context.Context, id, entryID string, completed bool) (*models.DoDEntry, error) {
	var updated models.DoDEntry
	_, err := s.mutate(ctx, id, "check DoD", func(d *models.DeliveryItem) ([]fieldChange, error) {
		idx := findDoD(d, entryID)
		if idx < 0 {
			return nil, fmt.Errorf("DoD entry %s on %s: %w", entryID, d.ID, secondary.ErrNotFound)
		}
		entry := &d.Constraints.DefinitionOfDone[idx]
		old := strconv.FormatBool(entry.Completed)
		entry.Completed = completed
		entry.CompletedAt = nil
		if completed {
			at := s.now()
			entry.CompletedAt = &at
		}
		updated = *entry
		return []fieldChange{{"dod:" + entry.ID, old, strconv.FormatBool(completed)}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveDoD deletes a DoD entry.
func (s *ItemServiceImpl) RemoveDoD(ctx context.Context, id, entryID string) error {
	_, err := s.mutate(ctx, id, "remove DoD", func(d *models.DeliveryItem) ([]fieldChange, error) {
		idx := findDoD(d, entryID)
		if idx < 0 {
			return nil, fmt.Errorf("DoD entry %s on %s: %w", entryID, d.ID, secondary.ErrNotFound)
		}
		removed := d.Constraints.DefinitionOfDone[idx]
		d.Constraints.DefinitionOfDone = append(d.Constraints.DefinitionOfDone[:idx], d.Constraints.DefinitionOfDone[idx+1:]...)
		return []fieldChange{{"dod", removed.Text, ""}}, nil
	})
	return err
}

// StartSession opens a focus session.
func (s *ItemServiceImpl) StartSession(ctx context.Context, id string) (*models.FocusSession, error) {
	var started models.FocusSession
	_, err := s.mutate(ctx, id, "start session", func(d *models.DeliveryItem) ([]fieldChange, error) {
		result := item.CanStartSession(item.SessionContext{
			ItemID:     d.ID,
			Status:     d.Status,
			HasRunning: d.RunningSession() >= 0,
		})
		if err := result.Error(); err != nil {
			return nil, err
		}
		started = models.FocusSession{Start: s.now()}
		d.Constraints.TimeBox.Sessions = append(d.Constraints.TimeBox.Sessions, started)
		return []fieldChange{{"session", "", "started"}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &started, nil
}

// StopSession closes the running focus session.
func (s *ItemServiceImpl) StopSession(ctx context.Context, id, notes string) (*models.FocusSession, error) {
	var stopped models.FocusSession
	_, err := s.mutate(ctx, id, "stop session", func(d *models.DeliveryItem) ([]fieldChange, error) {
		idx := d.RunningSession()
		result := item.CanStopSession(item.SessionContext{ItemID: d.ID, Status: d.Status, HasRunning: idx >= 0})
		if err := result.Error(); err != nil {
			return nil, err
		}
		closeSession(d, idx, s.now(), notes)
		stopped = d.Constraints.TimeBox.Sessions[idx]
		return []fieldChange{{"session", "running", strconv.Itoa(stopped.DurationMinutes) + "m"}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &stopped, nil
}

// AddWorkLog appends a note to the work log.
func (s *ItemServiceImpl) AddWorkLog(ctx context.Context, id, note string) (*models.WorkLogEntry, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("note is required")
	}

	var entry models.WorkLogEntry
	_, err := s.mutate(ctx, id, "log work", func(d *models.DeliveryItem) ([]fieldChange, error) {
		entry = models.WorkLogEntry{Timestamp: s.now(), Note: note}
		d.OutcomeTracking.WorkLog = append(d.OutcomeTracking.WorkLog, entry)
		return []fieldChange{{"workLog", "", note}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecordReview stores the post-delivery reflection.
func (s *ItemServiceImpl) RecordReview(ctx context.Context, req primary.RecordReviewRequest) (*models.DeliveryItem, error) {
	if err := item.ValidateReview(req.StressLevel, req.IncidentCount).Error(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, req.ID, "review notes", func(d *models.DeliveryItem) ([]fieldChange, error) {
		old := d.OutcomeTracking.Review
		d.OutcomeTracking.Review = models.Review{
			StressLevel:   req.StressLevel,
			IncidentCount: req.IncidentCount,
			Blockers:      req.Blockers,
			Learnings:     req.Learnings,
		}
		return []fieldChange{
			{"stressLevel", strconv.Itoa(old.StressLevel), strconv.Itoa(req.StressLevel)},
			{"incidentCount", strconv.Itoa(old.IncidentCount), strconv.Itoa(req.IncidentCount)},
		}, nil
	})
}

// CompleteItem computes metrics and marks the item completed. A running
// session is closed first so its time counts.
func (s *ItemServiceImpl) CompleteItem(ctx context.Context, req primary.CompleteItemRequest) (*models.DeliveryItem, error) {
	unlock, err := s.rec.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := item.CanCompleteItem(item.StatusContext{ItemID: d.ID, Status: d.Status}).Error(); err != nil {
		return nil, err
	}

	now := s.now()
	if idx := d.RunningSession(); idx >= 0 {
		closeSession(d, idx, now, "closed on completion")
	}
	oldStatus := d.Status
	d.OutcomeTracking.Metrics = item.ComputeMetrics(d, now)
	d.Status = models.StatusCompleted

	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}
	s.rec.logUpdate(ctx, entityItem, d.ID, "status", string(oldStatus), string(d.Status))

	message := fmt.Sprintf("Complete %s: %s", d.ID, d.Title())
	if req.Archive {
		if err := s.archive(ctx, d); err != nil {
			s.rec.commit(ctx, message)
			return nil, err
		}
		message += " (archived)"
	}
	s.rec.commit(ctx, message)

	return d, nil
}

// ArchiveItem moves an item into the archive.
func (s *ItemServiceImpl) ArchiveItem(ctx context.Context, id string) (*models.DeliveryItem, error) {
	unlock, err := s.rec.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.archive(ctx, d); err != nil {
		return nil, err
	}
	s.rec.commit(ctx, fmt.Sprintf("Archive %s: %s", d.ID, d.Title()))

	return d, nil
}

// DeleteItem removes an active item without archiving.
func (s *ItemServiceImpl) DeleteItem(ctx context.Context, id string) (bool, error) {
	unlock, err := s.rec.lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}
	if !existed {
		return false, nil
	}

	s.rec.logDelete(ctx, entityItem, id)
	s.rec.commit(ctx, fmt.Sprintf("Delete %s", id))
	return true, nil
}

// Helper methods

type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

// mutate loads an item under the data-root lock, applies fn, saves and records it.
func (s *ItemServiceImpl) mutate(ctx context.Context, id, verb string, fn func(d *models.DeliveryItem) ([]fieldChange, error)) (*models.DeliveryItem, error) {
	unlock, err := s.rec.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.CanMutateItem(item.StatusContext{ItemID: d.ID, Status: d.Status}).Error(); err != nil {
		return nil, err
	}

	changes, err := fn(d)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	for _, c := range changes {
		s.rec.logUpdate(ctx, entityItem, d.ID, c.field, c.oldValue, c.newValue)
	}
	s.rec.commit(ctx, fmt.Sprintf("%s %s: %s", capitalize(verb), d.ID, d.Title()))

	return d, nil
}

func (s *ItemServiceImpl) archive(ctx context.Context, d *models.DeliveryItem) error {
	if err := item.CanArchiveItem(item.StatusContext{ItemID: d.ID, Status: d.Status}).Error(); err != nil {
		return err
	}

	oldStatus := d.Status
	if err := s.repo.Archive(ctx, d); err != nil {
		d.Status = oldStatus
		return fmt.Errorf("failed to archive item: %w", err)
	}
	s.rec.logUpdate(ctx, entityItem, d.ID, "status", string(oldStatus), string(d.Status))
	return nil
}

func findDoD(d *models.DeliveryItem, entryID string) int {
	for i, e := range d.Constraints.DefinitionOfDone {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}

func closeSession(d *models.DeliveryItem, idx int, end time.Time, notes string) {
	session := &d.Constraints.TimeBox.Sessions[idx]
	session.End = &end
	session.DurationMinutes = item.SessionDuration(session.Start, end)
	if notes != "" {
		session.Notes = notes
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Ensure ItemServiceImpl implements the interface
var _ primary.ItemService = (*ItemServiceImpl)(nil)
