package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/primary"
)

// ItemAdapter is a thin adapter that translates CLI operations to ItemService calls.
type ItemAdapter struct {
	service primary.ItemService
	out     io.Writer
	json    bool
}

// NewItemAdapter creates a new ItemAdapter. With asJSON set, every command
// prints a JSON document instead of text.
func NewItemAdapter(service primary.ItemService, out io.Writer, asJSON bool) *ItemAdapter {
	return &ItemAdapter{
		service: service,
		out:     out,
		json:    asJSON,
	}
}

// Create creates a new delivery item.
func (a *ItemAdapter) Create(ctx context.Context, req primary.CreateItemRequest) error {
	resp, err := a.service.CreateItem(ctx, req)
	if err != nil {
		return err
	}

	if a.json {
		return writeJSON(a.out, resp)
	}
	d := resp.Item
	fmt.Fprintf(a.out, "%s Created %s: %s\n", okMark, d.ID, d.Title())
	fmt.Fprintf(a.out, "  WIP slot: %d  Due: %s  Time-box: %dm\n", d.Constraints.WipSlot, formatDate(d.Scope.DueDate), d.Constraints.TimeBox.DurationMinutes)
	if resp.Warning != "" {
		fmt.Fprintf(a.out, "%s %s\n", warnMark, resp.Warning)
	}
	return nil
}

// List lists active items, or archived ones.
func (a *ItemAdapter) List(ctx context.Context, archived bool) error {
	items, err := a.service.ListItems(ctx, primary.ItemFilters{Archived: archived})
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	if a.json {
		if items == nil {
			items = []*models.DeliveryItem{}
		}
		return writeJSON(a.out, items)
	}

	if len(items) == 0 {
		if archived {
			fmt.Fprintln(a.out, "No archived items")
		} else {
			fmt.Fprintln(a.out, "No active items")
		}
		return nil
	}

	fmt.Fprintf(a.out, "\n%-8s %-4s %-10s %-11s %-5s %s\n", "ID", "SLOT", "STATUS", "DUE", "DOD", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, d := range items {
		dod := d.Constraints.DefinitionOfDone
		fmt.Fprintf(a.out, "%-8s %-4d %-10s %-11s %-5s %s\n",
			d.ID,
			d.Constraints.WipSlot,
			statusLabel(d.Status),
			formatDate(d.Scope.DueDate),
			fmt.Sprintf("%d/%d", completedCount(dod), len(dod)),
			truncate(d.Title(), 50))
	}
	fmt.Fprintln(a.out)

	if !archived {
		return a.Wip(ctx)
	}
	return nil
}

// Show displays the full record of one item.
func (a *ItemAdapter) Show(ctx context.Context, id string) error {
	d, err := a.service.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if a.json {
		return writeJSON(a.out, d)
	}

	fmt.Fprintf(a.out, "\n%s: %s\n", d.ID, d.Title())
	fmt.Fprintf(a.out, "Status:      %s (slot %d)\n", statusLabel(d.Status), d.Constraints.WipSlot)
	fmt.Fprintf(a.out, "Due:         %s\n", formatDate(d.Scope.DueDate))
	if d.Scope.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", d.Scope.Description)
	}
	if d.Scope.Outcome != "" {
		fmt.Fprintf(a.out, "Outcome:     %s\n", d.Scope.Outcome)
	}
	if d.Scope.Stakeholder != "" {
		fmt.Fprintf(a.out, "Stakeholder: %s\n", d.Scope.Stakeholder)
	}
	fmt.Fprintf(a.out, "Objectives:  %s\n", joinOrDash(d.Plan.Objectives))
	if len(d.Plan.Dependencies) > 0 {
		fmt.Fprintf(a.out, "Depends on:  %s\n", joinOrDash(d.Plan.Dependencies))
	}
	if d.Plan.ValueStatement != "" {
		fmt.Fprintf(a.out, "Value:       %s\n", d.Plan.ValueStatement)
	}
	if len(d.OutcomeTracking.LinkedIssues) > 0 {
		fmt.Fprintf(a.out, "Issues:      %v\n", d.OutcomeTracking.LinkedIssues)
	}
	fmt.Fprintf(a.out, "Created:     %s\n", formatTime(d.Created))
	fmt.Fprintf(a.out, "Updated:     %s\n", formatTime(d.Updated))

	fmt.Fprintln(a.out, "\nDefinition of Done:")
	if len(d.Constraints.DefinitionOfDone) == 0 {
		fmt.Fprintln(a.out, "  (none)")
	}
	for _, e := range d.Constraints.DefinitionOfDone {
		box := "[ ]"
		if e.Completed {
			box = "[" + okMark + "]"
		}
		fmt.Fprintf(a.out, "  %s %s  %s\n", box, e.ID, e.Text)
	}

	sessions := d.Constraints.TimeBox.Sessions
	fmt.Fprintf(a.out, "\nTime-box: %dm, %d session(s)\n", d.Constraints.TimeBox.DurationMinutes, len(sessions))
	for _, s := range sessions {
		if s.End == nil {
			fmt.Fprintf(a.out, "  %s  running\n", formatTime(s.Start))
			continue
		}
		fmt.Fprintf(a.out, "  %s  %dm", formatTime(s.Start), s.DurationMinutes)
		if s.Notes != "" {
			fmt.Fprintf(a.out, "  %s", s.Notes)
		}
		fmt.Fprintln(a.out)
	}

	if log := d.OutcomeTracking.WorkLog; len(log) > 0 {
		fmt.Fprintln(a.out, "\nWork log:")
		for _, w := range log {
			fmt.Fprintf(a.out, "  %s  %s\n", formatTime(w.Timestamp), w.Note)
		}
	}

	if r := d.OutcomeTracking.Review; r.StressLevel > 0 {
		fmt.Fprintf(a.out, "\nReview: stress %d/5, %d incident(s)\n", r.StressLevel, r.IncidentCount)
		for _, b := range r.Blockers {
			fmt.Fprintf(a.out, "  blocker:  %s\n", b)
		}
		for _, l := range r.Learnings {
			fmt.Fprintf(a.out, "  learning: %s\n", l)
		}
	}

	if d.Status == models.StatusCompleted || d.Status == models.StatusArchived {
		m := d.OutcomeTracking.Metrics
		fmt.Fprintf(a.out, "\nMetrics: cycle %dd, DoD %.0f%%, focus %dm\n", m.CycleTimeDays, m.CompletionRate*100, m.TimeSpentMinutes)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Update changes scope and plan fields.
func (a *ItemAdapter) Update(ctx context.Context, req primary.UpdateItemRequest) error {
	d, err := a.service.UpdateItem(ctx, req)
	if err != nil {
		return err
	}
	return a.done(d, "%s Item %s updated\n", okMark, d.ID)
}

// SetStatus moves an item between active and blocked.
func (a *ItemAdapter) SetStatus(ctx context.Context, id string, status models.ItemStatus) error {
	d, err := a.service.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	return a.done(d, "%s %s is now %s\n", okMark, d.ID, statusLabel(d.Status))
}

// AddDoD appends a checklist entry.
func (a *ItemAdapter) AddDoD(ctx context.Context, id, text string) error {
	entry, err := a.service.AddDoD(ctx, id, text)
	if err != nil {
		return err
	}
	return a.done(entry, "%s Added DoD entry %s to %s: %s\n", okMark, entry.ID, id, entry.Text)
}

// ToggleDoD checks or unchecks a checklist entry.
func (a *ItemAdapter) ToggleDoD(ctx context.Context, id, entryID string, completed bool) error {
	entry, err := a.service.ToggleDoD(ctx, id, entryID, completed)
	if err != nil {
		return err
	}
	verb := "unchecked"
	if completed {
		verb = "checked"
	}
	return a.done(entry, "%s %s %s: %s\n", okMark, verb, entry.ID, entry.Text)
}

// RemoveDoD removes a checklist entry.
func (a *ItemAdapter) RemoveDoD(ctx context.Context, id, entryID string) error {
	if err := a.service.RemoveDoD(ctx, id, entryID); err != nil {
		return err
	}
	return a.done(map[string]string{"id": id, "removed": entryID}, "%s Removed DoD entry %s from %s\n", okMark, entryID, id)
}

// StartSession opens a focus session.
func (a *ItemAdapter) StartSession(ctx context.Context, id string) error {
	s, err := a.service.StartSession(ctx, id)
	if err != nil {
		return err
	}
	return a.done(s, "%s Focus session started on %s at %s\n", okMark, id, formatTime(s.Start))
}

// StopSession closes the running focus session.
func (a *ItemAdapter) StopSession(ctx context.Context, id, notes string) error {
	s, err := a.service.StopSession(ctx, id, notes)
	if err != nil {
		return err
	}
	return a.done(s, "%s Focus session on %s stopped after %dm\n", okMark, id, s.DurationMinutes)
}

// LogWork appends a work log note.
func (a *ItemAdapter) LogWork(ctx context.Context, id, note string) error {
	entry, err := a.service.AddWorkLog(ctx, id, note)
	if err != nil {
		return err
	}
	return a.done(entry, "%s Logged work on %s\n", okMark, id)
}

// ReviewNotes records stress, incidents, blockers and learnings.
func (a *ItemAdapter) ReviewNotes(ctx context.Context, req primary.RecordReviewRequest) error {
	d, err := a.service.RecordReview(ctx, req)
	if err != nil {
		return err
	}
	return a.done(d, "%s Review notes saved on %s\n", okMark, d.ID)
}

// Complete marks an item completed and optionally archives it.
func (a *ItemAdapter) Complete(ctx context.Context, id string, archive bool) error {
	d, err := a.service.CompleteItem(ctx, primary.CompleteItemRequest{ID: id, Archive: archive})
	if err != nil {
		return err
	}
	if a.json {
		return writeJSON(a.out, d)
	}

	m := d.OutcomeTracking.Metrics
	fmt.Fprintf(a.out, "%s Completed %s: %s\n", okMark, d.ID, d.Title())
	fmt.Fprintf(a.out, "  Cycle time: %dd  DoD: %.0f%%  Focus: %dm\n", m.CycleTimeDays, m.CompletionRate*100, m.TimeSpentMinutes)
	if m.CompletionRate < 1 {
		fmt.Fprintf(a.out, "%s Definition of Done is not fully checked\n", warnMark)
	}
	if archive {
		fmt.Fprintf(a.out, "  Archived, WIP slot %d freed\n", d.Constraints.WipSlot)
	}
	return nil
}

// Archive moves an item into the archive.
func (a *ItemAdapter) Archive(ctx context.Context, id string) error {
	d, err := a.service.ArchiveItem(ctx, id)
	if err != nil {
		return err
	}
	return a.done(d, "%s Archived %s: %s\n", okMark, d.ID, d.Title())
}

// Delete removes an active item for good. Requires force.
func (a *ItemAdapter) Delete(ctx context.Context, id string, force bool) error {
	if !force {
		return fmt.Errorf("refusing to delete %s without --force (use archive to keep its history)", id)
	}

	existed, err := a.service.DeleteItem(ctx, id)
	if err != nil {
		return err
	}
	if a.json {
		return writeJSON(a.out, map[string]any{"id": id, "deleted": existed})
	}
	if !existed {
		fmt.Fprintf(a.out, "%s %s is not an active item; nothing deleted\n", warnMark, id)
		return nil
	}
	fmt.Fprintf(a.out, "%s Deleted %s\n", okMark, id)
	return nil
}

// Wip prints the WIP capacity.
func (a *ItemAdapter) Wip(ctx context.Context) error {
	status, err := a.service.CheckWipLimit(ctx)
	if err != nil {
		return err
	}
	if a.json {
		return writeJSON(a.out, status)
	}

	fmt.Fprintf(a.out, "WIP: %s active", wipLabel(status))
	if status.WithinLimit {
		fmt.Fprintf(a.out, ", %d slot(s) free\n", status.Headroom())
	} else {
		fmt.Fprintf(a.out, " %s limit reached: complete or archive an item first\n", errMark)
	}
	return nil
}

// Helper methods

// done prints v as JSON or the formatted confirmation line.
func (a *ItemAdapter) done(v any, format string, args ...any) error {
	if a.json {
		return writeJSON(a.out, v)
	}
	fmt.Fprintf(a.out, format, args...)
	return nil
}

func completedCount(dod []models.DoDEntry) int {
	n := 0
	for _, e := range dod {
		if e.Completed {
			n++
		}
	}
	return n
}
