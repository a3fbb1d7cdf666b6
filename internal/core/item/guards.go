// Package item contains the pure business logic for delivery item operations.
// Guards are pure functions that evaluate preconditions without side effects.
package item

import (
	"fmt"

	"github.com/example/safer/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CreateItemContext provides context for item creation guards.
type CreateItemContext struct {
	Title       string
	ActiveCount int
	MaxWIP      int
}

// StatusContext provides context for guards that depend on the current status.
type StatusContext struct {
	ItemID string
	Status models.ItemStatus
}

// StatusChangeContext provides context for active/blocked transitions.
type StatusChangeContext struct {
	ItemID string
	From   models.ItemStatus
	To     models.ItemStatus
}

// SessionContext provides context for focus session guards.
type SessionContext struct {
	ItemID     string
	Status     models.ItemStatus
	HasRunning bool
}

// CanCreateItem evaluates whether a new item can be created.
// Rules:
// - Title must not be empty
// - Active count must be below the WIP limit
func CanCreateItem(ctx CreateItemContext) GuardResult {
	if ctx.Title == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "title is required",
		}
	}

	if ctx.ActiveCount >= ctx.MaxWIP {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("WIP limit reached (%d/%d active). Complete or archive an item first", ctx.ActiveCount, ctx.MaxWIP),
		}
	}

	return GuardResult{Allowed: true}
}

// CanMutateItem evaluates whether an item may still be edited.
// Rules:
// - Archived items are read-only
func CanMutateItem(ctx StatusContext) GuardResult {
	if ctx.Status == models.StatusArchived {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("item %s is archived and read-only", ctx.ItemID),
		}
	}

	return GuardResult{Allowed: true}
}

// CanCompleteItem evaluates whether an item can be completed.
// Rules:
// - Status must be active or blocked
func CanCompleteItem(ctx StatusContext) GuardResult {
	if ctx.Status != models.StatusActive && ctx.Status != models.StatusBlocked {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only complete active or blocked items (current status: %s)", ctx.Status),
		}
	}

	return GuardResult{Allowed: true}
}

// CanArchiveItem evaluates whether an item can be archived.
// Rules:
// - Item must not already be archived
func CanArchiveItem(ctx StatusContext) GuardResult {
	if ctx.Status == models.StatusArchived {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("item %s is already archived", ctx.ItemID),
		}
	}

	return GuardResult{Allowed: true}
}

// CanChangeStatus evaluates a manual status change.
// Rules:
// - Only active <-> blocked is allowed; completion and archival have their own operations
func CanChangeStatus(ctx StatusChangeContext) GuardResult {
	if ctx.To != models.StatusActive && ctx.To != models.StatusBlocked {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("status can only be set to active or blocked (got %s). Use complete or archive instead", ctx.To),
		}
	}
	if ctx.From != models.StatusActive && ctx.From != models.StatusBlocked {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot change status of %s item %s", ctx.From, ctx.ItemID),
		}
	}

	return GuardResult{Allowed: true}
}

// CanStartSession evaluates whether a focus session can be started.
// Rules:
// - Item must be active
// - No other session may be running on the item
func CanStartSession(ctx SessionContext) GuardResult {
	if ctx.Status != models.StatusActive {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only start sessions on active items (current status: %s)", ctx.Status),
		}
	}
	if ctx.HasRunning {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("item %s already has a running session. Stop it first with: safer session stop %s", ctx.ItemID, ctx.ItemID),
		}
	}

	return GuardResult{Allowed: true}
}

// CanStopSession evaluates whether a focus session can be stopped.
// Rules:
// - A session must be running
func CanStopSession(ctx SessionContext) GuardResult {
	if !ctx.HasRunning {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("item %s has no running session", ctx.ItemID),
		}
	}

	return GuardResult{Allowed: true}
}

// ValidateReview checks review note bounds.
func ValidateReview(stress, incidents int) GuardResult {
	if stress < 1 || stress > 5 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("stress level must be between 1 and 5 (got %d)", stress),
		}
	}
	if incidents < 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("incident count cannot be negative (got %d)", incidents),
		}
	}

	return GuardResult{Allowed: true}
}
