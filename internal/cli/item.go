package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/safer/internal/models"
	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/wire"
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a delivery item in the next free WIP slot",
	Long: `Create a delivery item. Fails when every WIP slot is taken.

The due date accepts natural language ("next friday", "in 3 days"), a
calendar date (2026-01-20) or RFC3339. It defaults to one week from now.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		description, _ := cmd.Flags().GetString("description")
		outcome, _ := cmd.Flags().GetString("outcome")
		stakeholder, _ := cmd.Flags().GetString("stakeholder")
		due, _ := cmd.Flags().GetString("due")
		value, _ := cmd.Flags().GetString("value")
		objectives, _ := cmd.Flags().GetStringArray("objective")
		deps, _ := cmd.Flags().GetStringArray("depends-on")
		dod, _ := cmd.Flags().GetStringArray("dod")
		timeBox, _ := cmd.Flags().GetInt("time-box")
		issues, _ := cmd.Flags().GetIntSlice("issue")

		return wire.ItemAdapter(jsonOutput).Create(ctx, primary.CreateItemRequest{
			Title:          strings.Join(args, " "),
			Description:    description,
			Outcome:        outcome,
			Stakeholder:    stakeholder,
			Due:            due,
			Objectives:     objectives,
			Dependencies:   deps,
			ValueStatement: value,
			DoD:            dod,
			TimeBoxMinutes: timeBox,
			LinkedIssues:   issues,
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active items by slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		archived, _ := cmd.Flags().GetBool("archived")
		return wire.ItemAdapter(jsonOutput).List(NewContext(), archived)
	},
}

var showCmd = &cobra.Command{
	Use:   "show [item-id]",
	Short: "Show item details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).Show(NewContext(), normalizeID(args[0]))
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [item-id]",
	Short: "Update scope and plan fields of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.UpdateItemRequest{ID: normalizeID(args[0])}
		req.Title = stringFlag(cmd, "title")
		req.Description = stringFlag(cmd, "description")
		req.Outcome = stringFlag(cmd, "outcome")
		req.Stakeholder = stringFlag(cmd, "stakeholder")
		req.Due = stringFlag(cmd, "due")
		req.ValueStatement = stringFlag(cmd, "value")
		if cmd.Flags().Changed("objective") {
			req.Objectives, _ = cmd.Flags().GetStringArray("objective")
		}
		if cmd.Flags().Changed("depends-on") {
			req.Dependencies, _ = cmd.Flags().GetStringArray("depends-on")
		}
		if cmd.Flags().Changed("time-box") {
			v, _ := cmd.Flags().GetInt("time-box")
			req.TimeBoxMinutes = &v
		}

		return wire.ItemAdapter(jsonOutput).Update(NewContext(), req)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [item-id] [active|blocked]",
	Short: "Mark an item active or blocked",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.ItemStatus(strings.ToLower(args[1]))
		return wire.ItemAdapter(jsonOutput).SetStatus(NewContext(), normalizeID(args[0]), status)
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [item-id]",
	Short: "Compute metrics and mark an item completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, _ := cmd.Flags().GetBool("archive")
		return wire.ItemAdapter(jsonOutput).Complete(NewContext(), normalizeID(args[0]), archive)
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive [item-id]",
	Short: "Move an item to the archive, freeing its WIP slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).Archive(NewContext(), normalizeID(args[0]))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [item-id]",
	Short: "Delete an active item without archiving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return wire.ItemAdapter(jsonOutput).Delete(NewContext(), normalizeID(args[0]), force)
	},
}

var wipCmd = &cobra.Command{
	Use:   "wip",
	Short: "Show WIP capacity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).Wip(NewContext())
	},
}

var logWorkCmd = &cobra.Command{
	Use:   "log-work [item-id] [note]",
	Short: "Append a note to an item's work log",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).LogWork(NewContext(), normalizeID(args[0]), strings.Join(args[1:], " "))
	},
}

var reviewNotesCmd = &cobra.Command{
	Use:   "review-notes [item-id]",
	Short: "Record stress, incidents, blockers and learnings for an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stress, _ := cmd.Flags().GetInt("stress")
		incidents, _ := cmd.Flags().GetInt("incidents")
		blockers, _ := cmd.Flags().GetStringArray("blocker")
		learnings, _ := cmd.Flags().GetStringArray("learning")

		return wire.ItemAdapter(jsonOutput).ReviewNotes(NewContext(), primary.RecordReviewRequest{
			ID:            normalizeID(args[0]),
			StressLevel:   stress,
			IncidentCount: incidents,
			Blockers:      blockers,
			Learnings:     learnings,
		})
	},
}

// normalizeID accepts "di-7" style input.
func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// stringFlag returns a pointer to the flag value when the user set it.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func init() {
	// create flags
	createCmd.Flags().StringP("description", "d", "", "Scope description")
	createCmd.Flags().StringP("outcome", "o", "", "Expected outcome")
	createCmd.Flags().StringP("stakeholder", "s", "", "Who receives the outcome")
	createCmd.Flags().String("due", "", "Due date (default: one week)")
	createCmd.Flags().String("value", "", "Value statement")
	createCmd.Flags().StringArray("objective", nil, "Objective (repeatable)")
	createCmd.Flags().StringArray("depends-on", nil, "Dependency (repeatable)")
	createCmd.Flags().StringArray("dod", nil, "Definition-of-Done entry (repeatable; default checklist when omitted)")
	createCmd.Flags().Int("time-box", 0, "Focus time-box in minutes (default from config)")
	createCmd.Flags().IntSlice("issue", nil, "Linked GitHub issue number")

	// list flags
	listCmd.Flags().Bool("archived", false, "List archived items instead")

	// update flags
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().StringP("outcome", "o", "", "New expected outcome")
	updateCmd.Flags().StringP("stakeholder", "s", "", "New stakeholder")
	updateCmd.Flags().String("due", "", "New due date")
	updateCmd.Flags().String("value", "", "New value statement")
	updateCmd.Flags().StringArray("objective", nil, "Replace objectives (repeatable)")
	updateCmd.Flags().StringArray("depends-on", nil, "Replace dependencies (repeatable)")
	updateCmd.Flags().Int("time-box", 0, "New time-box in minutes")

	completeCmd.Flags().Bool("archive", false, "Archive the item after completing it")
	deleteCmd.Flags().BoolP("force", "f", false, "Confirm deletion")

	// review-notes flags
	reviewNotesCmd.Flags().Int("stress", 0, "Stress level 1-5")
	reviewNotesCmd.Flags().Int("incidents", 0, "Number of incidents")
	reviewNotesCmd.Flags().StringArray("blocker", nil, "Blocker (repeatable)")
	reviewNotesCmd.Flags().StringArray("learning", nil, "Learning (repeatable)")
	_ = reviewNotesCmd.MarkFlagRequired("stress")
}

// CreateCmd returns the create command
func CreateCmd() *cobra.Command { return createCmd }

// ListCmd returns the list command
func ListCmd() *cobra.Command { return listCmd }

// ShowCmd returns the show command
func ShowCmd() *cobra.Command { return showCmd }

// UpdateCmd returns the update command
func UpdateCmd() *cobra.Command { return updateCmd }

// StatusCmd returns the status command
func StatusCmd() *cobra.Command { return statusCmd }

// CompleteCmd returns the complete command
func CompleteCmd() *cobra.Command { return completeCmd }

// ArchiveCmd returns the archive command
func ArchiveCmd() *cobra.Command { return archiveCmd }

// DeleteCmd returns the delete command
func DeleteCmd() *cobra.Command { return deleteCmd }

// WipCmd returns the wip command
func WipCmd() *cobra.Command { return wipCmd }

// LogWorkCmd returns the log-work command
func LogWorkCmd() *cobra.Command { return logWorkCmd }

// ReviewNotesCmd returns the review-notes command
func ReviewNotesCmd() *cobra.Command { return reviewNotesCmd }
