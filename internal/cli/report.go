package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/wire"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show aggregate delivery metrics over archived items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ReportAdapter(jsonOutput).Metrics(NewContext())
	},
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Generate and read weekly reviews",
}

var weeklyGenerateCmd = &cobra.Command{
	Use:   "generate [week-id]",
	Short: "Generate the review for a week (default: current week)",
	Long: `Generate the weekly review markdown for an ISO week such as 2026-W02.

Regenerating an existing review keeps its reflection sections.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ReportAdapter(jsonOutput).GenerateReview(NewContext(), optionalArg(args))
	},
}

var weeklyShowCmd = &cobra.Command{
	Use:   "show [week-id]",
	Short: "Print a stored review (default: current week)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ReportAdapter(jsonOutput).ShowReview(NewContext(), optionalArg(args))
	},
}

var weeklyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reviews, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ReportAdapter(jsonOutput).ListReviews(NewContext())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show commits of the data repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return wire.ReportAdapter(jsonOutput).History(NewContext(), limit)
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity [item-id]",
	Short: "Show the field-level activity log",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actorID, _ := cmd.Flags().GetString("actor")
		action, _ := cmd.Flags().GetString("action")
		limit, _ := cmd.Flags().GetInt("limit")

		filters := primary.LogFilters{
			ActorID: actorID,
			Action:  action,
			Limit:   limit,
		}
		if len(args) > 0 {
			filters.EntityID = normalizeID(args[0])
		}
		return wire.ReportAdapter(jsonOutput).Activity(NewContext(), filters)
	},
}

var activityPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old activity entries",
	Long:  "Delete activity entries older than the specified number of days (default 90)",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		count, err := wire.LogService().PruneLogs(NewContext(), days)
		if err != nil {
			return fmt.Errorf("failed to prune activity: %w", err)
		}

		if count == 0 {
			fmt.Printf("No activity entries older than %d days found.\n", days)
		} else {
			fmt.Printf("Pruned %d activity entries older than %d days.\n", count, days)
		}
		return nil
	},
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	weeklyCmd.AddCommand(weeklyGenerateCmd)
	weeklyCmd.AddCommand(weeklyShowCmd)
	weeklyCmd.AddCommand(weeklyListCmd)

	historyCmd.Flags().IntP("limit", "n", 0, "Number of commits (default 20)")

	activityCmd.Flags().String("actor", "", "Filter by actor")
	activityCmd.Flags().String("action", "", "Filter by action (create, update, delete)")
	activityCmd.Flags().IntP("limit", "n", 50, "Number of entries")
	activityPruneCmd.Flags().Int("days", 90, "Age threshold in days")
	activityCmd.AddCommand(activityPruneCmd)
}

// MetricsCmd returns the metrics command
func MetricsCmd() *cobra.Command {
	return metricsCmd
}

// WeeklyCmd returns the weekly command
func WeeklyCmd() *cobra.Command {
	return weeklyCmd
}

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	return historyCmd
}

// ActivityCmd returns the activity command
func ActivityCmd() *cobra.Command {
	return activityCmd
}
