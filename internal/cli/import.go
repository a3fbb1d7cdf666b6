package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/wire"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import delivery items from external trackers",
}

var importGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Import GitHub issues into free WIP slots",
	Long: `Fetch issues from the configured repository and turn each one that is
not already linked to an active or archived item into a delivery item.

Only as many issues as there are free WIP slots are imported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mine, _ := cmd.Flags().GetBool("assigned-to-me")
		label, _ := cmd.Flags().GetString("label")
		state, _ := cmd.Flags().GetString("state")
		limit, _ := cmd.Flags().GetInt("limit")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		return wire.ImportAdapter(jsonOutput).Import(NewContext(), primary.ImportRequest{
			Source:       "github",
			AssignedToMe: mine,
			Label:        label,
			State:        state,
			Limit:        limit,
		}, dryRun)
	},
}

func init() {
	importGitHubCmd.Flags().Bool("assigned-to-me", false, "Only issues assigned to the configured assignee")
	importGitHubCmd.Flags().StringP("label", "l", "", "Only issues with this label")
	importGitHubCmd.Flags().String("state", "open", "Issue state (open, closed, all)")
	importGitHubCmd.Flags().Int("limit", 0, "Maximum issues to fetch")
	importGitHubCmd.Flags().Bool("dry-run", false, "Show what would be imported without writing")

	importCmd.AddCommand(importGitHubCmd)
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	return importCmd
}
