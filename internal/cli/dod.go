package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/safer/internal/wire"
)

var dodCmd = &cobra.Command{
	Use:   "dod",
	Short: "Manage an item's Definition-of-Done checklist",
}

var dodAddCmd = &cobra.Command{
	Use:   "add [item-id] [text]",
	Short: "Add a checklist entry",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).AddDoD(NewContext(), normalizeID(args[0]), strings.Join(args[1:], " "))
	},
}

var dodCheckCmd = &cobra.Command{
	Use:   "check [item-id] [entry-id]",
	Short: "Mark a checklist entry done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).ToggleDoD(NewContext(), normalizeID(args[0]), args[1], true)
	},
}

var dodUncheckCmd = &cobra.Command{
	Use:   "uncheck [item-id] [entry-id]",
	Short: "Mark a checklist entry not done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).ToggleDoD(NewContext(), normalizeID(args[0]), args[1], false)
	},
}

var dodRemoveCmd = &cobra.Command{
	Use:     "rm [item-id] [entry-id]",
	Aliases: []string{"remove"},
	Short:   "Remove a checklist entry",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).RemoveDoD(NewContext(), normalizeID(args[0]), args[1])
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start and stop focus sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start [item-id]",
	Short: "Start a focus session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ItemAdapter(jsonOutput).StartSession(NewContext(), normalizeID(args[0]))
	},
}

var sessionStopCmd = &cobra.Command{
	Use:   "stop [item-id]",
	Short: "Stop the running focus session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, _ := cmd.Flags().GetString("notes")
		return wire.ItemAdapter(jsonOutput).StopSession(NewContext(), normalizeID(args[0]), notes)
	},
}

func init() {
	dodCmd.AddCommand(dodAddCmd)
	dodCmd.AddCommand(dodCheckCmd)
	dodCmd.AddCommand(dodUncheckCmd)
	dodCmd.AddCommand(dodRemoveCmd)

	sessionStopCmd.Flags().StringP("notes", "n", "", "Session notes")
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionStopCmd)
}

// DoDCmd returns the dod command
func DoDCmd() *cobra.Command {
	return dodCmd
}

// SessionCmd returns the session command
func SessionCmd() *cobra.Command {
	return sessionCmd
}
