package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/safer/internal/ports/secondary"
	"github.com/example/safer/internal/wire"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push or pull the data repository",
	Long: `Synchronise the data repository with the configured remote.

Requires git.syncEnabled and git.remoteURL in config.json.`,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push local commits to the remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.SyncService().Push(NewContext()); err != nil {
			return syncHint(err)
		}
		fmt.Println("✓ Pushed data repository")
		return nil
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull remote commits into the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.SyncService().Pull(NewContext()); err != nil {
			return syncHint(err)
		}
		fmt.Println("✓ Pulled data repository")
		return nil
	},
}

func syncHint(err error) error {
	if errors.Is(err, secondary.ErrSyncDisabled) {
		return fmt.Errorf("%w\nHint: safer config set git.syncEnabled true && safer config set git.remoteURL <url>", err)
	}
	return err
}

func init() {
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
}

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	return syncCmd
}
