package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/safer/internal/config"
	"github.com/example/safer/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the SAFER data root",
		Long: `Create config.json, the data directory and its git repository.

The root defaults to ~/.safer and can be changed with --root or SAFER_HOME.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			wipLimit, _ := cmd.Flags().GetInt("wip-limit")
			remote, _ := cmd.Flags().GetString("remote")

			paths, err := wire.Paths()
			if err != nil {
				return err
			}

			cfg := config.Default()
			cfg.User.Name = name
			cfg.User.Email = email
			if wipLimit > 0 {
				cfg.WipLimit = wipLimit
			}
			if remote != "" {
				cfg.Git.RemoteURL = remote
				cfg.Git.SyncEnabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			fmt.Printf("Initializing SAFER at %s\n", paths.Root)

			c, err := wire.Initialize(NewContext(), paths, cfg, newLogger())
			if errors.Is(err, wire.ErrAlreadyInitialized) {
				fmt.Printf("SAFER is already initialized at %s\n", paths.Root)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer c.Close()

			fmt.Println("✓ Config written to", paths.ConfigFile)
			fmt.Println("✓ Data repository created at", paths.DataDir)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  safer create \"My first delivery\" --due \"next friday\"")
			fmt.Println("  safer list")

			return nil
		},
	}

	cmd.Flags().String("name", "", "Your name (used for commits and the activity log)")
	cmd.Flags().String("email", "", "Your email (used for commits)")
	cmd.Flags().Int("wip-limit", 0, fmt.Sprintf("WIP limit (default %d)", config.DefaultWipLimit))
	cmd.Flags().String("remote", "", "Remote URL for sync (enables sync)")

	return cmd
}
