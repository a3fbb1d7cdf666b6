package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/safer/internal/config"
	"github.com/example/safer/internal/wire"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and edit config.json",
	Long: `Read and edit config.json in the data root.

Keys are dotted JSON paths, e.g. wipLimit, git.autoCommit,
integrations.github.owner. SAFER_* environment variables override file
values at runtime.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (tokens redacted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := wire.Paths()
		if err != nil {
			return err
		}
		cfg, err := config.Load(paths.ConfigFile)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.Redacted())
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := wire.Paths()
		if err != nil {
			return err
		}
		cfg, err := config.Load(paths.ConfigFile)
		if err != nil {
			return err
		}
		v, err := config.Get(cfg.Redacted(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one configuration value in config.json",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := wire.Paths()
		if err != nil {
			return err
		}
		// Edit the file itself so environment overrides are not persisted.
		cfg, err := config.LoadFile(paths.ConfigFile)
		if err != nil {
			return err
		}
		if err := config.Set(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(paths.ConfigFile, cfg); err != nil {
			return err
		}
		fmt.Printf("✓ Set %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	return configCmd
}
