package cli

import (
	gocontext "context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/safer/internal/config"
	"github.com/example/safer/internal/ctxutil"
	"github.com/example/safer/internal/version"
	"github.com/example/safer/internal/wire"
)

// Global flag values, set by the root command.
var (
	rootDir       string
	jsonOutput    bool
	verbose       bool
	globalActorID string
)

// NewContext returns the context used by every command, carrying the actor
// recorded in the activity log.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if globalActorID != "" {
		return ctxutil.WithActorID(ctx, globalActorID)
	}
	return ctx
}

// newLogger builds the stderr logger. Warnings always show; --verbose adds debug output.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command with args and closes the container afterwards.
// The container is closed even when the command fails.
func Execute(args []string) error {
	defer wire.Shutdown()
	cmd := RootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

// RootCmd returns the safer root command with every subcommand attached.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "safer",
		Short:   "SAFER - a WIP-limited delivery backlog",
		Version: version.String(),
		Long: `SAFER tracks a small number of delivery items at once.

Each item carries a scope, a Definition-of-Done checklist, focus sessions and
a work log. Every change is committed to a git repository inside the data
directory, and completed items feed metrics and weekly reviews.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := newLogger()
			slog.SetDefault(logger)
			wire.Configure(rootDir, logger)
			globalActorID = resolveActor()
		},
	}

	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Data root (default $SAFER_HOME or ~/.safer)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Item lifecycle
	rootCmd.AddCommand(InitCmd())
	rootCmd.AddCommand(CreateCmd())
	rootCmd.AddCommand(ListCmd())
	rootCmd.AddCommand(ShowCmd())
	rootCmd.AddCommand(UpdateCmd())
	rootCmd.AddCommand(StatusCmd())
	rootCmd.AddCommand(CompleteCmd())
	rootCmd.AddCommand(ArchiveCmd())
	rootCmd.AddCommand(DeleteCmd())
	rootCmd.AddCommand(WipCmd())
	rootCmd.AddCommand(DoDCmd())
	rootCmd.AddCommand(SessionCmd())
	rootCmd.AddCommand(LogWorkCmd())
	rootCmd.AddCommand(ReviewNotesCmd())

	// Intake and reporting
	rootCmd.AddCommand(ImportCmd())
	rootCmd.AddCommand(MetricsCmd())
	rootCmd.AddCommand(WeeklyCmd())

	// Data directory
	rootCmd.AddCommand(SyncCmd())
	rootCmd.AddCommand(HistoryCmd())
	rootCmd.AddCommand(ActivityCmd())
	rootCmd.AddCommand(ConfigCmd())

	return rootCmd
}

// resolveActor reads the configured user name without building services.
func resolveActor() string {
	paths, err := wire.Paths()
	if err != nil {
		return ctxutil.CLIActor("")
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return ctxutil.CLIActor("")
	}
	return ctxutil.CLIActor(cfg.User.Name)
}
