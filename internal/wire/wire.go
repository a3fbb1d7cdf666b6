// Package wire provides dependency injection for the SAFER application.
// It builds one container per data root and exposes it as a lazily
// initialised singleton for the CLI.
package wire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/safer/internal/adapters/cli"
	"github.com/example/safer/internal/adapters/filesystem"
	"github.com/example/safer/internal/adapters/github"
	"github.com/example/safer/internal/adapters/gitrepo"
	"github.com/example/safer/internal/adapters/sqlite"
	"github.com/example/safer/internal/app"
	"github.com/example/safer/internal/config"
	"github.com/example/safer/internal/db"
	"github.com/example/safer/internal/ports/primary"
	"github.com/example/safer/internal/ports/secondary"
)

// Container holds every service of one data root.
type Container struct {
	Paths  config.Paths
	Config *config.Config
	Logger *slog.Logger

	Items   primary.ItemService
	Imports primary.ImportService
	Metrics primary.MetricsService
	Reviews primary.ReviewService
	Sync    primary.SyncService
	Logs    primary.LogService

	itemRepo *filesystem.ItemRepository
	recorder *gitrepo.Recorder
	database *sql.DB
}

// New builds a container over paths. The data directories and the git
// repository are created when missing.
func New(paths config.Paths, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Create adapters (secondary ports)
	itemRepo := filesystem.NewItemRepository(paths.DataDir, nil).WithLogger(logger)
	if err := itemRepo.Init(); err != nil {
		return nil, err
	}
	reviewStore := filesystem.NewReviewStore(paths.ReviewsDir)
	locker := filesystem.NewRootLock(paths.LockFile)

	recorder := gitrepo.New(paths.DataDir, gitrepo.Options{
		AutoCommit:  cfg.Git.AutoCommit,
		Prefix:      cfg.Git.CommitPrefix,
		AuthorName:  cfg.User.Name,
		AuthorEmail: cfg.User.Email,
		SyncEnabled: cfg.Git.SyncEnabled,
		RemoteURL:   cfg.Git.RemoteURL,
		Branch:      cfg.Git.Branch,
	})
	if err := recorder.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize data history: %w", err)
	}

	database, err := db.Open(paths.ActivityDB)
	if err != nil {
		return nil, err
	}
	logRepo := sqlite.NewActivityLogRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(logRepo)

	gh := cfg.Integrations.GitHub
	sources := []secondary.ImportSource{
		github.NewSource(github.SourceConfig{
			Enabled:  gh.Enabled,
			Token:    gh.Token,
			Owner:    gh.Owner,
			Repo:     gh.Repo,
			Assignee: gh.Assignee,
			BaseURL:  gh.APIURL,
		}, logger),
	}

	settings := app.ItemSettings{
		WipLimit:       cfg.WipLimit,
		TimeBoxMinutes: cfg.TimeBoxMinutes,
	}

	// Create services (primary ports implementation)
	return &Container{
		Paths:    paths,
		Config:   cfg,
		Logger:   logger,
		Items:    app.NewItemService(itemRepo, locker, recorder, logWriter, settings, logger),
		Imports:  app.NewImportService(itemRepo, sources, locker, recorder, logWriter, settings, logger),
		Metrics:  app.NewMetricsService(itemRepo),
		Reviews:  app.NewReviewService(itemRepo, reviewStore, locker, recorder, logger),
		Sync:     app.NewSyncService(recorder, locker, logger),
		Logs:     app.NewLogService(logRepo),
		itemRepo: itemRepo,
		recorder: recorder,
		database: database,
	}, nil
}

// Close releases the activity database.
func (c *Container) Close() error {
	if c.database == nil {
		return nil
	}
	return c.database.Close()
}

// ============================================================================
// Process-wide singleton used by the CLI
// ============================================================================

var (
	rootFlag  string
	logger    *slog.Logger
	container *Container
	initErr   error
	once      sync.Once
)

// Configure sets the root directory flag and logger. It must run before the
// first service is requested.
func Configure(root string, l *slog.Logger) {
	rootFlag = root
	logger = l
}

// Paths resolves the data root layout without opening anything.
func Paths() (config.Paths, error) {
	root, err := config.ResolveRoot(rootFlag)
	if err != nil {
		return config.Paths{}, err
	}
	return config.NewPaths(root), nil
}

// Get returns the singleton container, building it on first use.
func Get() (*Container, error) {
	once.Do(initServices)
	return container, initErr
}

// Shutdown closes the singleton container if it was built.
func Shutdown() {
	if container != nil {
		if err := container.Close(); err != nil && logger != nil {
			logger.Warn("failed to close activity database", "error", err)
		}
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	paths, err := Paths()
	if err != nil {
		initErr = err
		return
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		initErr = fmt.Errorf("failed to load config %s: %w", paths.ConfigFile, err)
		return
	}
	container, initErr = New(paths, cfg, logger)
}

// mustGet is used by the adapter accessors; a broken data root is fatal.
func mustGet() *Container {
	c, err := Get()
	if err != nil {
		log.Fatalf("failed to initialize SAFER: %v", err)
	}
	return c
}

// ItemAdapter returns a new ItemAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ItemAdapter(asJSON bool) *cliadapter.ItemAdapter {
	return ItemAdapterWithOutput(os.Stdout, asJSON)
}

// ItemAdapterWithOutput returns a new ItemAdapter writing to the given output.
func ItemAdapterWithOutput(out io.Writer, asJSON bool) *cliadapter.ItemAdapter {
	return cliadapter.NewItemAdapter(mustGet().Items, out, asJSON)
}

// ImportAdapter returns a new ImportAdapter writing to stdout.
func ImportAdapter(asJSON bool) *cliadapter.ImportAdapter {
	return cliadapter.NewImportAdapter(mustGet().Imports, os.Stdout, asJSON)
}

// ReportAdapter returns a new ReportAdapter writing to stdout.
func ReportAdapter(asJSON bool) *cliadapter.ReportAdapter {
	c := mustGet()
	return cliadapter.NewReportAdapter(c.Metrics, c.Reviews, c.Sync, c.Logs, os.Stdout, asJSON)
}

// SyncService returns the singleton SyncService.
func SyncService() primary.SyncService {
	return mustGet().Sync
}

// LogService returns the singleton LogService.
func LogService() primary.LogService {
	return mustGet().Logs
}

// ErrAlreadyInitialized is returned by Initialize when config.json exists.
var ErrAlreadyInitialized = errors.New("already initialized")

// Initialize writes a fresh config.json and creates the data root. An
// existing config is left untouched.
func Initialize(ctx context.Context, paths config.Paths, cfg *config.Config, l *slog.Logger) (*Container, error) {
	if l == nil {
		l = slog.Default()
	}
	if _, err := os.Stat(paths.ConfigFile); err == nil {
		return nil, fmt.Errorf("%s: %w", paths.ConfigFile, ErrAlreadyInitialized)
	}
	if err := config.Save(paths.ConfigFile, cfg); err != nil {
		return nil, err
	}
	c, err := New(paths, cfg, l)
	if err != nil {
		return nil, err
	}
	if _, err := c.recorder.Commit(ctx, "Initialize data directory"); err != nil {
		l.Warn("initial commit failed", "error", err)
	}
	return c, nil
}
