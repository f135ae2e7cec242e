package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ganot/tally-mcp/internal/app"
	"github.com/ganot/tally-mcp/internal/cache"
	"github.com/ganot/tally-mcp/internal/config"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/ganot/tally-mcp/internal/productive"
	"github.com/ganot/tally-mcp/internal/sqlite"
)

var version = "dev"

type rootOptions struct {
	configPath string
	jsonOutput bool
}

// env holds everything a command needs. close releases it.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	app    *app.App
	close  func()
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tally",
		Short:         "Productive time entries and timers from the command line or over MCP.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $TALLY_CONFIG_PATH)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")

	addServe(cmd, opts)
	addList(cmd, opts)
	addShow(cmd, opts)
	addStop(cmd, opts)
	addSwitch(cmd, opts)
	addRestart(cmd, opts)
	addNote(cmd, opts)
	addCopy(cmd, opts)
	addActivity(cmd, opts)
	return cmd
}

// setup loads configuration and wires the app. stdio selects stderr for logs
// so stdout stays clean for JSON-RPC.
func setup(opts *rootOptions, mutate func(*config.Config)) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if mutate != nil {
		mutate(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	logWriter := io.Writer(os.Stderr)
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			closers = append(closers, func() { _ = file.Close() })
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		closeAll()
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		closeAll()
		return nil, err
	}
	closers = append(closers, func() { _ = db.Close() })
	if err := db.RunMigrations(); err != nil {
		closeAll()
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		closeAll()
		return nil, err
	}

	client := productive.NewClient(productive.Config{
		BaseURL: cfg.Productive.BaseURL,
		Token:   cfg.Productive.APIToken,
		OrgID:   cfg.Productive.OrgID,
		Timeout: cfg.Productive.Timeout,
	}, nil, logger)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)

	a := app.New(client, activitySvc, app.Options{
		View: timesheet.Options{
			SimplifyJiraLinks: cfg.View.SimplifyJiraLinks,
			VisibleSpanDays:   cfg.View.VisibleSpanDays,
			Location:          loc,
		},
	}, logger)

	return &env{cfg: cfg, logger: logger, app: a, close: closeAll}, nil
}

// loadedRuntime is setup followed by a refresh. Failed sources are logged;
// only a failure to load time entries is returned.
func loadedRuntime(ctx context.Context, opts *rootOptions) (*env, error) {
	rt, err := setup(opts, nil)
	if err != nil {
		return nil, err
	}
	if err := rt.app.Refresh(ctx); err != nil {
		rt.logger.Warn("refresh incomplete", "error", err)
		for _, src := range rt.app.Listing().Sources {
			if src.Source == cache.SourceEntries && src.Error != "" {
				rt.close()
				return nil, fmt.Errorf("load time entries: %s", src.Error)
			}
		}
	}
	return rt, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
