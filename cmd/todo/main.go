package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/jsonstore"
	"github.com/tgienger/todo/internal/logging"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/notify"
	"github.com/tgienger/todo/internal/store"
	"github.com/tgienger/todo/internal/taskview"
	"github.com/tgienger/todo/internal/ui"
	"github.com/tgienger/todo/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath  string
	storagePath string
	backendName string
)

var rootCmd = &cobra.Command{
	Use:           "todo",
	Short:         "A terminal task list",
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("todo %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/todo/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "db", "", "task storage file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "storage backend: sqlite or json (overrides config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// backend is a persistence gateway that also keeps UI settings
type backend interface {
	store.Gateway
	views.Settings
}

// env is everything a command needs once flags and config are resolved
type env struct {
	cfg     *config.Config
	logger  *logging.Logger
	backend backend
	closers []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing: %v\n", err)
		}
	}
}

func setup(interactive bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if backendName != "" {
		cfg.Storage.Backend = backendName
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir, err := db.DataDir()
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logDir := cfg.Log.Dir
	if logDir == "" {
		logDir = filepath.Join(dataDir, "logs")
	}
	logCfg := logging.Config{
		Level:   level,
		Dir:     logDir,
		Service: "todo",
		// the TUI owns the terminal
		Stderr: !interactive && level == slog.LevelDebug,
	}
	if interactive {
		logCfg.Fallback = io.Discard
	}
	logger := logging.New(logCfg)

	e := &env{cfg: cfg, logger: logger}
	e.closers = append(e.closers, logger.Close)

	switch cfg.Storage.Backend {
	case config.BackendJSON:
		path := cfg.Storage.Path
		if path == "" {
			path = filepath.Join(dataDir, "tasks.json")
		}
		js, err := jsonstore.Open(path, logger.Logger)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("open task file: %w", err)
		}
		e.backend = js
	default:
		database, err := db.New(cfg.Storage.Path, logger.Logger)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		e.backend = database
		e.closers = append(e.closers, database.Close)
	}

	logger.Info("starting", "version", version, "backend", cfg.Storage.Backend, "interactive", interactive)
	return e, nil
}

// defaultView turns the configured view into the projection defaults
func defaultView(cfg *config.Config) taskview.View {
	opt, err := taskview.ParseOption(cfg.View.Sort)
	if err != nil {
		opt = taskview.SortNone
	}
	return taskview.View{
		Sort: taskview.Sort{Option: opt, Ascending: cfg.View.Ascending},
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.cfg
	logger := e.logger.Logger

	st := store.New(e.backend, store.WithLogger(logger))
	if cfg.Notifications.Bell {
		st.OnComplete(func(models.Task) {
			fmt.Fprint(os.Stderr, "\a")
		})
	}

	center := notify.NewCenter(cfg.Notifications.Window, logger)

	// a configured start list only applies when none was saved
	if saved, err := e.backend.GetSetting(views.SettingNav); err == nil && saved == "" && cfg.View.Nav != string(taskview.NavAll) {
		if err := e.backend.SetSetting(views.SettingNav, cfg.View.Nav); err != nil {
			logger.Warn("save start list", "error", err)
		}
	}

	app := ui.NewApp(views.Deps{
		Store:    st,
		Settings: e.backend,
		Center:   center,
		Logger:   logger,
		Defaults: defaultView(cfg),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running application: %w", err)
		}
		return nil
	})

	if cfg.Notifications.Enabled {
		watcher := &notify.Watcher{
			Center:   center,
			Snapshot: st.Tasks,
			Changes:  st.Subscribe(),
			Interval: cfg.Notifications.Interval,
			Logger:   logger,
			OnNotify: func(items []notify.Notification) {
				p.Send(views.NotificationsArrived{Items: items})
			},
		}
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	return g.Wait()
}
