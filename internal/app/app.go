package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/five82/vsmbar/internal/config"
	"github.com/five82/vsmbar/internal/controller"
	"github.com/five82/vsmbar/internal/corpus"
	"github.com/five82/vsmbar/internal/history"
	"github.com/five82/vsmbar/internal/hotkey"
	"github.com/five82/vsmbar/internal/logging"
	"github.com/five82/vsmbar/internal/prefs"
	"github.com/five82/vsmbar/internal/ui"
	"github.com/five82/vsmbar/internal/vsm"
)

// Options configure the vsmbar application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/vsmbar/prefs.toml
	Backend    string // empty uses prefs, then config
}

// Run boots the overlay until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logPath := openLogger(cfg)
	defer func() { _ = logger.Close() }()

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	initial := selectBackend(opts.Backend, userPrefs.Backend, cfg.Backend)
	logger.Info("starting", "backend", initial, "local_url", cfg.URL(vsm.Local), "hosted_url", cfg.URL(vsm.Hosted))

	backends, err := newSearchers(cfg)
	if err != nil {
		return err
	}

	ctrl, err := controller.New(ctx, backends, initial, logger.Logger)
	if err != nil {
		return fmt.Errorf("init controller: %w", err)
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.Warn("history unavailable", "path", cfg.HistoryPath, "error", err)
		store = nil
	} else {
		defer func() { _ = store.Close() }()
	}

	watcher, err := corpus.NewWatcher(0, logger.Logger)
	if err != nil {
		logger.Warn("corpus watcher unavailable", "error", err)
		watcher = nil
	} else {
		defer func() { _ = watcher.Close() }()
	}

	activations, stop := bindHotkey(ctx, hotkey.Default(), logger.Logger)
	defer stop()

	return ui.Run(ui.Options{
		Context:     ctx,
		Controller:  ctrl,
		History:     store,
		Watcher:     watcher,
		Toggle:      hotkey.NewToggle(true),
		Activations: activations,
		ThemeName:   userPrefs.Theme,
		PrefsPath:   opts.PrefsPath,
		LogPath:     logPath,
		Logger:      logger.Logger,
	})
}

// openLogger opens the log file. When the directory is unusable logging
// is discarded and the overlay still starts.
func openLogger(cfg config.Config) (*logging.Logger, string) {
	logger, err := logging.Open(cfg.LogDirOrDefault(), cfg.LogLevel)
	if err != nil {
		return &logging.Logger{Logger: log.New(io.Discard)}, ""
	}
	return logger, logger.Path
}

// selectBackend resolves the startup backend: flag, then last selection,
// then config.
func selectBackend(flagValue, prefValue string, configured vsm.Backend) vsm.Backend {
	for _, v := range []string{flagValue, prefValue} {
		if strings.TrimSpace(v) != "" {
			return vsm.ParseBackend(v)
		}
	}
	if configured == "" {
		return vsm.Local
	}
	return configured
}

// newSearchers builds one client per backend.
func newSearchers(cfg config.Config) (map[vsm.Backend]vsm.Searcher, error) {
	backends := make(map[vsm.Backend]vsm.Searcher, 2)
	for _, b := range []vsm.Backend{vsm.Local, vsm.Hosted} {
		client, err := vsm.NewClient(cfg.URL(b), vsm.WithTimeout(cfg.RequestTimeout))
		if err != nil {
			return nil, fmt.Errorf("init %s client: %w", b, err)
		}
		backends[b] = client
	}
	return backends, nil
}

// bindHotkey registers the global toggle. Presses land on the returned
// channel; a press that arrives while one is pending is dropped. A nil
// channel means only the in-terminal binding works.
func bindHotkey(ctx context.Context, reg hotkey.Registrar, logger *log.Logger) (<-chan struct{}, func()) {
	activations := make(chan struct{}, 1)
	stop, err := hotkey.Bind(ctx, reg, hotkey.ToggleCombo, func() {
		select {
		case activations <- struct{}{}:
		default:
		}
	})
	if err != nil {
		if errors.Is(err, hotkey.ErrUnsupported) {
			logger.Info("global hotkey not available in this build", "combo", hotkey.ToggleCombo)
		} else {
			logger.Warn("global hotkey registration failed", "combo", hotkey.ToggleCombo, "error", err)
		}
		return nil, stop
	}
	logger.Info("global hotkey registered", "combo", hotkey.ToggleCombo)
	return activations, stop
}
