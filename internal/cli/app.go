// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemclone command line.
package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/gemclone/internal/auth"
	"github.com/jeranaias/gemclone/internal/chat"
	"github.com/jeranaias/gemclone/internal/config"
	"github.com/jeranaias/gemclone/internal/logging"
	"github.com/jeranaias/gemclone/internal/settings"
	"github.com/jeranaias/gemclone/internal/storage"
	"github.com/jeranaias/gemclone/internal/transport"
	"github.com/jeranaias/gemclone/internal/transport/gemini"
	"github.com/jeranaias/gemclone/internal/transport/openai"
)

// App is everything a chat front end needs, wired from the configuration.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    storage.Store
	Settings *settings.FileStore
	Chat     *chat.Orchestrator
	Auth     *auth.Manager
}

// loadConfig reads --config, or ~/.gemclone, and applies --log-level.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromPath(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Path: flags.configPath, Err: err}
	}

	if flags.logLevel != "" {
		if _, err := logging.ParseLevel(flags.logLevel); err != nil {
			return nil, &UsageError{Err: err}
		}
		cfg.Log.Level = flags.logLevel
	}
	return cfg, nil
}

func newApp(flags *globalFlags, opts Options) (*App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, &ConfigError{Path: flags.configPath, Err: err}
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	fs := settings.NewFileStore(cfg.Settings.Path)
	s, err := fs.Load()
	if err != nil {
		log.Warn("using default settings", zap.String("path", fs.Path()), zap.Error(err))
	}

	provider := opts.Provider
	if provider == nil {
		provider = newProvider(cfg.Provider)
	}

	orch := chat.New(chat.Config{
		Store:    store,
		Adapter:  transport.NewAdapter(provider, log),
		Settings: s,
		Saver:    fs,
		Pacing:   cfg.Stream.Pacing(),
		Logger:   log,
	})

	log.Info("gemclone starting",
		zap.String("version", Version),
		zap.String("provider", provider.Name()),
		zap.String("storage", cfg.Storage.Backend))

	return &App{
		Config:   cfg,
		Log:      log,
		Store:    store,
		Settings: fs,
		Chat:     orch,
		Auth:     auth.NewManager(auth.Config{Delay: opts.signInDelay()}),
	}, nil
}

func newProvider(cfg config.ProviderConfig) transport.Provider {
	switch cfg.Name {
	case config.ProviderOpenAI:
		return openai.New(openai.Config{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL})
	default:
		return gemini.New(gemini.Config{APIKey: cfg.GeminiAPIKey, BaseURL: cfg.GeminiBaseURL})
	}
}

// historyPath is the REPL input history, kept next to the settings file.
func (a *App) historyPath() string {
	return filepath.Join(filepath.Dir(a.Settings.Path()), "chat_history")
}

// run calls fn while the settings watcher re-applies external edits. The
// watcher stops when fn returns.
func (a *App) run(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if a.Config.Settings.Watch {
		g.Go(func() error {
			a.watchSettings(gctx)
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	return g.Wait()
}

// watchSettings never fails the caller; a settings file that cannot be
// watched only loses hot reload.
func (a *App) watchSettings(ctx context.Context) {
	log := a.Log.Named("settings")
	if err := os.MkdirAll(filepath.Dir(a.Settings.Path()), 0700); err != nil {
		log.Warn("settings hot reload disabled", zap.Error(err))
		return
	}
	err := a.Settings.Watch(ctx, settings.DefaultDebounce, log, func(s settings.AppSettings) {
		log.Info("settings file changed")
		if err := a.Chat.ApplySettings(ctx, s); err != nil {
			log.Warn("failed to apply edited settings", zap.Error(err))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("settings hot reload stopped", zap.Error(err))
	}
}

// Close stops any reply in flight and releases the store.
func (a *App) Close() error {
	a.Chat.Shutdown()
	err := a.Store.Close()
	_ = a.Log.Sync()
	return err
}

func (a *App) closeInto(errp *error) {
	if err := a.Close(); err != nil && *errp == nil {
		*errp = err
	}
}
