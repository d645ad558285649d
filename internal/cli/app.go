// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared wiring for the TUI and the line-mode commands.

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/storage"
	"github.com/jeranaias/rigchat/internal/store"
	"github.com/jeranaias/rigchat/internal/theme"
)

// App holds the long-lived services of one rigchat process.
type App struct {
	Config       *config.Config
	ConfigPath   string
	KV           *storage.KV
	Session      *session.Store
	Themes       *theme.Store
	Client       *api.Client
	Store        *store.Store
	Orchestrator *chat.Orchestrator
}

// LoadConfig loads the configuration selected by the global flags and
// applies the --api override.
func LoadConfig(args Args) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if args.ConfigPath != "" {
		path = args.ConfigPath
		cfg, err = config.LoadFromPath(path)
	} else {
		path, _ = config.ActivePath()
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, path, err
	}
	if args.APIURL != "" {
		cfg.API.BaseURL = strings.TrimSuffix(args.APIURL, "/")
	}
	if args.NoLog {
		cfg.Logging.Enabled = false
	}
	config.SetGlobal(cfg)
	SetupLogging(cfg)
	return cfg, path, nil
}

var logOnce sync.Once

// SetupLogging sends the standard logger to the configured log file, or
// discards it when logging is disabled. Only the first call has an effect.
func SetupLogging(cfg *config.Config) {
	logOnce.Do(func() {
		if !cfg.Logging.Enabled {
			log.SetOutput(io.Discard)
			return
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0700); err != nil {
			log.SetOutput(io.Discard)
			return
		}
		if _, err := tea.LogToFile(cfg.Logging.File, "rigchat"); err != nil {
			log.SetOutput(io.Discard)
		}
	})
}

// Bootstrap opens device storage, restores the session and the theme, and
// builds the API client and the orchestrator. sink receives the
// orchestrator's notices and may be nil.
func Bootstrap(ctx context.Context, args Args, sink chat.ErrorSink) (*App, error) {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	sess := session.NewStore(kv)
	if _, err := sess.Load(ctx); err != nil {
		log.Printf("SESSION_LOAD_FAILED | error=%v", err)
	}

	themes := theme.NewStore(kv)
	if _, err := themes.Init(ctx); err != nil {
		log.Printf("THEME_LOAD_FAILED | error=%v", err)
	}

	client := api.NewClient(cfg.API.BaseURL).
		WithTimeout(cfg.API.Timeout()).
		WithMaxRetries(cfg.API.MaxRetries).
		WithRateLimit(cfg.API.RateLimitRPS, cfg.API.RateBurst).
		WithTokenSource(sess)
	client.OnUnauthorized(func() {
		if !sess.Authenticated() {
			return
		}
		log.Printf("SESSION_EXPIRED | resetting")
		if err := sess.Reset(context.Background()); err != nil {
			log.Printf("SESSION_RESET_FAILED | error=%v", err)
		}
	})

	st := store.New()
	orch := chat.New(st, client, sink, chat.WithHistoryLimit(cfg.Chat.HistoryLimit))

	log.Printf("APP_START | api=%s storage=%s config=%s", cfg.API.BaseURL, kv.Path(), path)
	return &App{
		Config:       cfg,
		ConfigPath:   path,
		KV:           kv,
		Session:      sess,
		Themes:       themes,
		Client:       client,
		Store:        st,
		Orchestrator: orch,
	}, nil
}

// RequireSession returns ErrNotSignedIn unless a user is signed in.
func (a *App) RequireSession() error {
	if !a.Session.Authenticated() {
		return ErrNotSignedIn
	}
	return nil
}

// Close releases device storage.
func (a *App) Close() error {
	if a == nil || a.KV == nil {
		return nil
	}
	return a.KV.Close()
}

// commandContext returns a context cancelled by Ctrl+C or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
