// rigchat - A terminal client for the document chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/cli"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/store"
	"github.com/jeranaias/rigchat/internal/ui/chat"
	"github.com/jeranaias/rigchat/internal/ui/components"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdLogin:
		err = cli.HandleLogin(args)
	case cli.CmdLogout:
		err = cli.HandleLogout(args)
	case cli.CmdWhoami:
		err = cli.HandleWhoami(args)
	case cli.CmdHistory:
		err = cli.HandleHistory(args)
	case cli.CmdClear:
		err = cli.HandleClear(args)
	case cli.CmdDocs:
		err = cli.HandleDocs(args)
	case cli.CmdTheme:
		err = cli.HandleTheme(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersionWithJSON(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		cli.HandleUnknown(args)
	}
	cli.Exit(cmd.String(), args, err)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("the TUI"); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	toasts := components.NewToastManager()
	app, err := cli.Bootstrap(ctx, args, toasts)
	if err != nil {
		return err
	}
	defer app.Close()

	// Store changes reach the program through the mailbox, latest snapshot wins.
	mailbox := store.NewMailbox()
	unsubscribe := app.Store.Subscribe(mailbox.Put)
	defer unsubscribe()

	events := chat.NewEvents(ctx, chat.DefaultEventBuffer)
	if app.ConfigPath != "" {
		if _, statErr := os.Stat(app.ConfigPath); statErr == nil {
			err := config.Watch(ctx, app.ConfigPath, func(cfg *config.Config, err error) {
				events.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
			})
			if err != nil {
				log.Printf("CONFIG_WATCH_FAILED | path=%s error=%v", app.ConfigPath, err)
			}
		}
	}

	m := chat.New(ctx, chat.Deps{
		Orchestrator: app.Orchestrator,
		Mailbox:      mailbox,
		Backend:      app.Client,
		Session:      app.Session,
		Themes:       app.Themes,
		Toasts:       toasts,
		Activity:     session.NewActivity(),
		Events:       events,
		Config:       app.Config,
		BaseURL:      app.Client.BaseURL(),
	})
	defer m.Close()

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if app.Config.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if app.Config.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(m, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running rigchat: %w", err)
	}
	log.Printf("APP_EXIT")
	return nil
}
