// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the line-mode commands of
// rigchat.
//
// Every command shares one bootstrap with the TUI: configuration, the
// on-device key-value storage, the session, the theme preference, the API
// client and the message orchestrator.
//
// # Key Types
//
//   - Command: Enumeration of all available commands
//   - Args: Parsed global flags plus the raw command arguments
//   - ArgParser: Flag and positional access for one command
//   - App: The wired stores, client and orchestrator
//   - JSONResponse: Envelope for --json output
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdChat:
//	    err = cli.HandleChat(args)
//	case cli.CmdHistory:
//	    err = cli.HandleHistory(args)
//	// ... other commands
//	}
//	cli.Exit(cmd.String(), args, err)
//
// # Commands Overview
//
//   - (none), tui: Full-screen chat
//   - chat: Line-mode chat with input history
//   - login, logout, whoami: Session management
//   - history, clear: Conversation history
//   - docs: Documents available for attachment
//   - theme: Appearance preference
//   - config: Show, locate or create the config file
//   - version, help
package cli
