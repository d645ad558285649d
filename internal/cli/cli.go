// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and the version and help handlers for rigchat.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdHistory
	CmdClear
	CmdDocs
	CmdTheme
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = [...]string{
	CmdTUI:     "tui",
	CmdChat:    "chat",
	CmdLogin:   "login",
	CmdLogout:  "logout",
	CmdWhoami:  "whoami",
	CmdHistory: "history",
	CmdClear:   "clear",
	CmdDocs:    "docs",
	CmdTheme:   "theme",
	CmdConfig:  "config",
	CmdVersion: "version",
	CmdHelp:    "help",
	CmdUnknown: "unknown",
}

// String returns the canonical command name.
func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	APIURL     string
	ConfigPath string
	NoLog      bool
	JSON       bool

	// Command-specific
	Subcommand string

	// Raw args (remaining after the command name)
	Raw []string
}

const usageText = `rigchat - terminal client for the document chat service

Usage:
  rigchat                        Start the TUI (default)
  rigchat chat                   Line-mode chat with input history
  rigchat login [--email E]      Sign in and store the session
  rigchat logout                 Sign out and forget the session
  rigchat whoami                 Show the signed-in user
  rigchat history [--limit N]    Print the chat history
  rigchat history --export F     Write the history to F (.md or .json)
  rigchat clear [--yes]          Clear the chat history
  rigchat docs [--page N]        List documents available for attachment
  rigchat theme [SUBCOMMAND]     Show or change the theme
  rigchat config [SUBCOMMAND]    Show, locate or create the config file
  rigchat version                Show version information
  rigchat help                   Show this help

Theme Commands:
  rigchat theme                  Show the current preference
  rigchat theme dark|light       Switch dark mode on or off
  rigchat theme mode MODE        Set the mode (tailwind, css)
  rigchat theme density D        Set the density (sm, md, lg)
  rigchat theme radius R         Set the bubble corners (none, sm, md, lg)

Config Commands:
  rigchat config show            Print the effective configuration
  rigchat config path            Print the config file path
  rigchat config init [--force]  Write a config file with the defaults

Chat Commands (during rigchat chat):
  /docs                          List documents
  /attach ID[,ID...]             Attach documents to the next message
  /history                       Print the conversation
  /export PATH                   Write the conversation to .md or .json
  /clear                         Clear the history
  /help                          Show chat commands
  /quit                          Exit

TUI Keys:
  enter send, alt+enter newline, ctrl+o documents, ctrl+l clear,
  ctrl+r refresh, ctrl+t theme, ctrl+x sign out, f1 help, ctrl+c quit

Global Flags:
  --api URL       Override api.base_url
  --config FILE   Use this config file (.toml or .json)
  --no-log        Disable the log file
  --json          Output in JSON format

Environment:
  RIGCHAT_HOME, RIGCHAT_API_URL, RIGCHAT_TIMEOUT, RIGCHAT_HISTORY_LIMIT,
  RIGCHAT_STORAGE, RIGCHAT_LOG_FILE, RIGCHAT_NO_LOG (also read from .env)

Examples:
  rigchat --api http://localhost:8080 login --email demo@example.com
  rigchat history --limit 20 --json
  rigchat theme mode tailwind
  rigchat clear --yes

Version: %s
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("rigchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses a command line without the program name.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		parsedArgs.Subcommand = strings.ToLower(remaining[0])
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs
	case "chat", "repl":
		return CmdChat, parsedArgs
	case "login", "signin":
		return CmdLogin, parsedArgs
	case "logout", "signout":
		return CmdLogout, parsedArgs
	case "whoami":
		return CmdWhoami, parsedArgs
	case "history", "hist":
		return CmdHistory, parsedArgs
	case "clear":
		return CmdClear, parsedArgs
	case "docs", "documents":
		return CmdDocs, parsedArgs
	case "theme":
		return CmdTheme, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "version", "-v", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		parsedArgs.Subcommand = cmd
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdUnknown, parsedArgs
	}
}

func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--no-log":
			parsedArgs.NoLog = true
		case "--json":
			parsedArgs.JSON = true
		case "--api":
			if i+1 < len(args) {
				i++
				parsedArgs.APIURL = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--api="):
				parsedArgs.APIURL = strings.TrimPrefix(arg, "--api=")
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// =============================================================================
// HELP AND VERSION
// =============================================================================

// HandleHelp prints the usage text.
func HandleHelp() {
	PrintUsage()
}

// HandleUnknown reports an unknown command with a suggestion.
func HandleUnknown(args Args) {
	msg := fmt.Sprintf("unknown command %q", args.Subcommand)
	if s := SuggestCommand(args.Subcommand); s != "" {
		msg += fmt.Sprintf("; did you mean %q?", s)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	fmt.Fprintln(os.Stderr, "Run 'rigchat help' for usage.")
	os.Exit(ExitUsageError)
}

// HandleVersionWithJSON prints version information, as JSON with --json.
func HandleVersionWithJSON(args Args) {
	if !args.JSON {
		PrintVersion()
		return
	}
	resp := NewJSONResponse("version", VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	})
	resp.Print()
}
