// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/config"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"show", "--limit", "50"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("limit") != "50" {
					t.Errorf("Flag(limit) = %q, want %q", p.Flag("limit"), "50")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"login", "--email=a@b.c"},
			wantSub: "login",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("email") != "a@b.c" {
					t.Errorf("Flag(email) = %q, want %q", p.Flag("email"), "a@b.c")
				}
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"history", "--plain"},
			wantSub: "history",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("plain") {
					t.Error("BoolFlag(plain) should be true")
				}
			},
		},
		{
			name:    "boolean flag with equals",
			args:    []string{"clear", "--yes=false"},
			wantSub: "clear",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("yes") {
					t.Error("BoolFlag(yes) should be false")
				}
				if !p.HasFlag("yes") {
					t.Error("HasFlag(yes) should be true")
				}
			},
		},
		{
			name:    "short alias",
			args:    []string{"clear", "-y"},
			wantSub: "clear",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("yes", "y") {
					t.Error("BoolFlag(yes, y) should be true")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"theme", "density", "sm"},
			wantSub: "theme",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 3 {
					t.Errorf("PositionalCount() = %d, want 3", p.PositionalCount())
				}
				joined := strings.Join(p.PositionalFrom(1), " ")
				if joined != "density sm" {
					t.Errorf("PositionalFrom(1) joined = %q, want %q", joined, "density sm")
				}
			},
		},
		{
			name:    "terminator",
			args:    []string{"send", "--", "--not-a-flag", "text"},
			wantSub: "send",
			validate: func(t *testing.T, p *ArgParser) {
				if p.HasFlag("not-a-flag") {
					t.Error("arguments after -- must not be flags")
				}
				if p.Positional(1) != "--not-a-flag" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "--not-a-flag")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		defaultVal int
		want       int
	}{
		{"flag present", []string{"docs", "--page", "3"}, 1, 3},
		{"flag missing uses default", []string{"docs"}, 1, 1},
		{"invalid int uses default", []string{"docs", "--page", "abc"}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewArgParser(tt.args).FlagIntOrDefault("page", tt.defaultVal)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault(page, %d) = %d, want %d", tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestArgParser_HasFlag(t *testing.T) {
	parser := NewArgParser([]string{"history", "--plain", "--limit", "50"})

	if !parser.HasFlag("plain") {
		t.Error("HasFlag(plain) should be true")
	}
	if !parser.HasFlag("--limit") {
		t.Error("HasFlag(--limit) should be true")
	}
	if parser.HasFlag("nonexistent") {
		t.Error("HasFlag(nonexistent) should be false")
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	parser := NewArgParser([]string{})
	if parser.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", parser.Subcommand())
	}
	if parser.PositionalCount() != 0 {
		t.Errorf("PositionalCount() = %d, want 0", parser.PositionalCount())
	}
	if parser.Positional(5) != "" {
		t.Error("Positional out of range should be empty")
	}
}

func TestArgParser_FlagOrDefault(t *testing.T) {
	parser := NewArgParser([]string{"cmd", "--present", "value"})

	if parser.FlagOrDefault("present", "default") != "value" {
		t.Error("FlagOrDefault should return actual value when present")
	}
	if parser.FlagOrDefault("missing", "default") != "default" {
		t.Error("FlagOrDefault should return default when missing")
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestParseBoolString(t *testing.T) {
	trueValues := []string{"true", "TRUE", "yes", "y", "1", "on", " On "}
	falseValues := []string{"false", "FALSE", "no", "n", "0", "off"}

	for _, v := range trueValues {
		got, err := ParseBoolString(v)
		if err != nil || !got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want true, nil", v, got, err)
		}
	}
	for _, v := range falseValues {
		got, err := ParseBoolString(v)
		if err != nil || got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want false, nil", v, got, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should error")
	}
}

func TestParseIntWithValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"valid positive", "42", 42, false},
		{"valid one", "1", 1, false},
		{"zero is invalid", "0", 0, true},
		{"negative is invalid", "-5", 0, true},
		{"empty is invalid", "", 0, true},
		{"non-numeric is invalid", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntWithValidation(tt.input, "limit")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIntWithValidation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseIntWithValidation(%q) = %d, want %d", tt.input, got, tt.want)
			}
			var ve *ValidationError
			if tt.wantErr && !errors.As(err, &ve) {
				t.Errorf("error %v is not a ValidationError", err)
			}
		})
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		input   string
		want    []int64
		wantErr bool
	}{
		{"3", []int64{3}, false},
		{"3,7", []int64{3, 7}, false},
		{"3, 7  12", []int64{3, 7, 12}, false},
		{"", []int64{}, false},
		{"3,x", nil, true},
		{"0", nil, true},
		{"-2", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIDList(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIDList(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseIDList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{name: "no args starts the TUI", argv: nil, wantCmd: CmdTUI},
		{name: "tui", argv: []string{"tui"}, wantCmd: CmdTUI},
		{name: "chat", argv: []string{"chat"}, wantCmd: CmdChat},
		{name: "repl alias", argv: []string{"repl"}, wantCmd: CmdChat},
		{name: "signin alias", argv: []string{"signin"}, wantCmd: CmdLogin},
		{name: "signout alias", argv: []string{"signout"}, wantCmd: CmdLogout},
		{name: "whoami", argv: []string{"whoami"}, wantCmd: CmdWhoami},
		{name: "hist alias", argv: []string{"hist"}, wantCmd: CmdHistory},
		{name: "clear", argv: []string{"clear", "--yes"}, wantCmd: CmdClear},
		{name: "documents alias", argv: []string{"documents"}, wantCmd: CmdDocs},
		{name: "uppercase", argv: []string{"HISTORY"}, wantCmd: CmdHistory},
		{name: "version flag", argv: []string{"--version"}, wantCmd: CmdVersion},
		{name: "help flag", argv: []string{"-h"}, wantCmd: CmdHelp},
		{
			name:    "theme subcommand",
			argv:    []string{"theme", "Dark"},
			wantCmd: CmdTheme,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "dark" {
					t.Errorf("Subcommand = %q, want dark", a.Subcommand)
				}
				if len(a.Raw) != 1 || a.Raw[0] != "Dark" {
					t.Errorf("Raw = %v, want [Dark]", a.Raw)
				}
			},
		},
		{
			name:    "flag is not a subcommand",
			argv:    []string{"history", "--limit", "5"},
			wantCmd: CmdHistory,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "" {
					t.Errorf("Subcommand = %q, want empty", a.Subcommand)
				}
			},
		},
		{
			name:    "global flags anywhere",
			argv:    []string{"--api", "http://x", "history", "--json", "--config=/tmp/c.toml", "--no-log"},
			wantCmd: CmdHistory,
			check: func(t *testing.T, a Args) {
				if a.APIURL != "http://x" || a.ConfigPath != "/tmp/c.toml" || !a.JSON || !a.NoLog {
					t.Errorf("global flags not parsed: %+v", a)
				}
				if len(a.Raw) != 0 {
					t.Errorf("Raw = %v, want empty", a.Raw)
				}
			},
		},
		{
			name:    "only global flags starts the TUI",
			argv:    []string{"--api=http://y"},
			wantCmd: CmdTUI,
			check: func(t *testing.T, a Args) {
				if a.APIURL != "http://y" {
					t.Errorf("APIURL = %q", a.APIURL)
				}
			},
		},
		{
			name:    "unknown",
			argv:    []string{"histroy", "x"},
			wantCmd: CmdUnknown,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "histroy" {
					t.Errorf("Subcommand = %q, want histroy", a.Subcommand)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			if cmd != tt.wantCmd {
				t.Fatalf("ParseArgs(%v) = %v, want %v", tt.argv, cmd, tt.wantCmd)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestParse_UsesOSArgs(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	os.Args = []string{"rigchat", "--json", "whoami"}
	cmd, args := Parse()
	if cmd != CmdWhoami || !args.JSON {
		t.Errorf("Parse() = %v, %+v", cmd, args)
	}
}

func TestCommandString(t *testing.T) {
	if CmdHistory.String() != "history" {
		t.Errorf("CmdHistory.String() = %q", CmdHistory.String())
	}
	if Command(99).String() != "unknown" {
		t.Errorf("Command(99).String() = %q", Command(99).String())
	}
}

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"histroy", "history"},
		{"logn", "login"},
		{"whoam", "whoami"},
		{"his", "history"},
		{"", ""},
		{"xyzzyplugh", ""},
	}
	for _, tt := range tests {
		if got := SuggestCommand(tt.input); got != tt.want {
			t.Errorf("SuggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("limit", "x", "bad"), ExitUsageError},
		{"config", config.ValidateErrors{{Field: "api.base_url", Message: "required"}}, ExitConfigError},
		{"cancelled", ErrCancelled, ExitCancelled},
		{"context cancelled", fmt.Errorf("send: %w", context.Canceled), ExitCancelled},
		{"not signed in", ErrNotSignedIn, ExitAuthError},
		{"deadline", context.DeadlineExceeded, ExitTimeoutError},
		{"api timeout", &api.Error{Kind: api.KindNetwork, Timeout: true}, ExitTimeoutError},
		{"api not found", &api.Error{Kind: api.KindServer, Status: 404}, ExitNotFoundError},
		{"api auth", &api.Error{Kind: api.KindAuth, Status: 401}, ExitAuthError},
		{"api network", &api.Error{Kind: api.KindNetwork, Err: errors.New("refused")}, ExitNetworkError},
		{"api validation", &api.Error{Kind: api.KindValidation, Status: 422}, ExitUsageError},
		{"wrapped command error", NewCommandError("history", "load", "failed", &api.Error{Kind: api.KindAuth, Status: 401}), ExitAuthError},
		{"plain", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRequireConfirmation(t *testing.T) {
	ok, err := RequireConfirmation(true, "clear", false)
	if !ok || err != nil {
		t.Errorf("with --yes: got %v, %v", ok, err)
	}

	ok, err = RequireConfirmation(false, "clear", true)
	if ok || err == nil {
		t.Errorf("JSON mode without --yes must fail, got %v, %v", ok, err)
	}
}

func TestOutputJSON_RunsHandlerInTextMode(t *testing.T) {
	ran := false
	err := OutputJSON(false, "test", func() (any, error) {
		ran = true
		return nil, nil
	})
	if err != nil || !ran {
		t.Errorf("OutputJSON(false) ran=%v err=%v", ran, err)
	}

	want := errors.New("boom")
	if err := OutputJSON(false, "test", func() (any, error) { return nil, want }); !errors.Is(err, want) {
		t.Errorf("OutputJSON error = %v, want %v", err, want)
	}
}

// =============================================================================
// BENCHMARKS
// =============================================================================

func BenchmarkArgParser_Simple(b *testing.B) {
	args := []string{"history", "--limit", "20"}
	for i := 0; i < b.N; i++ {
		NewArgParser(args)
	}
}

func BenchmarkParseArgs(b *testing.B) {
	argv := []string{"--api", "http://localhost:8000", "--json", "docs", "--page", "2", "--per-page", "30"}
	for i := 0; i < b.N; i++ {
		ParseArgs(argv)
	}
}
