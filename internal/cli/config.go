// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - config.
//
// Command: config [show|path|init]
// Short:   Show, locate or create the config file
//
// Flags:
//   --force       config init overwrites an existing file
//   --json-file   config init writes config.json instead of config.toml

package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/rigchat/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	p := NewArgParser(args.Raw)
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args)
	case "path":
		return handleConfigPath(args)
	case "init":
		return handleConfigInit(args, p.BoolFlag("force"), p.BoolFlag("json-file"))
	default:
		return NewValidationErrorWithExample("config subcommand", args.Subcommand,
			"expected show, path or init", "rigchat config show")
	}
}

func handleConfigShow(args Args) error {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		return err
	}
	cfg = cfg.Redacted()
	return OutputJSON(args.JSON, "config show", func() (any, error) {
		if !args.JSON {
			printConfig(cfg, path)
		}
		return map[string]any{"path": path, "config": cfg}, nil
	})
}

func handleConfigPath(args Args) error {
	path := args.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ActivePath(); err != nil {
			return err
		}
	}
	_, statErr := os.Stat(path)
	data := ConfigPathData{Path: path, Exists: statErr == nil}
	return OutputJSON(args.JSON, "config path", func() (any, error) {
		if !args.JSON {
			fmt.Println(path)
		}
		return data, nil
	})
}

func handleConfigInit(args Args, force, asJSON bool) error {
	path := args.ConfigPath
	var err error
	if path == "" {
		if asJSON {
			path, err = config.ConfigPathJSON()
		} else {
			path, err = config.ConfigPathTOML()
		}
		if err != nil {
			return err
		}
	}
	if _, statErr := os.Stat(path); statErr == nil && !force {
		return NewCommandError("config", "init", "file exists, pass --force to overwrite", errors.New(path))
	}

	cfg := config.Default()
	if asJSON || strings.HasSuffix(path, ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return NewCommandError("config", "init", "could not write the file", err)
	}
	return OutputJSON(args.JSON, "config init", func() (any, error) {
		if !args.JSON {
			fmt.Printf("%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
		}
		return ConfigPathData{Path: path, Exists: true}, nil
	})
}

func printConfig(cfg *config.Config, path string) {
	b := strconv.FormatBool
	i := strconv.Itoa

	fmt.Println(TitleStyle.Render("rigchat configuration"))
	if path != "" {
		fmt.Println(DimStyle.Render(path))
	}

	fmt.Println(SectionStyle.Render("[api]"))
	fmt.Println(RenderField("base_url", cfg.API.BaseURL))
	fmt.Println(RenderField("timeout_secs", i(cfg.API.TimeoutSecs)))
	fmt.Println(RenderField("max_retries", i(cfg.API.MaxRetries)))
	fmt.Println(RenderField("rate_limit_rps", strconv.FormatFloat(cfg.API.RateLimitRPS, 'g', -1, 64)))
	fmt.Println(RenderField("rate_burst", i(cfg.API.RateBurst)))

	fmt.Println(SectionStyle.Render("[chat]"))
	fmt.Println(RenderField("history_limit", i(cfg.Chat.HistoryLimit)))

	s := cfg.Scroll
	fmt.Println(SectionStyle.Render("[scroll]"))
	fmt.Println(RenderField("smooth", b(s.Smooth)))
	fmt.Println(RenderField("threshold", i(s.Threshold)))
	fmt.Println(RenderField("first_debounce", i(s.FirstDebounceMs)+"ms"))
	fmt.Println(RenderField("reply_debounce", i(s.ReplyDebounceMs)+"ms"))
	fmt.Println(RenderField("block_release", i(s.BlockReleaseMs)+"ms"))
	fmt.Println(RenderField("user_idle", i(s.UserScrollIdleMs)+"ms"))
	fmt.Println(RenderField("narrow_width", i(s.NarrowWidth)))
	fmt.Println(RenderField("narrow_offsets", i(s.NarrowTopOffset)+" top, "+i(s.NarrowBottomOffset)+" bottom"))

	fmt.Println(SectionStyle.Render("[ui]"))
	fmt.Println(RenderField("mouse", b(cfg.UI.Mouse)))
	fmt.Println(RenderField("alt_screen", b(cfg.UI.AltScreen)))
	fmt.Println(RenderField("word_wrap", i(cfg.UI.WordWrap)))

	fmt.Println(SectionStyle.Render("[storage]"))
	fmt.Println(RenderField("path", cfg.Storage.Path))

	fmt.Println(SectionStyle.Render("[logging]"))
	fmt.Println(RenderField("enabled", b(cfg.Logging.Enabled)))
	fmt.Println(RenderField("file", cfg.Logging.File))
}
