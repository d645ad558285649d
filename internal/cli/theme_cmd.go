// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// theme_cmd.go - theme.
//
// Command: theme [dark|light|toggle|mode M|density D|radius R]
// Short:   Show or change the appearance preference
//
// The preference is stored on the device and picked up by the TUI on its
// next start.

package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jeranaias/rigchat/internal/theme"
)

// HandleTheme shows or changes the theme preference.
func HandleTheme(args Args) error {
	p := NewArgParser(args.Raw)
	ctx, stop := commandContext()
	defer stop()

	app, err := Bootstrap(ctx, args, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	themes := app.Themes
	value := strings.ToLower(p.Positional(1))
	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "show":
	case "dark":
		err = themes.SetDark(ctx, true)
	case "light":
		err = themes.SetDark(ctx, false)
	case "toggle":
		err = themes.ToggleDark(ctx)
	case "mode":
		if value != string(theme.ModeTailwind) && value != string(theme.ModeCSS) {
			return NewValidationErrorWithExample("mode", value, "must be tailwind or css", "rigchat theme mode css")
		}
		err = themes.SetMode(ctx, value)
	case "density":
		if !slices.Contains(theme.Densities, value) {
			return NewValidationErrorWithExample("density", value,
				"must be one of "+strings.Join(theme.Densities, ", "), "rigchat theme density sm")
		}
		err = themes.SetDensity(ctx, value)
	case "radius":
		if !slices.Contains(theme.Radii, value) {
			return NewValidationErrorWithExample("radius", value,
				"must be one of "+strings.Join(theme.Radii, ", "), "rigchat theme radius none")
		}
		err = themes.SetRadius(ctx, value)
	default:
		return NewValidationErrorWithExample("theme subcommand", sub,
			"expected show, dark, light, toggle, mode, density or radius", "rigchat theme dark")
	}
	if err != nil {
		return NewCommandError("theme", "save", "could not store the preference", err)
	}

	return OutputJSON(args.JSON, "theme", func() (any, error) {
		pref := themes.Preference()
		if !args.JSON {
			printPreference(pref)
		}
		return ThemeData{Preference: pref}, nil
	})
}

func printPreference(pref theme.Preference) {
	shade := "light"
	if pref.Dark {
		shade = "dark"
	}
	fmt.Println(TitleStyle.Render("Theme"))
	fmt.Println(RenderField("Mode", string(pref.Mode)))
	fmt.Println(RenderField("Shade", shade))
	fmt.Println(RenderField("Density", pref.Density))
	fmt.Println(RenderField("Radius", pref.Radius))
}
