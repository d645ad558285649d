// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// account.go - login, logout and whoami.
//
// Command: login
// Short:   Sign in and store the session
//
// Flags:
//   --email ADDRESS     Email (prompted when absent)
//   --password-stdin    Read the password from stdin
//
// Command: logout
// Short:   Sign out; the local session is forgotten even if the server fails
//
// Command: whoami
// Short:   Show the signed-in user, refreshed from the server
//   --offline           Show the stored user without calling the server

package cli

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/rigchat/internal/api"
)

// HandleLogin signs in with email and password and persists the session.
func HandleLogin(args Args) error {
	p := NewArgParser(args.Raw)
	ctx, stop := commandContext()
	defer stop()

	app, err := Bootstrap(ctx, args, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	email := strings.TrimSpace(p.Flag("email"))
	if email == "" {
		if err := RequiresTTY("prompt for the email"); err != nil {
			return ErrMissingArgument("email", "rigchat login --email you@example.com")
		}
		if email, err = PromptLine("Email: "); err != nil {
			return err
		}
	}
	if email == "" {
		return ErrMissingArgument("email", "rigchat login --email you@example.com")
	}

	var password string
	if p.BoolFlag("password-stdin") || !IsTTY() {
		password, err = ReadPassword("")
	} else {
		password, err = ReadPassword("Password: ")
	}
	if err != nil {
		return err
	}
	if password == "" {
		return NewValidationError("password", "", "must not be empty")
	}

	user, err := app.Client.Login(ctx, email, password)
	if err != nil {
		kind := api.ClassifyAuth(err)
		log.Printf("LOGIN_FAILED | kind=%s", kind)
		return NewCommandError("login", "sign in", kind.Message(), err)
	}
	if err := app.Session.Init(ctx, user); err != nil {
		return NewCommandError("login", "store session", "could not save the session", err)
	}

	return OutputJSON(args.JSON, "login", func() (any, error) {
		data := newUserData(app.Session.User(), app.Client.BaseURL())
		if !args.JSON {
			fmt.Printf("%s Signed in as %s\n", SuccessStyle.Render("[OK]"), user.DisplayName())
		}
		return data, nil
	})
}

// HandleLogout ends the remote session and always resets the local one.
func HandleLogout(args Args) error {
	ctx, stop := commandContext()
	defer stop()

	app, err := Bootstrap(ctx, args, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.Session.Authenticated() {
		if !args.JSON {
			fmt.Println(DimStyle.Render("Not signed in."))
		}
		return OutputJSON(args.JSON, "logout", func() (any, error) { return map[string]bool{"signed_out": true}, nil })
	}

	remoteErr := app.Client.Logout(ctx)
	if remoteErr != nil {
		log.Printf("LOGOUT_REMOTE_FAILED | error=%v", remoteErr)
	}
	if err := app.Session.Reset(ctx); err != nil {
		return NewCommandError("logout", "reset session", "could not clear the stored session", err)
	}

	return OutputJSON(args.JSON, "logout", func() (any, error) {
		if !args.JSON {
			if remoteErr != nil {
				fmt.Printf("%s Signed out locally (server: %v)\n", WarningStyle.Render("[WARN]"), remoteErr)
			} else {
				fmt.Printf("%s Signed out\n", SuccessStyle.Render("[OK]"))
			}
		}
		return map[string]any{"signed_out": true, "remote": remoteErr == nil}, nil
	})
}

// HandleWhoami prints the signed-in user.
func HandleWhoami(args Args) error {
	p := NewArgParser(args.Raw)
	ctx, stop := commandContext()
	defer stop()

	app, err := Bootstrap(ctx, args, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.RequireSession(); err != nil {
		return err
	}

	user := app.Session.User()
	if !p.BoolFlag("offline") {
		profile, err := app.Client.CurrentUser(ctx)
		switch {
		case err == nil:
			user.Profile = *profile
			if err := app.Session.Set(ctx, user); err != nil {
				log.Printf("SESSION_SAVE_FAILED | error=%v", err)
			}
		case errors.Is(err, api.ErrUnauthorized):
			return ErrNotSignedIn
		default:
			log.Printf("WHOAMI_REFRESH_FAILED | error=%v", err)
		}
	}

	return OutputJSON(args.JSON, "whoami", func() (any, error) {
		data := newUserData(user, app.Client.BaseURL())
		if !args.JSON {
			fmt.Println(TitleStyle.Render("rigchat session"))
			if data.Name != "" {
				fmt.Println(RenderField("Name", data.Name))
			}
			fmt.Println(RenderField("Email", data.Email))
			if data.ID != 0 {
				fmt.Println(RenderField("User ID", fmt.Sprint(data.ID)))
			}
			fmt.Println(RenderField("Server", data.APIURL))
		}
		return data, nil
	})
}
