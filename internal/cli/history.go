// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - history, clear and docs.
//
// Command: history
// Short:   Print the chat history in display order
//
// Flags:
//   --limit N     Page size (default chat.history_limit)
//   --plain       Print text only, without bubbles
//   --export PATH Write the history to PATH (.md or .json) instead
//
// Command: clear
// Short:   Clear the chat history on the server
//   --yes, -y     Do not ask for confirmation
//
// Command: docs
// Short:   List documents available for attachment
//   --page N      Page to show (default 1)
//   --per-page N  Page size (default 15)

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/ui/components"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// HandleHistory prints the chat history.
func HandleHistory(args Args) error {
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

	limit := app.Config.Chat.HistoryLimit
	if p.HasFlag("limit") {
		if limit, err = ParseIntWithValidation(p.Flag("limit"), "limit"); err != nil {
			return err
		}
	}
	orch := chat.New(app.Store, app.Client, nil, chat.WithHistoryLimit(limit))
	if err := orch.LoadHistory(ctx); err != nil {
		return NewCommandError("history", "load", chat.Describe(err), err)
	}

	sorted := app.Store.Sorted()
	if path := p.Flag("export"); path != "" {
		return exportHistory(args, app, path, sorted)
	}
	return OutputJSON(args.JSON, "history", func() (any, error) {
		data := HistoryData{Count: len(sorted), Messages: make([]MessageData, 0, len(sorted))}
		for _, m := range sorted {
			data.Messages = append(data.Messages, newMessageData(m))
		}
		if !args.JSON {
			if len(sorted) == 0 {
				fmt.Println(DimStyle.Render("No messages yet."))
			}
			tr := newTranscript(os.Stdout, app, p.BoolFlag("plain"))
			tr.PrintAll(sorted)
		}
		return data, nil
	})
}

// exportHistory writes sorted to path in the format its extension names.
func exportHistory(args Args, app *App, path string, sorted []model.Message) error {
	exp, err := export.ForPath(path, export.DefaultOptions())
	if err != nil {
		return NewValidationErrorWithExample("export", path, err.Error(), "rigchat history --export chat.md")
	}
	if err := export.WriteFile(path, newExportTranscript(app, sorted), exp); err != nil {
		return NewCommandError("history", "export", "could not write the export", err)
	}
	return OutputJSON(args.JSON, "history", func() (any, error) {
		if !args.JSON {
			fmt.Printf("%s Exported %d messages to %s\n", SuccessStyle.Render("[OK]"), len(sorted), path)
		}
		return ConfigPathData{Path: path, Exists: true}, nil
	})
}

func newExportTranscript(app *App, sorted []model.Message) *export.Transcript {
	tr := &export.Transcript{
		Title:    "rigchat history",
		Server:   app.Client.BaseURL(),
		Messages: sorted,
	}
	if u := app.Session.User(); u != nil {
		tr.Account = u.Profile.Email
	}
	return tr
}

// HandleClear clears the chat history after confirmation.
func HandleClear(args Args) error {
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

	ok, err := RequireConfirmation(p.BoolFlag("yes", "y"), "clear the whole chat history", args.JSON)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}

	if err := app.Orchestrator.ClearHistory(ctx); err != nil {
		return NewCommandError("clear", "clear history", chat.Describe(err), err)
	}
	return OutputJSON(args.JSON, "clear", func() (any, error) {
		if !args.JSON {
			fmt.Printf("%s History cleared\n", SuccessStyle.Render("[OK]"))
		}
		return map[string]bool{"cleared": true}, nil
	})
}

// HandleDocs lists a page of documents.
func HandleDocs(args Args) error {
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

	params := api.DocumentParams{
		Page:    p.FlagIntOrDefault("page", 1),
		PerPage: p.FlagIntOrDefault("per-page", api.DefaultDocumentsPerPage),
	}
	page, err := app.Client.Documents(ctx, params)
	if err != nil {
		return NewCommandError("docs", "list", chat.Describe(err), err)
	}

	return OutputJSON(args.JSON, "docs", func() (any, error) {
		if !args.JSON {
			printDocuments(os.Stdout, page)
		}
		return DocsData{
			Page:      page.CurrentPage,
			LastPage:  page.LastPage,
			Total:     page.Total,
			Documents: page.Documents,
		}, nil
	})
}

func printDocuments(w io.Writer, page *api.DocumentPage) {
	if len(page.Documents) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No documents."))
		return
	}
	width := GetTerminalWidth() - 10
	for _, d := range page.Documents {
		id := util.PadRight(util.Int64ToString(d.ID), 6)
		fmt.Fprintf(w, "%s  %s\n", InfoStyle.Render(id), util.TruncateWidth(d.DisplayLabel(), width))
	}
	if page.LastPage > 1 {
		fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("page %d of %d, %d documents", page.CurrentPage, page.LastPage, page.Total)))
	}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// transcript prints messages with the same bubbles the TUI draws, or as
// plain labelled text.
type transcript struct {
	w        io.Writer
	plain    bool
	renderer *components.MessageRenderer
}

func newTranscript(w io.Writer, app *App, plain bool) *transcript {
	th := styles.NewThemeWithProfile(app.Themes.Preference(), GetColorProfile())
	r := components.NewMessageRenderer(th)
	width := GetTerminalWidth()
	if app.Config.UI.WordWrap > 0 && app.Config.UI.WordWrap < width {
		width = app.Config.UI.WordWrap
	}
	r.SetWidth(width)
	return &transcript{w: w, plain: plain || !IsStdoutTTY(), renderer: r}
}

// Print writes one message.
func (t *transcript) Print(m model.Message) {
	if !t.plain {
		fmt.Fprintln(t.w, t.renderer.Render(m))
		fmt.Fprintln(t.w)
		return
	}
	label := BotStyle.Render("bot")
	if m.IsUser() {
		label = UserStyle.Render("you")
	}
	header := label
	if !m.CreatedAt.IsZero() {
		header += " " + DimStyle.Render(m.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if m.Status == model.StatusError {
		header += " " + ErrorStyle.Render("[error]")
	}
	fmt.Fprintln(t.w, header)
	fmt.Fprintln(t.w, m.Text)
	if m.HasDocuments() {
		docs := make([]string, len(m.Documents))
		for i, d := range m.Documents {
			docs[i] = string(d)
		}
		fmt.Fprintln(t.w, DimStyle.Render("documents: "+strings.Join(docs, ", ")))
	}
	fmt.Fprintln(t.w)
}

// PrintAll writes messages in order.
func (t *transcript) PrintAll(list []model.Message) {
	for _, m := range list {
		t.Print(m)
	}
}
