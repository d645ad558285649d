// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat for rigchat.
//
// Command: chat
// Short:   Chat without the TUI, with line editing and input history
//
// Flags:
//   --last N        Messages of history shown on start (default 10)
//
// Interactive Commands (during chat):
//   /docs               List documents with their ids
//   /attach ID[,ID]     Attach documents to the next message
//   /detach             Drop the attachments
//   /history            Print the whole conversation
//   /export PATH        Write the conversation to PATH (.md or .json)
//   /refresh            Reload history from the server
//   /clear              Clear the history (asks first)
//   /help, /h           Show available commands
//   /quit, /q           Exit
//   Ctrl+C              Cancel the pending reply; at the prompt, exit
//   Ctrl+D              Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/util"
)

// HistoryFileName is the input history file in the config directory.
const HistoryFileName = "chat_history"

// slashCommands are completed on Tab.
var slashCommands = []string{"/attach", "/clear", "/detach", "/docs", "/export", "/help", "/history", "/quit", "/refresh"}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides line editing and persistent input history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		if !strings.HasPrefix(input, "/") {
			return nil
		}
		var out []string
		for _, c := range slashCommands {
			if strings.HasPrefix(c, input) {
				out = append(out, c)
			}
		}
		return out
	})

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(dir, HistoryFileName)}
	c.LoadHistory()
	return c
}

// LoadHistory reads the input history file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line. Non-empty lines are added to the history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Confirm asks a yes/no question on the edited line.
func (c *ChatCLI) Confirm(question string) bool {
	answer, err := c.line.Prompt(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// SaveHistory writes the input history with 0600 permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves the history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state of one line-mode chat.
type ChatSession struct {
	App      *App
	Input    *ChatCLI
	Out      *transcript
	Attached []model.Document

	// docs caches the last document listing by id.
	docs map[int64]model.Document

	mu     sync.Mutex
	cancel context.CancelFunc
}

// setCancel records the cancel function of the pending request.
func (s *ChatSession) setCancel(cancel context.CancelFunc) {
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
}

// interrupt cancels the pending request. It reports whether one was pending.
func (s *ChatSession) interrupt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	return true
}

// =============================================================================
// COMMAND
// =============================================================================

// HandleChat runs the line-mode chat until /quit, Ctrl+D or Ctrl+C at the
// prompt.
func HandleChat(args Args) error {
	p := NewArgParser(args.Raw)
	ctx := context.Background()

	notices := chat.SinkFunc(func(n chat.Notice) {
		fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("["+n.Title+"]"), n.Detail)
	})
	app, err := Bootstrap(ctx, args, notices)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.RequireSession(); err != nil {
		return err
	}
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	s := &ChatSession{
		App:  app,
		Out:  newTranscript(os.Stdout, app, false),
		docs: map[int64]model.Document{},
	}

	printWelcome(app)
	if err := app.Orchestrator.LoadHistory(ctx); err == nil {
		sorted := app.Store.Sorted()
		last := p.FlagIntOrDefault("last", 10)
		if last >= 0 && len(sorted) > last {
			sorted = sorted[len(sorted)-last:]
		}
		s.Out.PrintAll(sorted)
	}

	s.Input = NewChatCLI()
	defer s.Input.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if s.interrupt() {
				fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		input, err := s.Input.ReadInput(PromptStyle.Render(promptText(s)))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or a closed stdin all end the chat.
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			more, err := handleSlashCommand(ctx, s, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !more {
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		sendMessage(ctx, s, input)
		if !app.Session.Authenticated() {
			return ErrNotSignedIn
		}
	}
}

func promptText(s *ChatSession) string {
	if n := len(s.Attached); n > 0 {
		return fmt.Sprintf("you [%d doc] > ", n)
	}
	return "you > "
}

// sendMessage sends text with the attached documents and prints the reply.
// Failures are already reported through the orchestrator's notices.
func sendMessage(parent context.Context, s *ChatSession, text string) {
	text = util.NormalizeInput(text)
	if text == "" && len(s.Attached) == 0 {
		return
	}
	draft := model.Draft{Text: text, Documents: s.Attached}

	ctx, cancel := context.WithCancel(parent)
	s.setCancel(cancel)
	defer func() {
		s.setCancel(nil)
		cancel()
	}()

	fmt.Println(DimStyle.Render("..."))
	result, err := s.App.Orchestrator.SendMessage(ctx, draft)
	if err != nil {
		log.Printf("CHAT_SEND_FAILED | error=%v", err)
		return
	}
	s.Attached = nil
	s.Out.Print(*result.BotResponse)

	if _, err := s.App.Orchestrator.RefreshIfStale(parent); err != nil {
		log.Printf("CHAT_REFRESH_FAILED | error=%v", err)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs one slash command. It returns false to end the chat.
func handleSlashCommand(ctx context.Context, s *ChatSession, input string) (bool, error) {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	rest := strings.Join(parts[1:], " ")

	switch command {
	case "/help", "/h", "/?", "/":
		printChatHelp()
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/docs", "/d":
		return true, listDocuments(ctx, s)

	case "/attach", "/a":
		return true, attachDocuments(ctx, s, rest)

	case "/detach":
		s.Attached = nil
		fmt.Println(DimStyle.Render("[Attachments dropped]"))
		return true, nil

	case "/history":
		s.Out.PrintAll(s.App.Store.Sorted())
		return true, nil

	case "/export":
		if rest == "" {
			return true, ErrMissingArgument("path", "/export chat.md")
		}
		exp, err := export.ForPath(rest, export.DefaultOptions())
		if err != nil {
			return true, err
		}
		sorted := s.App.Store.Sorted()
		if err := export.WriteFile(rest, newExportTranscript(s.App, sorted), exp); err != nil {
			return true, err
		}
		fmt.Println(DimStyle.Render(fmt.Sprintf("[Exported %d messages to %s]", len(sorted), rest)))
		return true, nil

	case "/refresh", "/r":
		if err := s.App.Orchestrator.RefreshMessages(ctx); err != nil {
			return true, nil
		}
		fmt.Println(DimStyle.Render(fmt.Sprintf("[%d messages]", len(s.App.Store.Messages()))))
		return true, nil

	case "/clear", "/c":
		if !s.Input.Confirm("Clear the whole history?") {
			return true, nil
		}
		if err := s.App.Orchestrator.ClearHistory(ctx); err != nil {
			return true, nil
		}
		fmt.Println(SuccessStyle.Render("[History cleared]"))
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

func listDocuments(ctx context.Context, s *ChatSession) error {
	page, err := s.App.Client.Documents(ctx, api.DocumentParams{Page: 1, PerPage: 100})
	if err != nil {
		return errors.New(chat.Describe(err))
	}
	for _, d := range page.Documents {
		s.docs[d.ID] = d
	}
	printDocuments(os.Stdout, page)
	return nil
}

func attachDocuments(ctx context.Context, s *ChatSession, list string) error {
	ids, err := ParseIDList(list)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrMissingArgument("document id", "/attach 3,7")
	}

	for _, id := range ids {
		if _, ok := s.docs[id]; !ok {
			if err := listDocumentsQuiet(ctx, s); err != nil {
				return err
			}
			break
		}
	}

	for _, id := range ids {
		d, ok := s.docs[id]
		if !ok {
			return NewValidationError("document id", util.Int64ToString(id), "no such document (see /docs)")
		}
		if !containsDocument(s.Attached, id) {
			s.Attached = append(s.Attached, d)
		}
	}
	labels := make([]string, len(s.Attached))
	for i, d := range s.Attached {
		labels[i] = d.DisplayLabel()
	}
	fmt.Println(DimStyle.Render("[Attached: " + strings.Join(labels, ", ") + "]"))
	return nil
}

func listDocumentsQuiet(ctx context.Context, s *ChatSession) error {
	page, err := s.App.Client.Documents(ctx, api.DocumentParams{Page: 1, PerPage: 100})
	if err != nil {
		return errors.New(chat.Describe(err))
	}
	for _, d := range page.Documents {
		s.docs[d.ID] = d
	}
	return nil
}

func containsDocument(list []model.Document, id int64) bool {
	for _, d := range list {
		if d.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// OUTPUT
// =============================================================================

func printWelcome(app *App) {
	fmt.Println()
	fmt.Println(TitleStyle.Render("rigchat"))
	fmt.Println(RenderSeparator(30))
	fmt.Println(RenderField("Signed in as", app.Session.User().DisplayName()))
	fmt.Println(RenderField("Server", app.Client.BaseURL()))
	fmt.Println()
	fmt.Println(DimStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

func printChatHelp() {
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/docs", "List documents with their ids"},
		{"/attach ID[,ID]", "Attach documents to the next message"},
		{"/detach", "Drop the attachments"},
		{"/history", "Print the whole conversation"},
		{"/export PATH", "Write the conversation to .md or .json"},
		{"/refresh", "Reload history from the server"},
		{"/clear", "Clear the history"},
		{"/help, /h", "Show this help"},
		{"/quit, /q", "Exit"},
	}

	fmt.Println()
	fmt.Println(SectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Printf("  %s  %s\n", InfoStyle.Render(fmt.Sprintf("%-16s", c.cmd)), DimStyle.Render(c.desc))
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Ctrl+C cancels a pending reply, Ctrl+D exits"))
	fmt.Println()
}
