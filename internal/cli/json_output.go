// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripting.
//
// With --json every command prints one JSONResponse on stdout; human-readable
// messages go to stderr.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/theme"
)

// JSONResponse is the envelope of every JSON command result.
type JSONResponse struct {
	Success   bool    `json:"success"`
	Data      any     `json:"data"`
	Error     *string `json:"error"`
	Timestamp string  `json:"timestamp"`
	Command   string  `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to stdout.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the indented JSON form.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// OutputJSON runs handler and, in JSON mode, prints its result as a response.
// Errors are returned and never printed here.
func OutputJSON(jsonMode bool, command string, handler func() (any, error)) error {
	data, err := handler()
	if err != nil || !jsonMode {
		return err
	}
	return NewJSONResponse(command, data).Print()
}

// StderrPrint prints to stderr.
func StderrPrint(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// VersionData is the result of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// UserData describes the signed-in user.
type UserData struct {
	SignedIn bool   `json:"signed_in"`
	ID       int64  `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	APIURL   string `json:"api_url"`
}

// MessageData is one history entry.
type MessageData struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Status    string   `json:"status,omitempty"`
	Text      string   `json:"message"`
	Documents []string `json:"context_documents"`
	CreatedAt string   `json:"created_at,omitempty"`
	ParentID  string   `json:"parent_id,omitempty"`
}

// HistoryData is the result of the history command.
type HistoryData struct {
	Count    int           `json:"count"`
	Messages []MessageData `json:"messages"`
}

// DocsData is the result of the docs command.
type DocsData struct {
	Page      int              `json:"page"`
	LastPage  int              `json:"last_page"`
	Total     int              `json:"total"`
	Documents []model.Document `json:"documents"`
}

// ConfigPathData is the result of config path and config init.
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// ThemeData is the result of the theme command.
type ThemeData struct {
	theme.Preference
}

func newUserData(u *model.User, apiURL string) UserData {
	if !u.Authenticated() {
		return UserData{APIURL: apiURL}
	}
	return UserData{
		SignedIn: true,
		ID:       u.Profile.ID,
		Email:    u.Profile.Email,
		Name:     u.Profile.Name,
		APIURL:   apiURL,
	}
}

func newMessageData(m model.Message) MessageData {
	d := MessageData{
		ID:        m.ID.String(),
		Type:      string(m.Type),
		Status:    string(m.Status),
		Text:      m.Text,
		Documents: make([]string, 0, len(m.Documents)),
	}
	for _, doc := range m.Documents {
		d.Documents = append(d.Documents, string(doc))
	}
	if !m.CreatedAt.IsZero() {
		d.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
	}
	if parent, ok := model.ParentOf(m); ok {
		d.ParentID = parent.String()
	}
	return d
}
