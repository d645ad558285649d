// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for the CLI commands.
//
// Handlers return errors and never print them; Exit prints once and picks
// the exit code.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
	ExitCancelled     = 130
)

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = errors.New("not signed in; run 'rigchat login' first")

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled")

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError wraps err with the failing command and action.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError reports invalid input.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewValidationErrorWithExample reports invalid input with a usage example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError prints err to stderr, or as a JSON error response on stdout.
func DisplayError(command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(command, err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(os.Stderr, DimStyle.Render(hint))
	}
}

// DisplayErrorJSON prints err as a JSON error response.
func DisplayErrorJSON(command string, err error) {
	out := map[string]any{
		"success": false,
		"command": command,
		"error":   err.Error(),
	}

	var ve *ValidationError
	var ae *api.Error
	switch {
	case errors.As(err, &ve):
		out["error_type"] = "validation_error"
		out["field"] = ve.Field
		if ve.Example != "" {
			out["example"] = ve.Example
		}
	case errors.As(err, &ae):
		out["error_type"] = "api_error"
		out["kind"] = string(api.KindOf(err))
		if ae.Status != 0 {
			out["status"] = ae.Status
		}
	case errors.Is(err, ErrNotSignedIn):
		out["error_type"] = "auth_error"
	default:
		out["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(out)
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, ErrNotSignedIn):
		return ""
	case errors.Is(err, api.ErrUnauthorized):
		return "Your session has ended. Run 'rigchat login'."
	case api.KindOf(err) == api.KindNetwork:
		return "Check api.base_url or pass --api URL."
	}
	return ""
}

// Exit displays err and exits with the matching code. A nil err is a no-op.
func Exit(command string, args Args, err error) {
	if err == nil {
		return
	}
	DisplayError(command, err, args.JSON)
	os.Exit(GetExitCode(err))
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	var configErr config.ValidateErrors
	switch {
	case errors.As(err, &validationErr):
		return ExitUsageError
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, ErrNotSignedIn):
		return ExitAuthError
	case errors.Is(err, api.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.Is(err, api.ErrNotFound):
		return ExitNotFoundError
	}

	switch api.KindOf(err) {
	case api.KindAuth:
		return ExitAuthError
	case api.KindNetwork:
		return ExitNetworkError
	case api.KindValidation:
		return ExitUsageError
	}
	return ExitGeneralError
}
