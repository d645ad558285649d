// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jeranaias/rigchat/internal/api"
)

// Notice titles per use case.
const (
	TitleSend    = "Message send error"
	TitleClear   = "History clear error"
	TitleHistory = "History load error"
)

// DefaultNoticeLife is how long a notice stays visible.
const DefaultNoticeLife = 5 * time.Second

// Severity of a notice.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notice is a transient user-facing notification.
type Notice struct {
	Title    string
	Detail   string
	Severity Severity
	Life     time.Duration
}

// ErrorSink displays notices.
type ErrorSink interface {
	Notify(Notice)
}

// SinkFunc adapts a function to ErrorSink.
type SinkFunc func(Notice)

// Notify implements ErrorSink.
func (f SinkFunc) Notify(n Notice) { f(n) }

// statusMessages are the fallbacks when the server sent no message.
var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request. Check the message data.",
	http.StatusUnauthorized:        "Authorization required. Please sign in.",
	http.StatusForbidden:           "No access to the requested documents.",
	http.StatusNotFound:            "Resource not found.",
	http.StatusUnprocessableEntity: "Data validation error.",
	http.StatusTooManyRequests:     "Too many requests. Try again later.",
	http.StatusInternalServerError: "Server error. Try again later.",
	http.StatusBadGateway:          "Server temporarily unavailable.",
	http.StatusServiceUnavailable:  "Service temporarily unavailable.",
}

// Fallback texts of Describe.
const (
	MessageServerGeneric = "An error occurred on the server."
	MessageNetwork       = "Connection problem. Check your network."
	MessageTimeout       = "The server took too long to respond."
	MessageUnknown       = "An unknown error occurred."
)

// Describe returns the display text for err. The server-provided message
// wins, then the status table, then the transport class.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	if status := api.StatusOf(err); status != 0 {
		if msg, ok := statusMessages[status]; ok {
			return msg
		}
		return MessageServerGeneric
	}

	timeout := errors.Is(err, api.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
	if api.KindOf(err) == api.KindNetwork && !timeout {
		return MessageNetwork
	}
	if timeout {
		return MessageTimeout
	}
	return MessageUnknown
}

// NewErrorNotice builds the notice reported for err under title.
func NewErrorNotice(title string, err error) Notice {
	return Notice{
		Title:    title,
		Detail:   Describe(err),
		Severity: SeverityError,
		Life:     DefaultNoticeLife,
	}
}
