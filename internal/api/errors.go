// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Error variables for common API failures. An *Error matches these with
// errors.Is according to its status and kind.
var (
	// ErrUnauthorized indicates a missing or rejected bearer credential (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the credential lacks access (403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the resource does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates too many requests were made (429).
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation indicates the server rejected the request body (400, 422).
	ErrValidation = errors.New("validation failed")

	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("server error")

	// ErrNetwork indicates the request never produced a response.
	ErrNetwork = errors.New("network error")

	// ErrTimeout indicates the request ran out of time.
	ErrTimeout = errors.New("request timeout")
)

// Kind is the error taxonomy shared by every API operation.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindServer     Kind = "server"
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindUnknown    Kind = "unknown"
)

// Error is a failed API call.
type Error struct {
	// Op is the operation name, e.g. "chat.send".
	Op string

	Kind   Kind
	Status int

	// Code and Message are taken from the response body when present.
	// Message is suitable for display.
	Code    string
	Message string

	// Fields holds per-field validation messages.
	Fields map[string][]string

	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Status != 0 && e.Message != "":
		fmt.Fprintf(&b, "HTTP %d: %s", e.Status, e.Message)
	case e.Status != 0:
		fmt.Fprintf(&b, "HTTP %d", e.Status)
	case e.Timeout:
		b.WriteString("timeout")
		if e.Err != nil {
			fmt.Fprintf(&b, ": %v", e.Err)
		}
	case e.Err != nil:
		fmt.Fprintf(&b, "%s error: %v", e.Kind, e.Err)
	default:
		b.WriteString(string(e.Kind))
	}
	return b.String()
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrServer:
		return e.Kind == KindServer
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrTimeout:
		return e.Timeout
	}
	return false
}

// KindOf returns the taxonomy kind of err.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	if isTimeout(err) {
		return KindNetwork
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ServerMessage returns the display message provided by the server, if any.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// kindForStatus maps an HTTP status to the taxonomy.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindValidation
	default:
		return KindUnknown
	}
}

// errorBody is the error payload of the chat API.
type errorBody struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   json.RawMessage `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// handleErrorResponse converts an HTTP error response to an *Error.
func handleErrorResponse(op string, status int, body []byte) error {
	apiErr := &Error{
		Op:     op,
		Kind:   kindForStatus(status),
		Status: status,
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Message = strings.TrimSpace(eb.Message)
		apiErr.Code = eb.Code
		if len(eb.Errors) > 0 {
			var fields map[string][]string
			if json.Unmarshal(eb.Errors, &fields) == nil {
				apiErr.Fields = fields
			}
		}
		if len(eb.Error) > 0 {
			var s string
			var obj struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			switch {
			case json.Unmarshal(eb.Error, &s) == nil:
				if apiErr.Message == "" {
					apiErr.Message = strings.TrimSpace(s)
				}
			case json.Unmarshal(eb.Error, &obj) == nil:
				if apiErr.Message == "" {
					apiErr.Message = strings.TrimSpace(obj.Message)
				}
				if apiErr.Code == "" {
					apiErr.Code = obj.Code
				}
			}
		}
	}

	return apiErr
}

// transportError wraps a failure that produced no response.
func transportError(op string, err error) error {
	return &Error{
		Op:      op,
		Kind:    KindNetwork,
		Timeout: isTimeout(err),
		Err:     err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isRetryable reports whether a GET should be attempted again after err.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch {
	case apiErr.Status == http.StatusTooManyRequests:
		return true
	case apiErr.Status >= 500 && apiErr.Status < 600:
		return true
	case apiErr.Status == 0 && apiErr.Kind == KindNetwork && !apiErr.Timeout:
		return true
	}
	return false
}

// =============================================================================
// AUTH ERROR CLASSIFICATION
// =============================================================================

// AuthKind classifies failures of the login flow.
type AuthKind string

const (
	AuthInvalidCredentials AuthKind = "invalid_credentials"
	AuthNetwork            AuthKind = "network_error"
	AuthServer             AuthKind = "server_error"
	AuthValidation         AuthKind = "validation_error"
	AuthTokenExpired       AuthKind = "token_expired"
	AuthUnauthorized       AuthKind = "unauthorized"
	AuthForbidden          AuthKind = "forbidden"
	AuthUnknown            AuthKind = "unknown"
)

var authMessages = map[AuthKind]string{
	AuthInvalidCredentials: "Invalid email or password.",
	AuthNetwork:            "Network error. Check your connection.",
	AuthServer:             "Server error. Try again later.",
	AuthValidation:         "Check the entered data.",
	AuthTokenExpired:       "Session expired. Sign in again.",
	AuthUnauthorized:       "Sign in required.",
	AuthForbidden:          "Insufficient permissions.",
	AuthUnknown:            "An unknown error occurred.",
}

var authSuggestions = map[AuthKind]string{
	AuthInvalidCredentials: "Check your email and password.",
	AuthNetwork:            "Check your connection and try again.",
	AuthServer:             "Retry in a moment.",
	AuthValidation:         "Make sure every field is filled in correctly.",
	AuthTokenExpired:       "Sign in again.",
	AuthUnauthorized:       "Sign in to use this feature.",
	AuthForbidden:          "Ask an administrator for access.",
}

// ClassifyAuth maps a login flow error to an AuthKind. Status codes are
// checked first, then the error text.
func ClassifyAuth(err error) AuthKind {
	if err == nil {
		return AuthUnknown
	}
	switch StatusOf(err) {
	case http.StatusUnauthorized:
		return AuthUnauthorized
	case http.StatusForbidden:
		return AuthForbidden
	case http.StatusUnprocessableEntity:
		return AuthValidation
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return AuthServer
	}

	if KindOf(err) == KindNetwork {
		return AuthNetwork
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "network") || strings.Contains(msg, "fetch"):
		return AuthNetwork
	case strings.Contains(msg, "credentials") || strings.Contains(msg, "password"):
		return AuthInvalidCredentials
	case strings.Contains(msg, "token") || strings.Contains(msg, "expired"):
		return AuthTokenExpired
	}
	return AuthUnknown
}

// Message returns the display text for k.
func (k AuthKind) Message() string {
	if msg, ok := authMessages[k]; ok {
		return msg
	}
	return authMessages[AuthUnknown]
}

// Suggestion returns a recovery hint for k.
func (k AuthKind) Suggestion() string {
	if s, ok := authSuggestions[k]; ok {
		return s
	}
	return "Retry, or contact support if the problem persists."
}

// Retryable reports whether retrying the login may succeed.
func (k AuthKind) Retryable() bool {
	return k == AuthNetwork || k == AuthServer
}

// DescribeAuth returns the display text for a login error: the server
// message when present, otherwise the text of its AuthKind.
func DescribeAuth(err error) string {
	if msg := ServerMessage(err); msg != "" {
		return msg
	}
	return ClassifyAuth(err).Message()
}
