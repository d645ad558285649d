// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/store"
)

// ErrIncompleteResponse indicates a send answer without the user message or
// the bot response.
var ErrIncompleteResponse = errors.New("send response is missing user_message or bot_response")

// API is the subset of the chat API used by the orchestrator.
// *api.Client satisfies it.
type API interface {
	History(ctx context.Context, params api.HistoryParams) (*api.History, error)
	Send(ctx context.Context, req api.SendRequest) (*api.SendResult, error)
	Clear(ctx context.Context) error
}

// Orchestrator drives the send, clear and history use cases against a Store.
type Orchestrator struct {
	store        *store.Store
	api          API
	sink         ErrorSink
	historyLimit int

	// stale is set after a successful send or clear.
	stale atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHistoryLimit sets the page size used for history loads.
func WithHistoryLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

// New creates an orchestrator. sink may be nil.
func New(st *store.Store, client API, sink ErrorSink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:        st,
		api:          client,
		sink:         sink,
		historyLimit: api.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the store the orchestrator mutates.
func (o *Orchestrator) Store() *store.Store {
	return o.store
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage sends draft. A local user message and a loading placeholder
// are inserted before the request is made. On success the placeholder is
// replaced by the server answer; on failure it becomes an error message.
// The user message is never removed and always settles as replied.
func (o *Orchestrator) SendMessage(ctx context.Context, draft model.Draft) (*api.SendResult, error) {
	user := o.store.CreateLocalUserMessage(draft)
	placeholder := o.store.CreateLoadingBotMessage(user.ID)
	o.store.UpdateMessageStatus(user.ID, model.StatusSending)
	o.store.ClearError()

	log.Printf("SEND_START | local_id=%s loading_id=%s docs=%d", user.ID, placeholder.ID, len(draft.Documents))
	start := time.Now()

	result, err := o.api.Send(ctx, api.NewSendRequest(draft))
	if err == nil && !result.Complete() {
		err = ErrIncompleteResponse
	}
	if err != nil {
		errorID, _ := o.store.ReplaceLoadingMessageWithError(placeholder.ID)
		o.store.UpdateMessageStatus(user.ID, model.StatusReplied)
		log.Printf("SEND_FAILED | local_id=%s error_id=%s kind=%s error=%v", user.ID, errorID, api.KindOf(err), err)
		o.report(TitleSend, err)
		o.store.SetError(err)
		return nil, err
	}

	o.store.UpdateMessageStatus(user.ID, model.StatusSent)
	o.store.ReplaceLoadingMessage(placeholder.ID, *result.BotResponse)
	o.store.UpdateMessageStatus(user.ID, model.StatusReplied)
	if len(result.UserMessage.Documents) > 0 && len(user.Documents) == 0 {
		o.store.UpdateMessageDocuments(user.ID, result.UserMessage.Documents)
	}
	o.store.ConfirmUserMessage(user.ID, *result.UserMessage)

	o.stale.Store(true)
	log.Printf("SEND_COMPLETE | user_id=%s bot_id=%s duration=%v", result.UserMessage.ID, result.BotResponse.ID, time.Since(start))
	return result, nil
}

// =============================================================================
// CLEAR
// =============================================================================

// ClearHistory clears the remote history and then empties the store. On
// failure the messages are left untouched, the error is recorded on the
// store and returned.
func (o *Orchestrator) ClearHistory(ctx context.Context) error {
	o.store.SetLoading(true, "")
	o.store.ClearError()

	if err := o.api.Clear(ctx); err != nil {
		log.Printf("CLEAR_FAILED | kind=%s error=%v", api.KindOf(err), err)
		o.report(TitleClear, err)
		o.store.SetError(err)
		return err
	}

	o.store.ClearMessages()
	o.store.SetLoading(false, "")
	o.stale.Store(true)
	log.Printf("CLEAR_COMPLETE")
	return nil
}

// =============================================================================
// HISTORY
// =============================================================================

// LoadHistory fetches the most recent history page and applies it. Failures
// are recorded on the store; messages already held are kept.
func (o *Orchestrator) LoadHistory(ctx context.Context) error {
	page, err := o.api.History(ctx, api.HistoryParams{Limit: o.historyLimit})
	if err != nil {
		log.Printf("HISTORY_FAILED | kind=%s error=%v", api.KindOf(err), err)
		o.store.SetError(err)
		o.report(TitleHistory, err)
		return err
	}

	o.stale.Store(false)
	o.ApplyHistory(page.Messages)
	return nil
}

// RefreshMessages refetches history.
func (o *Orchestrator) RefreshMessages(ctx context.Context) error {
	return o.LoadHistory(ctx)
}

// RefreshIfStale refetches history when a send or clear completed since the
// last load. It reports whether a fetch was made.
func (o *Orchestrator) RefreshIfStale(ctx context.Context) (bool, error) {
	if !o.stale.Load() {
		return false, nil
	}
	return true, o.LoadHistory(ctx)
}

// Stale reports whether history should be refetched.
func (o *Orchestrator) Stale() bool {
	return o.stale.Load()
}

// ApplyHistory replaces the store contents with list unless an optimistic
// exchange is in flight. It reports whether the list was applied.
func (o *Orchestrator) ApplyHistory(list []model.Message) bool {
	if !o.store.SetMessagesIfSettled(list) {
		log.Printf("HISTORY_SKIPPED | reason=in_flight count=%d", len(list))
		return false
	}
	log.Printf("HISTORY_APPLIED | count=%d", len(list))
	return true
}

func (o *Orchestrator) report(title string, err error) {
	if o.sink == nil {
		return
	}
	o.sink.Notify(NewErrorNotice(title, err))
}
