// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/rigchat/internal/model"
)

// Loading texts shown on bot placeholders and their replacements.
const (
	LoadingTextSearching = "searching..."
	LoadingTextFound     = "Here is what I found"
	LoadingTextFailed    = "An error occurred"
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is an immutable copy of the store state.
type Snapshot struct {
	Messages  []model.Message
	Sorted    []model.Message
	Loading   bool
	LoadingID model.MessageID
	Err       error
	Typing    bool
	Version   uint64
}

// Find returns the message with id from the raw list.
func (s Snapshot) Find(id model.MessageID) (model.Message, bool) {
	for _, m := range s.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return model.Message{}, false
}

// =============================================================================
// STORE
// =============================================================================

// Store is the single source of truth for the message list.
type Store struct {
	mu sync.Mutex

	messages  []model.Message
	sorted    []model.Message
	loading   bool
	loadingID model.MessageID
	err       error
	typing    bool
	version   uint64

	// counter is shared by local, loading and error ids.
	counter uint64
	now     func() time.Time

	subs    map[int]func(Snapshot)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for ids and created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		messages: []model.Message{},
		sorted:   []model.Message{},
		now:      time.Now,
		subs:     make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Callbacks run on the mutating goroutine after the lock is released.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// mutate applies fn under the lock. When fn reports a change the derived
// ordering is recomputed and subscribers are notified once.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.sorted = SortMessages(s.messages)
	s.version++
	snap := s.snapshotLocked()

	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Messages:  model.CloneAll(s.messages),
		Sorted:    model.CloneAll(s.sorted),
		Loading:   s.loading,
		LoadingID: s.loadingID,
		Err:       s.err,
		Typing:    s.typing,
		Version:   s.version,
	}
}

func (s *Store) indexLocked(id model.MessageID) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) nextIDLocked(prefix string) model.MessageID {
	s.counter++
	return model.MessageID(fmt.Sprintf("%s%d_%d", prefix, s.now().UnixMilli(), s.counter))
}

// =============================================================================
// GETTERS
// =============================================================================

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Messages returns a copy of the raw message list.
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneAll(s.messages)
}

// Sorted returns a copy of the display sequence.
func (s *Store) Sorted() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneAll(s.sorted)
}

// Get returns the message with id.
func (s *Store) Get(id model.MessageID) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.messages[i].Clone(), true
	}
	return model.Message{}, false
}

// HasMessages reports whether the raw list is non-empty.
func (s *Store) HasMessages() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages) > 0
}

// LastMessage returns the last message of the display sequence.
func (s *Store) LastMessage() (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sorted) == 0 {
		return model.Message{}, false
	}
	return s.sorted[len(s.sorted)-1].Clone(), true
}

// MessagesWithReplies returns the user messages of the display sequence.
func (s *Store) MessagesWithReplies() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []model.Message
	for _, m := range s.sorted {
		if m.Type == model.TypeUser {
			users = append(users, m.Clone())
		}
	}
	return users
}

// HasInFlight reports whether any message is local or carries an in-flight status.
func (s *Store) HasInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.IsLocal || m.Status.InFlight() {
			return true
		}
	}
	return false
}

// Loading reports the global loading flag.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LoadingMessageID returns the message the loading flag applies to.
func (s *Store) LoadingMessageID() model.MessageID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingID
}

// Err returns the recorded error.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Typing reports the typing indicator.
func (s *Store) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// =============================================================================
// LIST MUTATIONS
// =============================================================================

// SetMessages replaces the whole list and clears the error.
func (s *Store) SetMessages(list []model.Message) {
	s.mutate(func() bool {
		s.messages = model.CloneAll(list)
		if s.messages == nil {
			s.messages = []model.Message{}
		}
		s.err = nil
		return true
	})
}

// SetMessagesIfSettled replaces the whole list unless a held message is
// local or carries an in-flight status. The check and the replacement happen
// under one lock. It reports whether the list was replaced.
func (s *Store) SetMessagesIfSettled(list []model.Message) bool {
	applied := false
	s.mutate(func() bool {
		for _, m := range s.messages {
			if m.IsLocal || m.Status.InFlight() {
				return false
			}
		}
		s.messages = model.CloneAll(list)
		if s.messages == nil {
			s.messages = []model.Message{}
		}
		s.err = nil
		applied = true
		return true
	})
	return applied
}

// AddMessage upserts msg by id. An existing entry is merged: zero-valued
// fields of msg leave the stored value untouched, so AddMessage can set the
// IsLocal, IsNew and IsLoading flags but never clear them, and never empties
// Text. Use PatchMessage for that. A message without id is rejected with a
// warning.
func (s *Store) AddMessage(msg model.Message) {
	if msg.ID.IsZero() {
		log.Printf("STORE_WARN | op=add_message reason=missing_id type=%s", msg.Type)
		return
	}
	s.mutate(func() bool {
		if i := s.indexLocked(msg.ID); i >= 0 {
			s.messages[i] = merge(s.messages[i], msg.Clone())
			return true
		}
		s.messages = append(s.messages, msg.Clone())
		return true
	})
}

func merge(dst, src model.Message) model.Message {
	if src.Type != "" {
		dst.Type = src.Type
	}
	if src.Status != "" {
		dst.Status = src.Status
	}
	if src.Text != "" {
		dst.Text = src.Text
	}
	if src.Documents != nil {
		dst.Documents = src.Documents
	}
	if !src.CreatedAt.IsZero() {
		dst.CreatedAt = src.CreatedAt
	}
	if src.Pairing != nil {
		dst.Pairing = src.Pairing
	}
	if src.LoadingText != "" {
		dst.LoadingText = src.LoadingText
	}
	dst.IsLoading = dst.IsLoading || src.IsLoading
	dst.IsLocal = dst.IsLocal || src.IsLocal
	dst.IsNew = dst.IsNew || src.IsNew
	return dst
}

// MessagePatch is a partial update. Nil fields are left untouched.
type MessagePatch struct {
	Status      *model.Status
	Text        *string
	LoadingText *string
	IsLoading   *bool
	IsLocal     *bool
	IsNew       *bool
}

// PatchMessage applies p to the message identified by id. It reports false
// when id is unknown.
func (s *Store) PatchMessage(id model.MessageID, p MessagePatch) bool {
	found := false
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		found = true
		m := &s.messages[i]
		if p.Status != nil {
			m.Status = *p.Status
		}
		if p.Text != nil {
			m.Text = *p.Text
		}
		if p.LoadingText != nil {
			m.LoadingText = *p.LoadingText
		}
		if p.IsLoading != nil {
			m.IsLoading = *p.IsLoading
		}
		if p.IsLocal != nil {
			m.IsLocal = *p.IsLocal
		}
		if p.IsNew != nil {
			m.IsNew = *p.IsNew
		}
		return true
	})
	return found
}

// AddReply upserts reply, by reply id, into the replies of the message
// identified by parentID. No-op when the parent is absent.
func (s *Store) AddReply(parentID model.MessageID, reply model.Message) {
	s.mutate(func() bool {
		i := s.indexLocked(parentID)
		if i < 0 {
			return false
		}
		replies := model.CloneAll(model.RepliesOf(s.messages[i]))
		replaced := false
		for j := range replies {
			if replies[j].ID == reply.ID {
				replies[j] = reply.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			replies = append(replies, reply.Clone())
		}
		s.messages[i].Pairing = model.ServerPaired{Replies: replies}
		return true
	})
}

// RemoveMessage splices out the message with id. No-op when absent.
func (s *Store) RemoveMessage(id model.MessageID) {
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.messages = append(s.messages[:i:i], s.messages[i+1:]...)
		return true
	})
}

// ClearMessages empties the list and resets loading and error state.
func (s *Store) ClearMessages() {
	s.mutate(func() bool {
		s.messages = []model.Message{}
		s.err = nil
		s.loading = false
		s.loadingID = ""
		return true
	})
}

// =============================================================================
// OPTIMISTIC MESSAGES
// =============================================================================

// CreateLocalUserMessage inserts and returns a local user message for draft.
func (s *Store) CreateLocalUserMessage(draft model.Draft) model.Message {
	var created model.Message
	s.mutate(func() bool {
		created = model.Message{
			ID:        s.nextIDLocked(model.PrefixLocal),
			Type:      model.TypeUser,
			Status:    model.StatusLocal,
			Text:      draft.Text,
			Documents: draft.Labels(),
			CreatedAt: s.now(),
			IsLocal:   true,
		}
		s.messages = append(s.messages, created.Clone())
		return true
	})
	return created
}

// CreateLoadingBotMessage inserts and returns a loading placeholder
// answering parentID.
func (s *Store) CreateLoadingBotMessage(parentID model.MessageID) model.Message {
	var created model.Message
	s.mutate(func() bool {
		created = model.Message{
			ID:          s.nextIDLocked(model.PrefixLoading),
			Type:        model.TypeBot,
			Status:      model.StatusLoading,
			CreatedAt:   s.now(),
			Pairing:     model.LocalPaired{ParentID: parentID},
			IsLoading:   true,
			LoadingText: LoadingTextSearching,
			IsLocal:     true,
		}
		s.messages = append(s.messages, created.Clone())
		return true
	})
	return created
}

// UpdateMessageStatus sets the status of id. No-op when absent.
func (s *Store) UpdateMessageStatus(id model.MessageID, status model.Status) {
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.messages[i].Status = status
		return true
	})
}

// ReplaceLoadingMessage replaces the placeholder id with the server
// response in one step. created_at and pairing of the placeholder are kept.
func (s *Store) ReplaceLoadingMessage(id model.MessageID, response model.Message) {
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		newID := response.ID
		if newID.IsZero() {
			newID = id
		}
		if newID != id {
			if dup := s.indexLocked(newID); dup >= 0 {
				s.messages = append(s.messages[:dup:dup], s.messages[dup+1:]...)
				if dup < i {
					i--
				}
			}
		}

		m := s.messages[i]
		m.ID = newID
		m.Text = response.Text
		m.Status = model.StatusReplied
		m.IsLoading = false
		m.LoadingText = LoadingTextFound
		m.Documents = append([]model.DocumentRef(nil), response.Documents...)
		if len(response.Documents) == 0 {
			m.Documents = nil
		}
		m.IsLocal = false
		m.IsNew = true
		s.messages[i] = m
		return true
	})
}

// ReplaceLoadingMessageWithError turns the placeholder id into an error
// message with a fresh error id. created_at and pairing are kept.
func (s *Store) ReplaceLoadingMessageWithError(id model.MessageID) (model.MessageID, bool) {
	var errorID model.MessageID
	var found bool
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		found = true
		errorID = s.nextIDLocked(model.PrefixError)
		m := s.messages[i]
		m.ID = errorID
		m.Text = ""
		m.Status = model.StatusError
		m.IsLoading = false
		m.LoadingText = LoadingTextFailed
		m.Documents = nil
		m.IsLocal = false
		s.messages[i] = m
		return true
	})
	return errorID, found
}

// MarkMessageAsAnimated clears the isNew flag of id. Idempotent.
func (s *Store) MarkMessageAsAnimated(id model.MessageID) {
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 || !s.messages[i].IsNew {
			return false
		}
		s.messages[i].IsNew = false
		return true
	})
}

// UpdateMessageDocuments sets the attached documents of id.
func (s *Store) UpdateMessageDocuments(id model.MessageID, docs []model.DocumentRef) {
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.messages[i].Documents = append([]model.DocumentRef(nil), docs...)
		return true
	})
}

// ConfirmUserMessage adopts the server identity of a local user message.
// The id becomes server.ID, isLocal is cleared, created_at and status are
// kept, and bot messages paired with the local id follow the new id.
func (s *Store) ConfirmUserMessage(localID model.MessageID, server model.Message) {
	s.mutate(func() bool {
		i := s.indexLocked(localID)
		if i < 0 {
			return false
		}
		newID := server.ID
		if newID.IsZero() {
			newID = localID
		}
		if newID != localID {
			if dup := s.indexLocked(newID); dup >= 0 {
				s.messages = append(s.messages[:dup:dup], s.messages[dup+1:]...)
				if dup < i {
					i--
				}
			}
			for j := range s.messages {
				if parent, ok := model.ParentOf(s.messages[j]); ok && parent == localID {
					s.messages[j].Pairing = model.LocalPaired{ParentID: newID}
				}
			}
		}
		s.messages[i].ID = newID
		s.messages[i].IsLocal = false
		return true
	})
}

// =============================================================================
// FLAGS
// =============================================================================

// SetLoading sets the loading flag and the message it applies to.
func (s *Store) SetLoading(loading bool, messageID model.MessageID) {
	s.mutate(func() bool {
		s.loading = loading
		s.loadingID = messageID
		return true
	})
}

// SetError records err and clears the loading flag.
func (s *Store) SetError(err error) {
	s.mutate(func() bool {
		s.err = err
		s.loading = false
		return true
	})
}

// ClearError drops the recorded error.
func (s *Store) ClearError() {
	s.mutate(func() bool {
		if s.err == nil {
			return false
		}
		s.err = nil
		return true
	})
}

// SetTyping sets the typing indicator.
func (s *Store) SetTyping(typing bool) {
	s.mutate(func() bool {
		if s.typing == typing {
			return false
		}
		s.typing = typing
		return true
	})
}
