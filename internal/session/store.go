// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/storage"
)

// UserKey is the device storage key of the persisted user.
const UserKey = "user"

// KV is the subset of device storage used by the session store.
// *storage.KV satisfies it.
type KV interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

// =============================================================================
// USER STORE
// =============================================================================

// Store holds the signed-in user and mirrors every change to device storage.
type Store struct {
	kv KV

	mu      sync.RWMutex
	user    *model.User
	subs    map[int]func(*model.User)
	nextSub int
}

// NewStore creates a store over kv. Call Load to restore a saved user.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, subs: make(map[int]func(*model.User))}
}

// Load restores the persisted user. A missing or null value yields no user.
// A corrupt value is deleted and yields no user.
func (s *Store) Load(ctx context.Context) (*model.User, error) {
	var u *model.User
	err := s.kv.GetJSON(ctx, UserKey, &u)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		u = nil
	case errors.Is(err, storage.ErrDecode):
		log.Printf("SESSION_CORRUPT | key=%s error=%v", UserKey, err)
		if derr := s.kv.Delete(ctx, UserKey); derr != nil {
			return nil, fmt.Errorf("remove corrupt session: %w", derr)
		}
		u = nil
	case err != nil:
		return nil, err
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	log.Printf("SESSION_LOADED | authenticated=%t", u.Authenticated())
	return u.Clone(), nil
}

// Init stores the user returned by a successful login.
func (s *Store) Init(ctx context.Context, u *model.User) error {
	return s.Set(ctx, u)
}

// Set replaces the user, persists it and notifies subscribers.
func (s *Store) Set(ctx context.Context, u *model.User) error {
	u = u.Clone()

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	err := s.kv.SetJSON(ctx, UserKey, u)
	if err != nil {
		err = fmt.Errorf("persist session: %w", err)
	}
	s.notify(u)
	return err
}

// Reset signs the user out. null is written to storage.
func (s *Store) Reset(ctx context.Context) error {
	log.Printf("SESSION_RESET")
	return s.Set(ctx, nil)
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Authenticated reports whether a credential is held.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Authenticated()
}

// Token returns the bearer credential, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.AccessToken
}

// OnChange registers fn to run after every Set or Reset. It returns a
// function that removes the registration.
func (s *Store) OnChange(fn func(*model.User)) func() {
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

func (s *Store) notify(u *model.User) {
	s.mu.RLock()
	fns := make([]func(*model.User), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(u.Clone())
	}
}
