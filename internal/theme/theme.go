// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jeranaias/rigchat/internal/storage"
)

// StorageKey is the device storage key of the preference.
const StorageKey = "app:theme"

// Mode selects the rendering profile.
type Mode string

const (
	// ModeTailwind renders markdown with glamour.
	ModeTailwind Mode = "tailwind"
	// ModeCSS renders plain text with highlighted code blocks.
	ModeCSS Mode = "css"
)

// ParseMode maps "css" to ModeCSS and anything else to ModeTailwind.
func ParseMode(s string) Mode {
	if s == string(ModeCSS) {
		return ModeCSS
	}
	return ModeTailwind
}

// Known density and radius values. Other strings are stored as given and
// rendered like "md".
var (
	Densities = []string{"sm", "md", "lg"}
	Radii     = []string{"none", "sm", "md", "lg"}
)

// Preference is the persisted appearance preference.
type Preference struct {
	Mode    Mode   `json:"mode"`
	Dark    bool   `json:"dark"`
	Density string `json:"density"`
	Radius  string `json:"radius"`
}

// Default returns the preference used when nothing valid is stored.
func Default() Preference {
	return Preference{Mode: ModeTailwind, Dark: false, Density: "md", Radius: "md"}
}

// Decode overlays the valid fields of raw onto Default. Fields with the wrong
// type or an unknown mode are ignored.
func Decode(raw []byte) Preference {
	p := Default()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return p
	}

	var s string
	if v, ok := fields["mode"]; ok && json.Unmarshal(v, &s) == nil {
		if s == string(ModeCSS) || s == string(ModeTailwind) {
			p.Mode = Mode(s)
		}
	}
	var b bool
	if v, ok := fields["dark"]; ok && json.Unmarshal(v, &b) == nil && string(v) != "null" {
		p.Dark = b
	}
	s = ""
	if v, ok := fields["density"]; ok && json.Unmarshal(v, &s) == nil && string(v) != "null" {
		p.Density = s
	}
	s = ""
	if v, ok := fields["radius"]; ok && json.Unmarshal(v, &s) == nil && string(v) != "null" {
		p.Radius = s
	}
	return p
}

// =============================================================================
// STORE
// =============================================================================

// KV is the subset of device storage used by the preference store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// Store holds the preference and mirrors every change to device storage.
type Store struct {
	kv KV

	mu      sync.RWMutex
	pref    Preference
	inited  bool
	subs    map[int]func(Preference)
	nextSub int
}

// NewStore creates a store holding Default. Call Init to load.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, pref: Default(), subs: make(map[int]func(Preference))}
}

// Init loads the stored preference once. Later calls do nothing. A missing
// or unreadable value leaves the defaults in place.
func (s *Store) Init(ctx context.Context) (Preference, error) {
	s.mu.Lock()
	if s.inited {
		p := s.pref
		s.mu.Unlock()
		return p, nil
	}
	s.inited = true
	s.mu.Unlock()

	raw, err := s.kv.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s.Preference(), nil
	case err != nil:
		return s.Preference(), fmt.Errorf("load theme: %w", err)
	}

	p := Decode([]byte(raw))
	s.mu.Lock()
	s.pref = p
	s.mu.Unlock()

	log.Printf("THEME_LOADED | mode=%s dark=%t density=%s radius=%s", p.Mode, p.Dark, p.Density, p.Radius)
	return p, nil
}

// Preference returns the current preference.
func (s *Store) Preference() Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pref
}

// SetMode sets the rendering mode. Anything but "css" selects tailwind.
func (s *Store) SetMode(ctx context.Context, mode string) error {
	return s.update(ctx, func(p *Preference) { p.Mode = ParseMode(mode) })
}

// SetDark sets the dark palette flag.
func (s *Store) SetDark(ctx context.Context, dark bool) error {
	return s.update(ctx, func(p *Preference) { p.Dark = dark })
}

// ToggleDark flips the dark palette flag.
func (s *Store) ToggleDark(ctx context.Context) error {
	return s.update(ctx, func(p *Preference) { p.Dark = !p.Dark })
}

// SetDensity sets the spacing density.
func (s *Store) SetDensity(ctx context.Context, density string) error {
	return s.update(ctx, func(p *Preference) { p.Density = density })
}

// SetRadius sets the border radius.
func (s *Store) SetRadius(ctx context.Context, radius string) error {
	return s.update(ctx, func(p *Preference) { p.Radius = radius })
}

// Subscribe registers fn to run after every change. It returns a function
// that removes the registration.
func (s *Store) Subscribe(fn func(Preference)) func() {
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

// update applies fn, persists the result and notifies subscribers. The
// in-memory preference changes even when persisting fails.
func (s *Store) update(ctx context.Context, fn func(*Preference)) error {
	s.mu.Lock()
	fn(&s.pref)
	p := s.pref
	fns := make([]func(Preference), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if sub, ok := s.subs[i]; ok {
			fns = append(fns, sub)
		}
	}
	s.mu.Unlock()

	err := s.kv.SetJSON(ctx, StorageKey, p)
	if err != nil {
		log.Printf("THEME_PERSIST_FAILED | error=%v", err)
		err = fmt.Errorf("persist theme: %w", err)
	}
	for _, sub := range fns {
		sub(p)
	}
	return err
}
