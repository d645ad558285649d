// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroll

import (
	"time"

	"github.com/jeranaias/rigchat/internal/model"
)

// Rect is a vertical extent in viewport units, relative to the top of the
// screen.
type Rect struct {
	Top    int
	Height int
}

// Bottom returns the first unit below the rect.
func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// Viewport is the scroll container the choreographer drives.
// Implementations must not call back into the Choreographer from ScrollTo.
type Viewport interface {
	ScrollTop() int
	ScrollHeight() int
	ClientHeight() int
	Width() int
	Visible() bool

	// ContainerRect is the on-screen extent of the container.
	ContainerRect() Rect

	// MarkerRect is the on-screen extent of the marker rendered for a message.
	MarkerRect(id model.MessageID) (Rect, bool)

	// QueryMarker resolves a selector string to an on-screen extent.
	QueryMarker(selector string) (Rect, bool)

	ScrollTo(offset int, smooth bool)
}

// Locator resolves a scroll anchor.
type Locator interface {
	locate(v Viewport) (Rect, bool)
}

// Selector locates an anchor by selector string.
type Selector string

func (s Selector) locate(v Viewport) (Rect, bool) {
	return v.QueryMarker(string(s))
}

// Marker locates the marker of a message.
type Marker model.MessageID

func (m Marker) locate(v Viewport) (Rect, bool) {
	return v.MarkerRect(model.MessageID(m))
}

// Align positions a located anchor inside the container.
type Align int

const (
	// AlignNearest scrolls the least distance that makes the anchor visible.
	AlignNearest Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// =============================================================================
// SCHEDULER
// =============================================================================

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// callback was still pending.
	Stop() bool
}

// Scheduler runs callbacks after a delay. Every delay of the choreographer
// goes through one Scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timerScheduler struct{}

// NewTimerScheduler returns a Scheduler backed by time.AfterFunc. Callbacks
// run on their own goroutine.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
