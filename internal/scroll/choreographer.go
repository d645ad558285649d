// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroll

import (
	"log"
	"sync"
	"time"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options tunes the choreography. Distances are in viewport units.
type Options struct {
	Smooth bool

	// Threshold is the distance from the end that still counts as bottom.
	Threshold int

	FirstDebounce  time.Duration
	ReplyDebounce  time.Duration
	BlockRelease   time.Duration
	UserScrollIdle time.Duration

	// Widths below NarrowBreakpoint use the narrow offsets.
	NarrowBreakpoint   int
	NarrowBottomOffset int
	NarrowTopOffset    int
}

// DefaultOptions returns the standard timings.
func DefaultOptions() Options {
	return Options{
		Smooth:             true,
		Threshold:          10,
		FirstDebounce:      50 * time.Millisecond,
		ReplyDebounce:      50 * time.Millisecond,
		BlockRelease:       1000 * time.Millisecond,
		UserScrollIdle:     150 * time.Millisecond,
		NarrowBreakpoint:   768,
		NarrowBottomOffset: 20,
		NarrowTopOffset:    10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FirstDebounce <= 0 {
		o.FirstDebounce = d.FirstDebounce
	}
	if o.ReplyDebounce <= 0 {
		o.ReplyDebounce = d.ReplyDebounce
	}
	if o.BlockRelease <= 0 {
		o.BlockRelease = d.BlockRelease
	}
	if o.UserScrollIdle <= 0 {
		o.UserScrollIdle = d.UserScrollIdle
	}
	if o.Threshold < 0 {
		o.Threshold = 0
	}
	return o
}

// =============================================================================
// STATE
// =============================================================================

// State is the choreography phase.
type State int

const (
	StateIdle State = iota
	StatePendingFirstScroll
	StatePendingReplyBlock
	StateBlocked
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingFirstScroll:
		return "pending_first_scroll"
	case StatePendingReplyBlock:
		return "pending_reply_block"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// =============================================================================
// CHOREOGRAPHER
// =============================================================================

// Choreographer decides when and where the message viewport scrolls.
type Choreographer struct {
	mu    sync.Mutex
	vp    Viewport
	sched Scheduler
	opts  Options

	// phase is Idle, PendingReplyBlock or Blocked. A pending first scroll
	// runs alongside and is tracked by firstTimer.
	phase        State
	firstTimer   Timer
	firstTarget  model.MessageID
	replyTimer   Timer
	releaseTimer Timer

	latest []model.Message

	userScrolling bool
	userTimer     Timer
	atBottom      bool

	closed bool
}

// New creates a choreographer. vp may be nil until SetViewport is called;
// every scroll is a no-op without a viewport.
func New(vp Viewport, sched Scheduler, opts Options) *Choreographer {
	if sched == nil {
		sched = NewTimerScheduler()
	}
	return &Choreographer{
		vp:       vp,
		sched:    sched,
		opts:     opts.withDefaults(),
		atBottom: true,
	}
}

// SetViewport replaces the viewport.
func (c *Choreographer) SetViewport(vp Viewport) {
	c.mu.Lock()
	c.vp = vp
	c.mu.Unlock()
}

// SetOptions replaces the options. Pending timers keep their delays.
func (c *Choreographer) SetOptions(opts Options) {
	c.mu.Lock()
	c.opts = opts.withDefaults()
	c.mu.Unlock()
}

// Options returns the active options.
func (c *Choreographer) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// State returns the current phase.
func (c *Choreographer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == StateIdle && c.firstTimer != nil {
		return StatePendingFirstScroll
	}
	return c.phase
}

// Blocking reports whether generic auto-scroll is suppressed.
func (c *Choreographer) Blocking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockingLocked()
}

func (c *Choreographer) blockingLocked() bool {
	return c.phase == StatePendingReplyBlock || c.phase == StateBlocked
}

// UserScrolling reports whether the user scrolled within the idle window.
func (c *Choreographer) UserScrolling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userScrolling
}

// Close stops all timers. Later callbacks are ignored.
func (c *Choreographer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, t := range []Timer{c.firstTimer, c.replyTimer, c.releaseTimer, c.userTimer} {
		if t != nil {
			t.Stop()
		}
	}
	c.firstTimer, c.replyTimer, c.releaseTimer, c.userTimer = nil, nil, nil, nil
	c.phase = StateIdle
}

// =============================================================================
// REACTIONS
// =============================================================================

// Observe reacts to a change of the display sequence from old to next.
//
// The first load scrolls to the bottom. A newly appeared local user message
// is scrolled to the bottom edge after FirstDebounce. A newly replied bot
// message blocks auto-scroll immediately, scrolls the most recent user
// message to the top edge after ReplyDebounce and releases the block
// BlockRelease later.
func (c *Choreographer) Observe(old, next []model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.latest = next

	if len(old) == 0 && len(next) > 0 {
		c.scrollToBottomLocked()
		return
	}

	before := make(map[model.MessageID]model.Message, len(old))
	for _, m := range old {
		before[m.ID] = m
	}

	var firstTarget model.MessageID
	replied := false
	for _, m := range next {
		prev, existed := before[m.ID]
		if m.Type == model.TypeUser && m.IsLocal && !existed {
			firstTarget = m.ID
		}
		if m.Type == model.TypeBot && newlyReplied(m, prev, existed) {
			replied = true
		}
	}

	if replied {
		c.blockLocked()
	}
	if firstTarget != "" {
		c.scheduleFirstLocked(firstTarget)
	}
}

// newlyReplied reports a bot message that just settled: replied under an id
// that was loading, or freshly flagged as new.
func newlyReplied(m, prev model.Message, existed bool) bool {
	if m.Status == model.StatusReplied && existed && prev.Status == model.StatusLoading {
		return true
	}
	return m.IsNew && !(existed && prev.IsNew)
}

func (c *Choreographer) scheduleFirstLocked(target model.MessageID) {
	if c.firstTimer != nil {
		c.firstTimer.Stop()
	}
	c.firstTarget = target
	var timer Timer
	timer = c.sched.AfterFunc(c.opts.FirstDebounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.firstTimer != timer {
			return
		}
		c.firstTimer = nil
		c.scrollMarkerToBottomLocked(c.firstTarget)
	})
	c.firstTimer = timer
}

func (c *Choreographer) blockLocked() {
	c.phase = StatePendingReplyBlock
	if c.replyTimer != nil {
		c.replyTimer.Stop()
	}
	if c.releaseTimer != nil {
		c.releaseTimer.Stop()
		c.releaseTimer = nil
	}
	log.Printf("SCROLL_BLOCK | state=%s", c.phase)

	var timer Timer
	timer = c.sched.AfterFunc(c.opts.ReplyDebounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.replyTimer != timer {
			return
		}
		c.replyTimer = nil
		c.phase = StateBlocked

		if target, ok := mostRecentUser(c.latest); ok {
			c.scrollMarkerToTopLocked(target)
		}

		var release Timer
		release = c.sched.AfterFunc(c.opts.BlockRelease, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed || c.releaseTimer != release {
				return
			}
			c.releaseTimer = nil
			c.phase = StateIdle
			log.Printf("SCROLL_RELEASE | state=%s", c.phase)
		})
		c.releaseTimer = release
	})
	c.replyTimer = timer
}

func mostRecentUser(list []model.Message) (model.MessageID, bool) {
	var best model.Message
	found := false
	for _, m := range list {
		if m.Type != model.TypeUser {
			continue
		}
		if !found || !m.CreatedAt.Before(best.CreatedAt) {
			best = m
			found = true
		}
	}
	return best.ID, found
}

// Sync records whether the viewport currently rests at the bottom. Call it
// before the content changes so ContentResized knows where the user was.
func (c *Choreographer) Sync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.atBottom = c.atBottomLocked()
}

// ContentResized follows growing content when the viewport rested at the
// bottom, is visible and is not under user control. It does nothing while
// a reply scroll is blocking.
func (c *Choreographer) ContentResized() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.blockingLocked() || c.vp == nil {
		return
	}
	if c.atBottom && c.vp.Visible() && !c.userScrolling {
		c.scrollToBottomLocked()
	}
}

// UserScrolled marks the viewport as user controlled until UserScrollIdle
// passes without another call.
func (c *Choreographer) UserScrolled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.userScrolling = true
	c.atBottom = c.atBottomLocked()
	if c.userTimer != nil {
		c.userTimer.Stop()
	}
	var timer Timer
	timer = c.sched.AfterFunc(c.opts.UserScrollIdle, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.userTimer != timer {
			return
		}
		c.userTimer = nil
		c.userScrolling = false
		c.atBottom = c.atBottomLocked()
	})
	c.userTimer = timer
}

// =============================================================================
// PRIMITIVES
// =============================================================================

// ScrollToBottom scrolls to the end of the content.
func (c *Choreographer) ScrollToBottom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrollToBottomLocked()
}

// ScrollToElement brings the anchor found by loc into view.
func (c *Choreographer) ScrollToElement(loc Locator, align Align) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vp == nil || loc == nil {
		return
	}
	elem, ok := loc.locate(c.vp)
	if !ok {
		return
	}
	container := c.vp.ContainerRect()
	top := c.vp.ScrollTop()

	var target int
	switch align {
	case AlignStart:
		target = elem.Top + top - container.Top
	case AlignEnd:
		target = elem.Bottom() + top - container.Bottom()
	case AlignCenter:
		target = elem.Top + top - container.Top - (container.Height-elem.Height)/2
	default:
		switch {
		case elem.Top < container.Top:
			target = elem.Top + top - container.Top
		case elem.Bottom() > container.Bottom():
			target = elem.Bottom() + top - container.Bottom()
		default:
			return
		}
	}
	c.performScrollLocked(target)
}

// ScrollMarkerToBottom positions the marker of id at the bottom edge.
func (c *Choreographer) ScrollMarkerToBottom(id model.MessageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrollMarkerToBottomLocked(id)
}

// ScrollMarkerToTop positions the marker of id at the top edge.
func (c *Choreographer) ScrollMarkerToTop(id model.MessageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrollMarkerToTopLocked(id)
}

// ScrollNeeded reports whether content of childHeight overflows the viewport.
func (c *Choreographer) ScrollNeeded(childHeight int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vp != nil && childHeight > c.vp.ClientHeight()
}

// CanScrollToBottom reports whether the content overflows the viewport.
func (c *Choreographer) CanScrollToBottom() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vp != nil && c.vp.ScrollHeight() > c.vp.ClientHeight()
}

// AtBottom reports whether the viewport is within Threshold of the end.
func (c *Choreographer) AtBottom() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.atBottomLocked()
}

func (c *Choreographer) atBottomLocked() bool {
	if c.vp == nil {
		return true
	}
	remaining := c.vp.ScrollHeight() - c.vp.ClientHeight() - c.vp.ScrollTop()
	return remaining <= c.opts.Threshold
}

func (c *Choreographer) narrowLocked() bool {
	return c.vp.Width() < c.opts.NarrowBreakpoint
}

func (c *Choreographer) scrollToBottomLocked() {
	if c.vp == nil {
		return
	}
	c.performScrollLocked(c.vp.ScrollHeight() - c.vp.ClientHeight())
}

func (c *Choreographer) scrollMarkerToBottomLocked(id model.MessageID) {
	if c.vp == nil || id.IsZero() {
		return
	}
	elem, ok := c.vp.MarkerRect(id)
	if !ok {
		return
	}
	offset := 0
	if c.narrowLocked() {
		offset = c.opts.NarrowBottomOffset
	}
	container := c.vp.ContainerRect()
	target := elem.Top + c.vp.ScrollTop() - (container.Bottom() - elem.Height - offset)
	c.performScrollLocked(target)
}

func (c *Choreographer) scrollMarkerToTopLocked(id model.MessageID) {
	if c.vp == nil || id.IsZero() {
		return
	}
	elem, ok := c.vp.MarkerRect(id)
	if !ok {
		return
	}
	offset := 0
	if c.narrowLocked() {
		offset = c.opts.NarrowTopOffset
	}
	container := c.vp.ContainerRect()
	target := elem.Top + c.vp.ScrollTop() - container.Top - offset
	c.performScrollLocked(target)
}

// performScrollLocked moves the viewport unless the user is scrolling or
// the viewport is hidden.
func (c *Choreographer) performScrollLocked(target int) {
	if c.vp == nil || c.userScrolling || !c.vp.Visible() {
		return
	}
	maxOffset := c.vp.ScrollHeight() - c.vp.ClientHeight()
	if target > maxOffset {
		target = maxOffset
	}
	if target < 0 {
		target = 0
	}
	c.vp.ScrollTo(target, c.opts.Smooth)
	c.atBottom = c.atBottomLocked()
}
