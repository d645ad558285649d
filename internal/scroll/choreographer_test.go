// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroll

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeTimer struct {
	s       *fakeScheduler
	due     time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{s: s, due: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in order. Timers
// scheduled by callbacks fire too when they fall inside the window.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	end := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		var next *fakeTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.due > end {
				continue
			}
			if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			s.now = end
			s.mu.Unlock()
			return
		}
		next.fired = true
		s.now = next.due
		s.mu.Unlock()
		next.f()
	}
}

func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeViewport is a line-based container whose markers are one line tall.
type fakeViewport struct {
	top     int
	content int
	client  int
	width   int
	hidden  bool
	markers map[model.MessageID]int
	scrolls []int
}

func newFakeViewport(content, client int) *fakeViewport {
	return &fakeViewport{content: content, client: client, width: 120, markers: map[model.MessageID]int{}}
}

func (v *fakeViewport) ScrollTop() int      { return v.top }
func (v *fakeViewport) ScrollHeight() int   { return v.content }
func (v *fakeViewport) ClientHeight() int   { return v.client }
func (v *fakeViewport) Width() int          { return v.width }
func (v *fakeViewport) Visible() bool       { return !v.hidden }
func (v *fakeViewport) ContainerRect() Rect { return Rect{Top: 0, Height: v.client} }

func (v *fakeViewport) MarkerRect(id model.MessageID) (Rect, bool) {
	line, ok := v.markers[id]
	if !ok {
		return Rect{}, false
	}
	return Rect{Top: line - v.top, Height: 1}, true
}

func (v *fakeViewport) QueryMarker(selector string) (Rect, bool) {
	if len(selector) > 1 && selector[0] == '#' {
		return v.MarkerRect(model.MessageID(selector[1:]))
	}
	return Rect{}, false
}

func (v *fakeViewport) ScrollTo(offset int, smooth bool) {
	v.top = offset
	v.scrolls = append(v.scrolls, offset)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Threshold = 1
	opts.NarrowBreakpoint = 80
	opts.NarrowBottomOffset = 3
	opts.NarrowTopOffset = 2
	return opts
}

func newTestChoreographer(vp *fakeViewport) (*Choreographer, *fakeScheduler) {
	sched := &fakeScheduler{}
	c := New(vp, sched, testOptions())
	return c, sched
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func user(id string, sec int, local bool) model.Message {
	return model.Message{
		ID:        model.MessageID(id),
		Type:      model.TypeUser,
		Status:    model.StatusReplied,
		CreatedAt: base.Add(time.Duration(sec) * time.Second),
		IsLocal:   local,
	}
}

func bot(id, parent string, sec int, status model.Status, isNew bool) model.Message {
	return model.Message{
		ID:        model.MessageID(id),
		Type:      model.TypeBot,
		Status:    status,
		CreatedAt: base.Add(time.Duration(sec) * time.Second),
		Pairing:   model.LocalPaired{ParentID: model.MessageID(parent)},
		IsNew:     isNew,
	}
}

// =============================================================================
// REACTIONS
// =============================================================================

func TestObserve_InitialLoadScrollsToBottom(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, sched := newTestChoreographer(vp)

	c.Observe(nil, []model.Message{user("1", 1, false), bot("2", "1", 2, model.StatusReplied, false)})

	assert.Equal(t, []int{80}, vp.scrolls)
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, sched.Pending())
}

func TestObserve_FirstScrollIsDebounced(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, sched := newTestChoreographer(vp)
	old := []model.Message{user("1", 1, false)}
	vp.markers["local_1"] = 90

	c.Observe(old, append(old, user("local_1", 2, true)))
	assert.Equal(t, StatePendingFirstScroll, c.State())

	sched.Advance(49 * time.Millisecond)
	assert.Empty(t, vp.scrolls)

	sched.Advance(time.Millisecond)
	// The marker ends on the last visible line.
	require.Equal(t, []int{71}, vp.scrolls)
	rect, _ := vp.MarkerRect("local_1")
	assert.Equal(t, 19, rect.Top)
	assert.Equal(t, StateIdle, c.State())
}

func TestObserve_FirstScrollTargetsLastLocalMessage(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, sched := newTestChoreographer(vp)
	vp.markers["local_1"] = 60
	vp.markers["local_2"] = 90

	first := []model.Message{user("1", 1, false)}
	second := append(append([]model.Message{}, first...), user("local_1", 2, true))
	third := append(append([]model.Message{}, second...), user("local_2", 3, true))

	c.Observe(first, second)
	sched.Advance(30 * time.Millisecond)
	c.Observe(second, third)
	sched.Advance(30 * time.Millisecond)
	assert.Empty(t, vp.scrolls, "debounce restarts on each new local message")

	sched.Advance(20 * time.Millisecond)
	assert.Equal(t, []int{71}, vp.scrolls)
}

func TestObserve_ReplyBlocksAndPinsQuestion(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, sched := newTestChoreographer(vp)
	vp.markers["5"] = 60

	old := []model.Message{user("5", 1, false), bot("loading_1", "5", 2, model.StatusLoading, false)}
	next := []model.Message{user("5", 1, false), bot("6", "5", 2, model.StatusReplied, true)}

	c.Observe(old, next)
	assert.Equal(t, StatePendingReplyBlock, c.State())
	assert.True(t, c.Blocking())

	c.Sync()
	c.ContentResized()
	assert.Empty(t, vp.scrolls, "content following is suppressed while blocking")

	sched.Advance(50 * time.Millisecond)
	assert.Equal(t, StateBlocked, c.State())
	assert.Equal(t, []int{60}, vp.scrolls)
	rect, _ := vp.MarkerRect("5")
	assert.Equal(t, 0, rect.Top)

	sched.Advance(999 * time.Millisecond)
	assert.True(t, c.Blocking())

	sched.Advance(time.Millisecond)
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.Blocking())
}

func TestObserve_ReplyUnderSameID(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, _ := newTestChoreographer(vp)

	old := []model.Message{user("5", 1, false), bot("6", "5", 2, model.StatusLoading, false)}
	next := []model.Message{user("5", 1, false), bot("6", "5", 2, model.StatusReplied, false)}

	c.Observe(old, next)
	assert.True(t, c.Blocking())
}

func TestObserve_StillNewMessageDoesNotRetrigger(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, _ := newTestChoreographer(vp)

	list := []model.Message{user("5", 1, false), bot("6", "5", 2, model.StatusReplied, true)}
	c.Observe(list, list)
	assert.False(t, c.Blocking())
}

func TestObserve_NewReplyRestartsBlock(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, sched := newTestChoreographer(vp)

	old := []model.Message{user("5", 1, false), bot("loading_1", "5", 2, model.StatusLoading, false)}
	next := []model.Message{user("5", 1, false), bot("6", "5", 2, model.StatusReplied, true)}
	c.Observe(old, next)
	sched.Advance(600 * time.Millisecond)

	later := append(append([]model.Message{}, next...), user("7", 3, false), bot("8", "7", 4, model.StatusReplied, true))
	c.Observe(next, later)
	assert.Equal(t, StatePendingReplyBlock, c.State())

	sched.Advance(600 * time.Millisecond)
	assert.Equal(t, StateBlocked, c.State(), "the first release timer was cancelled")

	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, StateIdle, c.State())
}

func TestObserve_NarrowOffsets(t *testing.T) {
	vp := newFakeViewport(100, 20)
	vp.width = 60
	c, sched := newTestChoreographer(vp)
	vp.markers["local_1"] = 90
	vp.markers["5"] = 60

	old := []model.Message{user("1", 1, false)}
	c.Observe(old, append(old, user("local_1", 2, true)))
	sched.Advance(50 * time.Millisecond)
	assert.Equal(t, []int{74}, vp.scrolls, "bottom offset lifts the marker")

	replyOld := []model.Message{user("5", 1, false), bot("loading_1", "5", 2, model.StatusLoading, false)}
	replyNew := []model.Message{user("5", 1, false), bot("6", "5", 2, model.StatusReplied, true)}
	c.Observe(replyOld, replyNew)
	sched.Advance(50 * time.Millisecond)
	assert.Equal(t, []int{74, 58}, vp.scrolls)
}

// =============================================================================
// CONTENT AND USER SCROLL
// =============================================================================

func TestContentResized(t *testing.T) {
	tests := []struct {
		name      string
		top       int
		hidden    bool
		wantMoves bool
	}{
		{name: "follows at bottom", top: 80, wantMoves: true},
		{name: "within threshold", top: 79, wantMoves: true},
		{name: "scrolled up", top: 40},
		{name: "hidden", top: 80, hidden: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := newFakeViewport(100, 20)
			vp.top = tt.top
			vp.hidden = tt.hidden
			c, _ := newTestChoreographer(vp)

			c.Sync()
			vp.content = 110
			c.ContentResized()

			if tt.wantMoves {
				assert.Equal(t, []int{90}, vp.scrolls)
			} else {
				assert.Empty(t, vp.scrolls)
			}
		})
	}
}

func TestUserScrolled_SuppressesUntilIdle(t *testing.T) {
	vp := newFakeViewport(100, 20)
	vp.top = 80
	c, sched := newTestChoreographer(vp)

	c.UserScrolled()
	assert.True(t, c.UserScrolling())

	c.ScrollToBottom()
	vp.content = 110
	c.ContentResized()
	assert.Empty(t, vp.scrolls)

	sched.Advance(100 * time.Millisecond)
	c.UserScrolled()
	sched.Advance(100 * time.Millisecond)
	assert.True(t, c.UserScrolling(), "idle window restarts")

	sched.Advance(50 * time.Millisecond)
	assert.False(t, c.UserScrolling())

	c.ScrollToBottom()
	assert.Equal(t, []int{90}, vp.scrolls)
}

func TestUserScrolled_AwayFromBottomStopsFollowing(t *testing.T) {
	vp := newFakeViewport(100, 20)
	vp.top = 30
	c, sched := newTestChoreographer(vp)

	c.UserScrolled()
	sched.Advance(time.Second)

	vp.content = 110
	c.ContentResized()
	assert.Empty(t, vp.scrolls)
}

// =============================================================================
// PRIMITIVES
// =============================================================================

func TestScrollToElement(t *testing.T) {
	tests := []struct {
		name    string
		top     int
		line    int
		align   Align
		want    []int
		locator func() Locator
	}{
		{name: "start", top: 0, line: 50, align: AlignStart, want: []int{50}},
		{name: "end", top: 0, line: 50, align: AlignEnd, want: []int{31}},
		{name: "center", top: 0, line: 50, align: AlignCenter, want: []int{41}},
		{name: "nearest below", top: 0, line: 50, align: AlignNearest, want: []int{31}},
		{name: "nearest above", top: 60, line: 50, align: AlignNearest, want: []int{50}},
		{name: "nearest visible", top: 40, line: 50, align: AlignNearest},
		{name: "clamped", top: 0, line: 95, align: AlignStart, want: []int{80}},
		{
			name: "selector", top: 0, line: 50, align: AlignStart, want: []int{50},
			locator: func() Locator { return Selector("#m") },
		},
		{
			name: "unknown selector", top: 0, line: 50, align: AlignStart,
			locator: func() Locator { return Selector(".missing") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := newFakeViewport(100, 20)
			vp.top = tt.top
			vp.markers["m"] = tt.line
			c, _ := newTestChoreographer(vp)

			var loc Locator = Marker("m")
			if tt.locator != nil {
				loc = tt.locator()
			}
			c.ScrollToElement(loc, tt.align)
			assert.Equal(t, tt.want, vp.scrolls)
		})
	}
}

func TestScrollMarker_UnknownIsNoop(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, _ := newTestChoreographer(vp)

	c.ScrollMarkerToBottom("missing")
	c.ScrollMarkerToTop("missing")
	c.ScrollMarkerToTop("")
	assert.Empty(t, vp.scrolls)
}

func TestGeometryQueries(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, _ := newTestChoreographer(vp)

	assert.True(t, c.CanScrollToBottom())
	assert.True(t, c.ScrollNeeded(21))
	assert.False(t, c.ScrollNeeded(20))
	assert.False(t, c.AtBottom())

	vp.top = 79
	assert.True(t, c.AtBottom())

	short := newFakeViewport(10, 20)
	c.SetViewport(short)
	assert.False(t, c.CanScrollToBottom())
	assert.True(t, c.AtBottom())
}

func TestNilViewport(t *testing.T) {
	c := New(nil, &fakeScheduler{}, testOptions())

	assert.NotPanics(t, func() {
		c.Observe(nil, []model.Message{user("1", 1, false)})
		c.ScrollToBottom()
		c.ScrollToElement(Marker("1"), AlignStart)
		c.ScrollMarkerToBottom("1")
		c.ContentResized()
		c.UserScrolled()
	})
	assert.False(t, c.CanScrollToBottom())
	assert.False(t, c.ScrollNeeded(100))
	assert.True(t, c.AtBottom())
}

func TestClose_CancelsTimers(t *testing.T) {
	vp := newFakeViewport(100, 20)
	c, sched := newTestChoreographer(vp)
	vp.markers["local_1"] = 90

	old := []model.Message{user("1", 1, false), bot("loading_1", "1", 2, model.StatusLoading, false)}
	next := []model.Message{user("1", 1, false), bot("2", "1", 2, model.StatusReplied, true), user("local_1", 3, true)}
	c.Observe(old, next)
	require.Equal(t, 2, sched.Pending())

	c.Close()
	assert.Zero(t, sched.Pending())
	sched.Advance(2 * time.Second)
	assert.Empty(t, vp.scrolls)
	assert.Equal(t, StateIdle, c.State())

	c.Observe(nil, next)
	assert.Empty(t, vp.scrolls)
}

func TestOptions_Defaults(t *testing.T) {
	c := New(nil, nil, Options{})
	opts := c.Options()

	assert.Equal(t, 50*time.Millisecond, opts.FirstDebounce)
	assert.Equal(t, 50*time.Millisecond, opts.ReplyDebounce)
	assert.Equal(t, time.Second, opts.BlockRelease)
	assert.Equal(t, 150*time.Millisecond, opts.UserScrollIdle)

	d := DefaultOptions()
	assert.Equal(t, 768, d.NarrowBreakpoint)
	assert.Equal(t, 20, d.NarrowBottomOffset)
	assert.Equal(t, 10, d.NarrowTopOffset)
}

func TestStateString(t *testing.T) {
	names := []string{}
	for _, s := range []State{StateIdle, StatePendingFirstScroll, StatePendingReplyBlock, StateBlocked} {
		names = append(names, s.String())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"blocked", "idle", "pending_first_scroll", "pending_reply_block"}, names)
}
