// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/scroll"
	"github.com/jeranaias/rigchat/internal/theme"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

func testTheme() *styles.Theme {
	pref := theme.Default()
	pref.Mode = theme.ModeCSS
	return styles.NewThemeWithProfile(pref, termenv.Ascii)
}

// newTestViewport lays out five three-line blocks with one blank line
// between them: block i starts at line 4*i, 19 lines in total.
func newTestViewport() *ChatViewport {
	cv := NewChatViewport(testTheme())
	cv.SetSize(40, 10)
	cv.SetGap(1)

	var blocks []Block
	for i := 0; i < 5; i++ {
		id := model.MessageID(string(rune('1' + i)))
		blocks = append(blocks, NewBlock(id, i%2 == 0, "a\nb\nc"))
	}
	cv.SetBlocks(blocks)
	return cv
}

func TestChatViewportGeometry(t *testing.T) {
	cv := newTestViewport()

	if got := cv.ScrollHeight(); got != 19 {
		t.Fatalf("ScrollHeight() = %d, want 19", got)
	}
	if got := cv.ClientHeight(); got != 10 {
		t.Errorf("ClientHeight() = %d, want 10", got)
	}
	if got := cv.Width(); got != 40 {
		t.Errorf("Width() = %d, want 40", got)
	}

	rect, ok := cv.MarkerRect("3")
	if !ok || rect != (scroll.Rect{Top: 8, Height: 3}) {
		t.Errorf("MarkerRect(3) = %+v, %v", rect, ok)
	}

	cv.SetOrigin(2)
	if got := cv.ContainerRect(); got != (scroll.Rect{Top: 2, Height: 10}) {
		t.Errorf("ContainerRect() = %+v", got)
	}
	cv.ScrollTo(5, false)
	rect, _ = cv.MarkerRect("3")
	if rect.Top != 2+8-5 {
		t.Errorf("MarkerRect(3).Top after scroll = %d, want 5", rect.Top)
	}

	if _, ok := cv.MarkerRect("missing"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestChatViewportQueryMarker(t *testing.T) {
	cv := newTestViewport()

	tests := []struct {
		selector string
		top      int
		ok       bool
	}{
		{"#2", 4, true},
		{SelectorLastUser, 16, true},
		{SelectorLastMessage, 16, true},
		{"#9", 0, false},
		{"bogus", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			rect, ok := cv.QueryMarker(tt.selector)
			if ok != tt.ok {
				t.Fatalf("QueryMarker(%q) ok = %v, want %v", tt.selector, ok, tt.ok)
			}
			if ok && rect.Top != tt.top {
				t.Errorf("QueryMarker(%q).Top = %d, want %d", tt.selector, rect.Top, tt.top)
			}
		})
	}

	cv.SetBlocks(nil)
	if _, ok := cv.QueryMarker(SelectorLastMessage); ok {
		t.Error("empty viewport should not resolve last")
	}
}

func TestChatViewportScrollToClamps(t *testing.T) {
	cv := newTestViewport()

	cv.ScrollTo(100, false)
	if got := cv.ScrollTop(); got != 9 {
		t.Errorf("ScrollTop() = %d, want 9", got)
	}
	if !cv.AtBottom() {
		t.Error("should be at bottom")
	}

	cv.ScrollTo(-4, false)
	if got := cv.ScrollTop(); got != 0 {
		t.Errorf("ScrollTop() = %d, want 0", got)
	}
	if !cv.AtTop() {
		t.Error("should be at top")
	}
}

func TestChatViewportSmoothScroll(t *testing.T) {
	cv := newTestViewport()

	cv.ScrollTo(9, true)
	if !cv.Animating() {
		t.Fatal("smooth scroll should animate")
	}
	if cv.ScrollTop() != 0 {
		t.Fatal("smooth scroll should not jump")
	}
	if cv.AnimationCmd() == nil {
		t.Fatal("AnimationCmd() should start frames")
	}
	if cv.AnimationCmd() != nil {
		t.Fatal("AnimationCmd() should not schedule frames twice")
	}

	offsets := []int{}
	for i := 0; i < 20 && cv.Animating(); i++ {
		cv.Update(ScrollFrameMsg{})
		offsets = append(offsets, cv.ScrollTop())
	}
	if cv.Animating() {
		t.Fatal("animation did not finish")
	}
	want := []int{3, 5, 6, 7, 8, 9}
	if len(offsets) != len(want) {
		t.Fatalf("offsets = %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offsets = %v, want %v", offsets, want)
		}
	}
}

func TestChatViewportUserScrollCancelsAnimation(t *testing.T) {
	cv := newTestViewport()
	cv.ScrollTo(9, true)

	_, moved := cv.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	if !moved {
		t.Fatal("pgdown should move")
	}
	if cv.Animating() {
		t.Error("user scroll should cancel the animation")
	}
	if cv.ScrollTop() != 9 {
		t.Errorf("ScrollTop() = %d, want 9", cv.ScrollTop())
	}

	_, moved = cv.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	if moved {
		t.Error("pgdown at the bottom should report no movement")
	}

	_, moved = cv.Update(tea.MouseMsg{Type: tea.MouseWheelUp})
	if !moved || cv.ScrollTop() != 6 {
		t.Errorf("wheel up: moved=%v top=%d, want true 6", moved, cv.ScrollTop())
	}
}

func TestChatViewportSetBlocksKeepsOffset(t *testing.T) {
	cv := newTestViewport()
	cv.ScrollTo(4, false)

	blocks := append(cv.Blocks(), NewBlock("6", true, "x"))
	cv.SetBlocks(blocks)
	if got := cv.ScrollTop(); got != 4 {
		t.Errorf("ScrollTop() = %d, want 4", got)
	}
	if got := cv.ScrollHeight(); got != 21 {
		t.Errorf("ScrollHeight() = %d, want 21", got)
	}
}

func TestChatViewportVisibility(t *testing.T) {
	cv := newTestViewport()
	if !cv.Visible() {
		t.Fatal("viewport should start visible")
	}
	cv.SetVisible(false)
	if cv.Visible() {
		t.Error("hidden viewport reported visible")
	}
	cv.SetVisible(true)
	cv.SetSize(40, 0)
	if cv.Visible() {
		t.Error("zero-height viewport reported visible")
	}
}

func TestChatViewportIndicator(t *testing.T) {
	cv := newTestViewport()
	if !strings.Contains(cv.IndicatorView(), "[1/10]") {
		t.Errorf("IndicatorView() = %q", cv.IndicatorView())
	}
	cv.ScrollTo(9, false)
	if cv.IndicatorView() != "" {
		t.Error("indicator should be empty at the bottom")
	}
}
