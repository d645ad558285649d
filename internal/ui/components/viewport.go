// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/scroll"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// Selectors understood by ChatViewport.QueryMarker besides "#<id>".
const (
	SelectorLastUser    = "last-user"
	SelectorLastMessage = "last"
)

// ScrollFrameInterval is the delay between smooth scroll steps.
const ScrollFrameInterval = 16 * time.Millisecond

// ScrollFrameMsg advances a smooth scroll by one step.
type ScrollFrameMsg struct {
	Time time.Time
}

// Block is the rendered form of one message.
type Block struct {
	ID    model.MessageID
	User  bool
	Lines []string
}

// NewBlock splits rendered output into a block.
func NewBlock(id model.MessageID, user bool, rendered string) Block {
	return Block{ID: id, User: user, Lines: strings.Split(rendered, "\n")}
}

// =============================================================================
// CHAT VIEWPORT COMPONENT - Scrollable chat area with indicators
// =============================================================================

// ChatViewport is the scroll container of the chat. It lays out rendered
// message blocks and implements scroll.Viewport in line units.
type ChatViewport struct {
	viewport viewport.Model
	theme    *styles.Theme
	width    int
	height   int
	top      int
	gap      int
	visible  bool

	blocks []Block
	starts []int
	index  map[model.MessageID]int
	total  int

	// Smooth scroll state.
	animTarget int
	animating  bool
	ticking    bool
}

var _ scroll.Viewport = (*ChatViewport)(nil)

// NewChatViewport creates a new ChatViewport
func NewChatViewport(theme *styles.Theme) *ChatViewport {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()
	vp.MouseWheelEnabled = false

	return &ChatViewport{
		viewport: vp,
		theme:    theme,
		width:    80,
		height:   20,
		gap:      1,
		visible:  true,
		index:    map[model.MessageID]int{},
	}
}

// SetTheme replaces the theme used for indicators.
func (cv *ChatViewport) SetTheme(theme *styles.Theme) {
	cv.theme = theme
}

// SetSize updates the viewport dimensions.
func (cv *ChatViewport) SetSize(width, height int) {
	if height < 0 {
		height = 0
	}
	cv.width = width
	cv.height = height
	cv.viewport.Width = width
	cv.viewport.Height = height
	cv.layout()
}

// SetOrigin sets the screen row of the first viewport line.
func (cv *ChatViewport) SetOrigin(top int) {
	cv.top = top
}

// SetGap sets the number of blank lines between blocks.
func (cv *ChatViewport) SetGap(gap int) {
	if gap < 0 {
		gap = 0
	}
	cv.gap = gap
	cv.layout()
}

// SetVisible marks the container as shown or hidden.
func (cv *ChatViewport) SetVisible(visible bool) {
	cv.visible = visible
}

// SetBlocks replaces the rendered content. The scroll offset is kept.
func (cv *ChatViewport) SetBlocks(blocks []Block) {
	cv.blocks = blocks
	cv.layout()
}

// Blocks returns the current blocks.
func (cv *ChatViewport) Blocks() []Block {
	return cv.blocks
}

func (cv *ChatViewport) layout() {
	cv.starts = cv.starts[:0]
	cv.index = make(map[model.MessageID]int, len(cv.blocks))

	var lines []string
	for i, b := range cv.blocks {
		if i > 0 {
			for g := 0; g < cv.gap; g++ {
				lines = append(lines, "")
			}
		}
		cv.starts = append(cv.starts, len(lines))
		cv.index[b.ID] = i
		lines = append(lines, b.Lines...)
	}
	cv.total = len(lines)

	offset := cv.viewport.YOffset
	cv.viewport.SetContent(strings.Join(lines, "\n"))
	cv.viewport.SetYOffset(offset)
	if cv.animating {
		cv.animTarget = clamp(cv.animTarget, 0, cv.maxOffset())
	}
}

func (cv *ChatViewport) maxOffset() int {
	return max(0, cv.total-cv.viewport.Height)
}

// =============================================================================
// SCROLL.VIEWPORT
// =============================================================================

// ScrollTop returns the first visible content line.
func (cv *ChatViewport) ScrollTop() int { return cv.viewport.YOffset }

// ScrollHeight returns the total number of content lines.
func (cv *ChatViewport) ScrollHeight() int { return cv.total }

// ClientHeight returns the number of visible lines.
func (cv *ChatViewport) ClientHeight() int { return cv.viewport.Height }

// Width returns the width in columns.
func (cv *ChatViewport) Width() int { return cv.width }

// Visible reports whether the container is shown.
func (cv *ChatViewport) Visible() bool { return cv.visible && cv.height > 0 }

// ContainerRect returns the screen extent of the container.
func (cv *ChatViewport) ContainerRect() scroll.Rect {
	return scroll.Rect{Top: cv.top, Height: cv.viewport.Height}
}

// MarkerRect returns the screen extent of the block rendered for id.
func (cv *ChatViewport) MarkerRect(id model.MessageID) (scroll.Rect, bool) {
	i, ok := cv.index[id]
	if !ok {
		return scroll.Rect{}, false
	}
	return cv.blockRect(i), true
}

// QueryMarker resolves "#<id>", "last-user" and "last".
func (cv *ChatViewport) QueryMarker(selector string) (scroll.Rect, bool) {
	switch {
	case strings.HasPrefix(selector, "#"):
		return cv.MarkerRect(model.MessageID(strings.TrimPrefix(selector, "#")))
	case selector == SelectorLastMessage:
		if len(cv.blocks) == 0 {
			return scroll.Rect{}, false
		}
		return cv.blockRect(len(cv.blocks) - 1), true
	case selector == SelectorLastUser:
		for i := len(cv.blocks) - 1; i >= 0; i-- {
			if cv.blocks[i].User {
				return cv.blockRect(i), true
			}
		}
	}
	return scroll.Rect{}, false
}

func (cv *ChatViewport) blockRect(i int) scroll.Rect {
	return scroll.Rect{
		Top:    cv.top + cv.starts[i] - cv.viewport.YOffset,
		Height: len(cv.blocks[i].Lines),
	}
}

// ScrollTo moves to offset. A smooth scroll is stepped by ScrollFrameMsg;
// the caller starts it with AnimationCmd.
func (cv *ChatViewport) ScrollTo(offset int, smooth bool) {
	offset = clamp(offset, 0, cv.maxOffset())
	if !smooth || offset == cv.viewport.YOffset {
		cv.animating = false
		cv.viewport.SetYOffset(offset)
		return
	}
	cv.animTarget = offset
	cv.animating = true
}

// =============================================================================
// SMOOTH SCROLL
// =============================================================================

// Animating reports whether a smooth scroll is in progress.
func (cv *ChatViewport) Animating() bool {
	return cv.animating
}

// AnimationCmd returns the command driving a pending smooth scroll, or nil
// when no scroll is pending or frames are already scheduled.
func (cv *ChatViewport) AnimationCmd() tea.Cmd {
	if !cv.animating || cv.ticking {
		return nil
	}
	cv.ticking = true
	return scrollFrameCmd()
}

func scrollFrameCmd() tea.Cmd {
	return tea.Tick(ScrollFrameInterval, func(t time.Time) tea.Msg {
		return ScrollFrameMsg{Time: t}
	})
}

// step moves a third of the remaining distance, at least one line.
func (cv *ChatViewport) step() {
	cur := cv.viewport.YOffset
	diff := cv.animTarget - cur
	if diff == 0 {
		cv.animating = false
		return
	}
	delta := diff / 3
	if delta == 0 {
		if diff > 0 {
			delta = 1
		} else {
			delta = -1
		}
	}
	cv.viewport.SetYOffset(cur + delta)
	if cv.viewport.YOffset == cv.animTarget || cv.viewport.YOffset == cur {
		cv.animating = false
	}
}

// =============================================================================
// USER SCROLLING
// =============================================================================

// ScrollUp scrolls up by lines. It reports whether the offset changed.
func (cv *ChatViewport) ScrollUp(lines int) bool {
	return cv.userScroll(cv.viewport.YOffset - lines)
}

// ScrollDown scrolls down by lines. It reports whether the offset changed.
func (cv *ChatViewport) ScrollDown(lines int) bool {
	return cv.userScroll(cv.viewport.YOffset + lines)
}

// PageUp scrolls up by one page.
func (cv *ChatViewport) PageUp() bool {
	return cv.ScrollUp(max(1, cv.viewport.Height))
}

// PageDown scrolls down by one page.
func (cv *ChatViewport) PageDown() bool {
	return cv.ScrollDown(max(1, cv.viewport.Height))
}

// GotoTop scrolls to the first line.
func (cv *ChatViewport) GotoTop() bool {
	return cv.userScroll(0)
}

// GotoBottom scrolls to the last page.
func (cv *ChatViewport) GotoBottom() bool {
	return cv.userScroll(cv.maxOffset())
}

func (cv *ChatViewport) userScroll(offset int) bool {
	cv.animating = false
	before := cv.viewport.YOffset
	cv.viewport.SetYOffset(clamp(offset, 0, cv.maxOffset()))
	return cv.viewport.YOffset != before
}

// AtTop returns true if the viewport is at the top
func (cv *ChatViewport) AtTop() bool {
	return cv.viewport.YOffset <= 0
}

// AtBottom returns true if the viewport is at the bottom
func (cv *ChatViewport) AtBottom() bool {
	return cv.viewport.YOffset >= cv.maxOffset()
}

// ScrollPercent returns the scroll position as a percentage
func (cv *ChatViewport) ScrollPercent() float64 {
	return cv.viewport.ScrollPercent()
}

// Update handles scroll frames, keys and the mouse wheel. The returned bool
// reports a user-initiated scroll.
func (cv *ChatViewport) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ScrollFrameMsg:
		cv.ticking = false
		cv.step()
		if cv.animating {
			cv.ticking = true
			return scrollFrameCmd(), false
		}
		return nil, false

	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			return nil, cv.PageUp()
		case "pgdown", "pgdn":
			return nil, cv.PageDown()
		case "ctrl+up":
			return nil, cv.ScrollUp(1)
		case "ctrl+down":
			return nil, cv.ScrollDown(1)
		case "ctrl+home":
			return nil, cv.GotoTop()
		case "ctrl+end":
			return nil, cv.GotoBottom()
		}

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			return nil, cv.ScrollUp(3)
		case tea.MouseWheelDown:
			return nil, cv.ScrollDown(3)
		}
	}
	return nil, false
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the visible lines.
func (cv *ChatViewport) View() string {
	if cv.height <= 0 {
		return ""
	}
	return cv.viewport.View()
}

// IndicatorView renders the "more above/below" hint shown under the
// viewport, or an empty string at the bottom.
func (cv *ChatViewport) IndicatorView() string {
	if cv.AtBottom() || cv.theme == nil {
		return ""
	}
	hint := cv.theme.NewStyle().Foreground(styles.TextMuted).Italic(true)
	arrow := cv.theme.NewStyle().Foreground(styles.Cyan)
	pos := cv.theme.NewStyle().Foreground(styles.Purple).Bold(true)
	text := arrow.Render("v") + pos.Render(" "+cv.ScrollPosition()+" ") +
		hint.Render("more below") + " " + arrow.Render("v")
	return cv.theme.NewStyle().Width(cv.width).Align(lipgloss.Center).Render(text)
}

// ScrollPosition returns the position as "[line/last]", or "" when the
// content fits.
func (cv *ChatViewport) ScrollPosition() string {
	limit := cv.maxOffset()
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf("[%d/%d]", cv.viewport.YOffset+1, limit+1)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
