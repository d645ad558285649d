// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// Fallback text for an empty bubble.
const emptyBubbleText = "..."

// MessageRenderer turns messages into viewport blocks. Settled messages are
// cached until the width or the theme changes.
type MessageRenderer struct {
	theme *styles.Theme
	width int
	now   func() time.Time

	md      *glamour.TermRenderer
	mdWidth int
	mdStyle string

	spinnerFrame string
	cache        map[cacheKey]string
}

type cacheKey struct {
	id      model.MessageID
	status  model.Status
	text    string
	docs    string
	created int64
	isNew   bool
	isLocal bool
}

func keyOf(m model.Message) cacheKey {
	docs := make([]string, len(m.Documents))
	for i, d := range m.Documents {
		docs[i] = string(d)
	}
	return cacheKey{
		id:      m.ID,
		status:  m.Status,
		text:    m.Text,
		docs:    strings.Join(docs, "\x00"),
		created: m.CreatedAt.UnixNano(),
		isNew:   m.IsNew,
		isLocal: m.IsLocal,
	}
}

// NewMessageRenderer creates a renderer for the given theme.
func NewMessageRenderer(theme *styles.Theme) *MessageRenderer {
	return &MessageRenderer{
		theme:        theme,
		width:        80,
		now:          time.Now,
		spinnerFrame: "*",
		cache:        map[cacheKey]string{},
	}
}

// SetTheme switches the theme and drops the cache.
func (r *MessageRenderer) SetTheme(theme *styles.Theme) {
	r.theme = theme
	r.cache = map[cacheKey]string{}
}

// SetWidth sets the available width and drops the cache on change.
func (r *MessageRenderer) SetWidth(width int) {
	if width == r.width {
		return
	}
	r.width = width
	r.cache = map[cacheKey]string{}
}

// SetSpinnerFrame sets the frame shown on loading messages.
func (r *MessageRenderer) SetSpinnerFrame(frame string) {
	r.spinnerFrame = frame
}

// CacheSize returns the number of cached renders.
func (r *MessageRenderer) CacheSize() int {
	return len(r.cache)
}

// Blocks renders the display sequence.
func (r *MessageRenderer) Blocks(list []model.Message) []Block {
	blocks := make([]Block, 0, len(list))
	for _, m := range list {
		blocks = append(blocks, NewBlock(m.ID, m.IsUser(), r.Render(m)))
	}
	return blocks
}

// Render renders one message: a header line, the bubble and the attached
// document chips.
func (r *MessageRenderer) Render(m model.Message) string {
	if m.IsLoading {
		return r.renderLoading(m)
	}
	key := keyOf(m)
	if out, ok := r.cache[key]; ok {
		return out
	}

	var out string
	switch {
	case m.IsUser():
		out = r.renderUser(m)
	case m.Status == model.StatusError:
		out = r.renderError(m)
	default:
		out = r.renderBot(m)
	}
	r.cache[key] = out
	return out
}

// ==========================================================================
// USER
// ==========================================================================

func (r *MessageRenderer) renderUser(m model.Message) string {
	t := r.theme
	text := m.Text
	if text == "" {
		text = emptyBubbleText
	}
	bubble := r.bubble(t.UserBubble, wrapText(text, r.contentWidth()))

	parts := []string{r.header(m), bubble}
	if chips := r.chips(m.Documents); chips != "" {
		parts = append(parts, chips)
	}
	block := lipgloss.JoinVertical(lipgloss.Right, parts...)
	return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, block)
}

// ==========================================================================
// BOT
// ==========================================================================

func (r *MessageRenderer) renderBot(m model.Message) string {
	t := r.theme
	var body string
	if t.Markdown() {
		body = r.markdown(m.Text)
	} else {
		body = ParseCodeBlocks(m.Text, r.contentWidth(), t)
	}
	if strings.TrimSpace(body) == "" {
		body = emptyBubbleText
	}

	parts := []string{r.header(m), r.bubble(t.AssistantBubble, body)}
	if chips := r.chips(m.Documents); chips != "" {
		parts = append(parts, chips)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (r *MessageRenderer) renderError(m model.Message) string {
	t := r.theme
	text := styles.StatusIndicators.Error + " " + m.Text
	return lipgloss.JoinVertical(lipgloss.Left,
		r.header(m),
		r.bubble(t.ErrorBubble, wrapText(text, r.contentWidth())),
	)
}

func (r *MessageRenderer) renderLoading(m model.Message) string {
	t := r.theme
	text := m.LoadingText
	if text == "" {
		text = emptyBubbleText
	}
	body := t.StatusPending.Render(r.spinnerFrame) + " " + t.LoadingText.Render(text)
	return lipgloss.JoinVertical(lipgloss.Left, r.header(m), r.bubble(t.AssistantBubble, body))
}

// markdown renders text with glamour, falling back to wrapped plain text.
func (r *MessageRenderer) markdown(text string) string {
	width := r.contentWidth()
	style := r.theme.GlamourStyle()
	if r.md == nil || r.mdWidth != width || r.mdStyle != style {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Printf("RENDER_MARKDOWN_INIT_FAILED | error=%v", err)
			return wrapText(text, width)
		}
		r.md, r.mdWidth, r.mdStyle = md, width, style
	}

	out, err := r.md.Render(text)
	if err != nil {
		log.Printf("RENDER_MARKDOWN_FAILED | error=%v", err)
		return wrapText(text, width)
	}
	return strings.Trim(out, "\n")
}

// ==========================================================================
// PARTS
// ==========================================================================

func (r *MessageRenderer) bubble(style lipgloss.Style, body string) string {
	pad := styles.Padding(r.theme.Pref.Density)
	width := min(maxLineWidth(body)+2*pad, r.width-2)
	if width < 1 {
		width = 1
	}
	return style.Width(width).Render(body)
}

// header renders author, time and the pending or new indicators.
func (r *MessageRenderer) header(m model.Message) string {
	t := r.theme
	parts := []string{t.Author.Render(m.Type.DisplayName())}
	if ts := r.timestamp(m.CreatedAt); ts != "" {
		parts = append(parts, t.Timestamp.Render(ts))
	}
	switch m.Status {
	case model.StatusLocal, model.StatusSending:
		parts = append(parts, t.StatusPending.Render(styles.StatusIndicators.Pending+" "+string(m.Status)))
	}
	if m.IsNew {
		parts = append(parts, t.NewBadge.Render("new"))
	}
	return strings.Join(parts, " ")
}

func (r *MessageRenderer) chips(docs []model.DocumentRef) string {
	if len(docs) == 0 {
		return ""
	}
	t := r.theme
	chips := make([]string, 0, len(docs))
	for _, d := range docs {
		chips = append(chips, t.DocChip.Render(util.TruncateWidth(string(d), 24)))
	}
	return strings.Join(chips, " ")
}

// timestamp formats same-day times as "3:04 PM" and older ones with the date.
func (r *MessageRenderer) timestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	ts = ts.Local()
	now := r.now()
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		return ts.Format("3:04 PM")
	}
	return ts.Format("Jan 2, 3:04 PM")
}

func (r *MessageRenderer) contentWidth() int {
	pad := styles.Padding(r.theme.Pref.Density)
	width := r.width - 2 - 2*pad - 2
	if width < 10 {
		width = 10
	}
	return width
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// wrapText wraps text at word boundaries to the given column width. Words
// wider than the width are broken.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteByte('\n')
		}

		current, currentWidth := "", 0
		for _, word := range strings.Fields(line) {
			for runewidth.StringWidth(word) > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					break
				}
				if current != "" {
					result.WriteString(current + "\n")
					current, currentWidth = "", 0
				}
				result.WriteString(head + "\n")
				word = strings.TrimPrefix(word, head)
			}

			w := runewidth.StringWidth(word)
			switch {
			case current == "":
				current, currentWidth = word, w
			case currentWidth+1+w <= width:
				current += " " + word
				currentWidth += 1 + w
			default:
				result.WriteString(current + "\n")
				current, currentWidth = word, w
			}
		}
		result.WriteString(current)
	}
	return result.String()
}

// maxLineWidth returns the display width of the longest line.
func maxLineWidth(text string) int {
	widest := 0
	for _, line := range strings.Split(text, "\n") {
		widest = max(widest, lipgloss.Width(line))
	}
	return widest
}
