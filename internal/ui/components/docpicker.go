// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// PickerAction is the outcome of a key press in the document picker.
type PickerAction int

const (
	PickerNone PickerAction = iota
	PickerDone
	PickerCancel
)

// DocPicker selects documents to attach to the next message.
type DocPicker struct {
	theme    *styles.Theme
	filter   textinput.Model
	docs     []model.Document
	visible  []model.Document
	cursor   int
	selected []model.Document
	loading  bool
	err      string
	width    int
	rows     int
}

// NewDocPicker creates an empty picker.
func NewDocPicker(theme *styles.Theme) *DocPicker {
	ti := textinput.New()
	ti.Placeholder = "filter documents"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return &DocPicker{theme: theme, filter: ti, width: 60, rows: 8}
}

// Open focuses the filter and keeps the current selection.
func (p *DocPicker) Open() tea.Cmd {
	p.filter.SetValue("")
	p.refilter()
	return p.filter.Focus()
}

// SetTheme replaces the theme.
func (p *DocPicker) SetTheme(theme *styles.Theme) {
	p.theme = theme
}

// SetSize sets the dialog width and the number of listed rows.
func (p *DocPicker) SetSize(width, rows int) {
	p.width = max(30, width)
	p.rows = max(3, rows)
	p.filter.Width = p.width - 8
}

// SetLoading marks the listing as being fetched.
func (p *DocPicker) SetLoading(loading bool) {
	p.loading = loading
	if loading {
		p.err = ""
	}
}

// SetError shows a listing failure.
func (p *DocPicker) SetError(msg string) {
	p.loading = false
	p.err = msg
}

// SetDocuments replaces the listing.
func (p *DocPicker) SetDocuments(docs []model.Document) {
	p.loading = false
	p.err = ""
	p.docs = docs
	p.refilter()
}

// Selected returns the chosen documents in selection order.
func (p *DocPicker) Selected() []model.Document {
	return append([]model.Document(nil), p.selected...)
}

// ClearSelection drops all chosen documents.
func (p *DocPicker) ClearSelection() {
	p.selected = nil
}

func (p *DocPicker) refilter() {
	p.visible = FilterDocuments(strings.TrimSpace(p.filter.Value()), p.docs)
	p.cursor = clamp(p.cursor, 0, len(p.visible)-1)
}

func (p *DocPicker) isSelected(id int64) int {
	for i, d := range p.selected {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (p *DocPicker) toggle() {
	if len(p.visible) == 0 {
		return
	}
	doc := p.visible[p.cursor]
	if i := p.isSelected(doc.ID); i >= 0 {
		p.selected = append(p.selected[:i], p.selected[i+1:]...)
		return
	}
	p.selected = append(p.selected, doc)
}

// Update handles a key press. Unhandled keys edit the filter.
func (p *DocPicker) Update(msg tea.KeyMsg) (tea.Cmd, PickerAction) {
	switch msg.String() {
	case "esc":
		p.filter.Blur()
		return nil, PickerCancel
	case "enter":
		p.filter.Blur()
		return nil, PickerDone
	case "up", "ctrl+p":
		p.cursor = max(0, p.cursor-1)
		return nil, PickerNone
	case "down", "ctrl+n":
		p.cursor = clamp(p.cursor+1, 0, len(p.visible)-1)
		return nil, PickerNone
	case "tab":
		p.toggle()
		return nil, PickerNone
	}

	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	p.refilter()
	return cmd, PickerNone
}

// View renders the picker dialog.
func (p *DocPicker) View() string {
	t := p.theme
	lines := []string{
		t.DialogTitle.Render("Attach documents"),
		p.filter.View(),
		"",
	}

	switch {
	case p.loading:
		lines = append(lines, t.Muted.Render("Loading documents..."))
	case p.err != "":
		lines = append(lines, t.RenderError(p.err))
	case len(p.visible) == 0:
		lines = append(lines, t.Muted.Render("No documents match."))
	default:
		start := 0
		if p.cursor >= p.rows {
			start = p.cursor - p.rows + 1
		}
		end := min(len(p.visible), start+p.rows)
		for i := start; i < end; i++ {
			doc := p.visible[i]
			mark := "[ ] "
			if p.isSelected(doc.ID) >= 0 {
				mark = "[x] "
			}
			label := util.TruncateWidth(mark+doc.DisplayLabel(), p.width-6)
			if i == p.cursor {
				lines = append(lines, t.PickerSelected.Render(label))
			} else {
				lines = append(lines, t.PickerItem.Render(label))
			}
		}
	}

	lines = append(lines, "", t.Muted.Render(
		util.IntToString(len(p.selected))+" selected  tab toggle  enter done  esc cancel"))
	return t.Dialog.Width(p.width).Render(strings.Join(lines, "\n"))
}
