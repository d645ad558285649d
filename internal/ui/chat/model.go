// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/scroll"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/store"
	"github.com/jeranaias/rigchat/internal/theme"
	"github.com/jeranaias/rigchat/internal/ui/components"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// AnimationDelay is how long a freshly replied message keeps its
// entrance badge.
const AnimationDelay = 1500 * time.Millisecond

// Layout rows outside the viewport: header, context line, input border,
// status bar.
const (
	headerHeight  = 1
	contextHeight = 1
	inputChrome   = 1
	statusHeight  = 1
	inputRows     = 3
)

// Screen is the active screen.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenChat
)

// =============================================================================
// MODEL
// =============================================================================

// Deps are the collaborators of the chat model.
type Deps struct {
	Orchestrator *core.Orchestrator
	Mailbox      *store.Mailbox
	Backend      Backend
	Session      *session.Store
	Themes       *theme.Store
	Toasts       *components.ToastManager
	Activity     *session.Activity
	Events       *Events
	Config       *config.Config

	// BaseURL is shown on the sign-in screen.
	BaseURL string

	// NewTheme builds the theme for a preference. Defaults to styles.NewTheme.
	NewTheme func(theme.Preference) *styles.Theme
}

// Model is the Bubble Tea model of the chat client.
type Model struct {
	ctx  context.Context
	deps Deps
	cfg  *config.Config
	keys KeyMap

	theme *styles.Theme
	pref  theme.Preference

	screen Screen
	width  int
	height int

	viewport *components.ChatViewport
	renderer *components.MessageRenderer
	chor     *scroll.Choreographer
	status   *components.StatusBar
	picker   *components.DocPicker
	login    *loginForm
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model

	snap      store.Snapshot
	animating map[model.MessageID]bool

	sending      bool
	pickerOpen   bool
	confirmClear bool
	showHelp     bool

	unsubscribe func()
}

// New creates the model. The session decides the first screen.
func New(ctx context.Context, deps Deps) Model {
	if deps.NewTheme == nil {
		deps.NewTheme = styles.NewTheme
	}
	if deps.Toasts == nil {
		deps.Toasts = components.NewToastManager()
	}
	if deps.Activity == nil {
		deps.Activity = session.NewActivity()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	pref := theme.Default()
	if deps.Themes != nil {
		pref = deps.Themes.Preference()
	}
	th := deps.NewTheme(pref)

	vp := components.NewChatViewport(th)
	vp.SetGap(styles.Gap(pref.Density))
	vp.SetOrigin(headerHeight)

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 4000
	ta.SetHeight(inputRows)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:       ctx,
		deps:      deps,
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		theme:     th,
		pref:      pref,
		viewport:  vp,
		renderer:  components.NewMessageRenderer(th),
		chor:      scroll.New(vp, NewScheduler(deps.Events), cfg.Scroll.Options()),
		status:    components.NewStatusBar(th),
		picker:    components.NewDocPicker(th),
		login:     newLoginForm(),
		input:     ta,
		spinner:   sp,
		help:      help.New(),
		animating: map[model.MessageID]bool{},
		width:     80,
		height:    24,
	}
	m.help.ShowAll = true

	if deps.Session != nil {
		events := deps.Events
		m.unsubscribe = deps.Session.OnChange(func(u *model.User) {
			events.Send(SessionChangedMsg{User: u})
		})
		if deps.Session.Authenticated() {
			m.screen = ScreenChat
		}
	}
	if m.screen == ScreenChat {
		m.input.Focus()
	}
	m.layout()
	return m
}

// Init starts the listeners, the tickers and the first history load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.deps.Events.Listen(),
		WaitStoreCmd(m.ctx, m.deps.Mailbox),
		m.spinner.Tick,
		components.ToastTickCmd(),
		session.TickCmd(),
	}
	if m.screen == ScreenChat {
		cmds = append(cmds, textarea.Blink, LoadHistoryCmd(m.ctx, m.deps.Orchestrator))
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Close releases the session subscription and stops pending scrolls.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.chor.Close()
}

// Screen returns the active screen.
func (m Model) Screen() Screen {
	return m.screen
}

// Viewport returns the scroll container.
func (m Model) Viewport() *components.ChatViewport {
	return m.viewport
}

// Choreographer returns the scroll choreographer.
func (m Model) Choreographer() *scroll.Choreographer {
	return m.chor
}

// Toasts returns the notification manager.
func (m Model) Toasts() *components.ToastManager {
	return m.deps.Toasts
}

// Snapshot returns the last store snapshot seen by the model.
func (m Model) Snapshot() store.Snapshot {
	return m.snap
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) layout() {
	vh := m.height - headerHeight - contextHeight - inputChrome - inputRows - statusHeight
	m.viewport.SetSize(m.width, max(1, vh))
	m.renderer.SetWidth(m.wrapWidth())
	m.input.SetWidth(max(10, m.width-2))
	m.status.SetWidth(m.width)
	m.picker.SetSize(min(70, m.width-4), max(3, vh-10))
	m.login.setWidth(min(60, m.width-4))
	m.help.Width = m.width - 4
}

func (m *Model) wrapWidth() int {
	if w := m.cfg.UI.WordWrap; w > 0 && w < m.width {
		return w
	}
	return m.width
}

// rerender rebuilds the blocks from the last snapshot.
func (m *Model) rerender() {
	m.viewport.SetBlocks(m.renderer.Blocks(m.snap.Sorted))
}

// relayout re-renders after a geometry or style change and lets the
// choreographer follow the bottom.
func (m *Model) relayout() tea.Cmd {
	m.chor.Sync()
	m.layout()
	m.rerender()
	m.chor.ContentResized()
	return m.viewport.AnimationCmd()
}

func (m *Model) applyTheme(pref theme.Preference) tea.Cmd {
	m.pref = pref
	m.theme = m.deps.NewTheme(pref)
	m.viewport.SetTheme(m.theme)
	m.viewport.SetGap(styles.Gap(pref.Density))
	m.renderer.SetTheme(m.theme)
	m.status.SetTheme(m.theme)
	m.picker.SetTheme(m.theme)
	return m.relayout()
}

func (m *Model) refreshStatus() {
	st := m.status
	st.User = ""
	if m.deps.Session != nil {
		st.User = m.deps.Session.User().DisplayName()
	}
	switch {
	case m.sending:
		st.Status = components.StatusSending
	case m.snap.Loading:
		st.Status = components.StatusLoading
	case m.snap.Err != nil:
		st.Status = components.StatusError
	default:
		st.Status = components.StatusReady
	}
	st.Messages = len(m.snap.Sorted)
	st.Scroll = m.chor.State().String()
	st.Position = m.viewport.ScrollPosition()
	st.Session = "session " + session.FormatDuration(m.deps.Activity.GetStatus().Duration)
}
