// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the Bubble Tea application model for the
// companion TUI. It owns the terminal layout and input handling and
// delegates all session semantics to the session controller.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recognaize/companion-tui/internal/backend"
	"github.com/recognaize/companion-tui/internal/config"
	"github.com/recognaize/companion-tui/internal/session"
	"github.com/recognaize/companion-tui/internal/ui/components"
	"github.com/recognaize/companion-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ConfigReloadedMsg carries a freshly loaded config snapshot from the
// file watcher. It is applied inside Update so the shared config is
// only ever mutated on the Bubble Tea goroutine.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root Bubble Tea model for the companion.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config
	ctrl  *session.Controller

	width  int
	height int
	ready  bool

	viewport  viewport.Model
	input     textinput.Model
	pathInput textinput.Model
	spinner   spinner.Model
	keys      KeyMap

	// Index into the quick reply list, -1 when none is selected.
	quickIndex int
}

// New creates the application model around a configured controller.
func New(cfg *config.Config, ctrl *session.Controller) Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Type your question..."
	input.CharLimit = 2000
	input.Prompt = ""

	pathInput := textinput.New()
	pathInput.Placeholder = "Path to your assessment report (" +
		strings.Join(backend.UploadExtensions, ", ") + ")"
	pathInput.CharLimit = 1000
	pathInput.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		theme:      theme,
		cfg:        cfg,
		ctrl:       ctrl,
		input:      input,
		pathInput:  pathInput,
		spinner:    sp,
		keys:       DefaultKeyMap(),
		quickIndex: -1,
	}
	m.focusForScreen()
	return m
}

// Init starts the spinner, cursor blink, and the backend warm-up.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.ctrl.Warmup(),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		m.ready = true
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case session.UploadResultMsg:
		cmd := m.ctrl.HandleUploadResult(msg)
		m.focusForScreen()
		m.refreshTranscript()
		return m, cmd

	case session.ChatResultMsg:
		cmd := m.ctrl.HandleChatResult(msg)
		m.refreshTranscript()
		return m, cmd

	case session.WaitTickMsg:
		return m, m.ctrl.HandleWaitTick(msg)

	case session.NoticeExpiredMsg:
		m.ctrl.HandleNoticeExpired(msg)
		return m, nil

	case session.WarmupDoneMsg:
		m.ctrl.HandleWarmupDone(msg)
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config != nil {
			m.cfg.UI = msg.Config.UI
		}
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		if m.ctrl.Notice() != "" {
			m.ctrl.DismissNotice()
			return m, nil
		}
		if m.ctrl.Screen() == session.ScreenUpload {
			m.ctrl.Skip()
			m.focusForScreen()
			m.refreshTranscript()
		}
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
		m.input.Reset()
		m.pathInput.Reset()
		m.quickIndex = -1
		m.focusForScreen()
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keys.QuickReply):
		if m.ctrl.Screen() == session.ScreenChat {
			m.cycleQuickReply()
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	// Typing clears any pending quick reply selection.
	m.quickIndex = -1
	return m.updateFocusedInput(msg)
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	switch m.ctrl.Screen() {
	case session.ScreenUpload:
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			return m, nil
		}
		return m, m.ctrl.Upload(path)

	case session.ScreenChat:
		text := strings.TrimSpace(m.input.Value())
		cmd := m.ctrl.SendMessage(text)
		if cmd == nil {
			return m, nil
		}
		m.input.Reset()
		m.quickIndex = -1
		m.refreshTranscript()
		return m, cmd
	}
	return m, nil
}

// cycleQuickReply steps through the configured quick replies, loading
// each into the input so it can be edited before sending.
func (m *Model) cycleQuickReply() {
	replies := m.ctrl.QuickReplies()
	if len(replies) == 0 {
		return
	}
	m.quickIndex = (m.quickIndex + 1) % len(replies)
	m.input.SetValue(replies[m.quickIndex])
	m.input.CursorEnd()
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.ctrl.Screen() {
	case session.ScreenUpload:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case session.ScreenChat:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// LAYOUT AND FOCUS
// =============================================================================

func (m *Model) layout() {
	// Header, input area, and status bar are fixed; the transcript
	// viewport takes the rest.
	chromeHeight := 9
	vpHeight := m.height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.width-2, vpHeight)
	} else {
		m.viewport.Width = m.width - 2
		m.viewport.Height = vpHeight
	}

	inputWidth := m.width - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	m.input.Width = inputWidth
	m.pathInput.Width = inputWidth
}

func (m *Model) focusForScreen() {
	switch m.ctrl.Screen() {
	case session.ScreenUpload:
		m.input.Blur()
		m.pathInput.Focus()
	case session.ScreenChat:
		m.pathInput.Blur()
		m.input.Focus()
	}
}

// refreshTranscript re-renders the conversation into the viewport and
// keeps it pinned to the latest message.
func (m *Model) refreshTranscript() {
	if m.viewport.Width == 0 {
		return
	}

	msgs := m.ctrl.Messages()
	if len(msgs) == 0 {
		m.viewport.SetContent(m.theme.MessageMeta.Render(
			"Ask anything about your assessment results."))
		return
	}

	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, components.RenderMessage(m.theme, msg, m.viewport.Width))
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
	m.viewport.GotoBottom()
}
