// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recognaize/companion-tui/internal/session"
	"github.com/recognaize/companion-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	if !m.ready {
		return "Starting up..."
	}

	reportName := ""
	if report := m.ctrl.Report(); report != nil {
		reportName = report.Filename
	}

	sections := []string{
		components.RenderHeader(m.theme, reportName, m.width),
	}

	switch m.ctrl.Screen() {
	case session.ScreenUpload:
		sections = append(sections, m.viewUpload())
	case session.ScreenChat:
		sections = append(sections, m.viewChat())
	}

	if notice := m.ctrl.Notice(); notice != "" {
		sections = append(sections, components.RenderNotice(m.theme, notice, m.width))
	}

	sections = append(sections, m.viewStatusBar())

	return m.theme.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// =============================================================================
// UPLOAD SCREEN
// =============================================================================

func (m Model) viewUpload() string {
	var b strings.Builder

	b.WriteString(m.theme.UploadTitle.Render("Share your assessment report"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.UploadHint.Render(
		"Your report gives the assistant context for personalized answers.\n" +
			"It stays on this device and is only sent with your questions."))
	b.WriteString("\n\n")
	b.WriteString(m.theme.InputContainer.Render(m.pathInput.View()))
	b.WriteString("\n\n")

	if m.ctrl.Status() == session.StatusUploading {
		b.WriteString(components.RenderWaitStatus(m.theme, m.spinner.View(), m.ctrl.WaitText()))
	} else {
		b.WriteString(m.theme.UploadHint.Render(
			m.theme.ShortcutKey.Render("enter") + " upload   " +
				m.theme.ShortcutKey.Render("esc") + " skip for now"))
	}

	box := m.theme.UploadBox.Width(m.width - 4).Render(b.String())
	return lipgloss.Place(m.width, m.height-6, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

func (m Model) viewChat() string {
	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.ctrl.Status() == session.StatusSending {
		b.WriteString(components.RenderWaitStatus(m.theme, m.spinner.View(), "Thinking..."))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.InputContainer.Width(m.width - 4).Render(
		m.theme.InputPrompt.Render("> ") + m.input.View()))

	if replies := m.ctrl.QuickReplies(); len(replies) > 0 {
		b.WriteString("\n")
		b.WriteString(m.viewQuickReplies(replies))
	}

	return b.String()
}

func (m Model) viewQuickReplies(replies []string) string {
	chips := make([]string, 0, len(replies))
	for i, reply := range replies {
		style := m.theme.QuickReply
		if i == m.quickIndex {
			style = style.Reverse(true)
		}
		chips = append(chips, style.Render(reply))
	}
	return lipgloss.NewStyle().Width(m.width - 4).Render(strings.Join(chips, " "))
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) viewStatusBar() string {
	parts := []string{
		m.theme.ShortcutKey.Render("Tab") + " quick replies",
		m.theme.ShortcutKey.Render("C-r") + " new session",
		m.theme.ShortcutKey.Render("C-c") + " quit",
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  ·  "))
}
