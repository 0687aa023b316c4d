// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/recognaize/companion-tui/internal/ui/styles"
	"github.com/recognaize/companion-tui/internal/util"
)

// ============================================================================
// Header bar
// ============================================================================

const (
	appTitle    = "ReCOGnAIze Companion"
	appSubtitle = "Your cognitive health assistant"
)

// RenderHeader renders the top bar with the app title and, when a
// report has been uploaded, a badge naming the active report file.
func RenderHeader(theme *styles.Theme, reportName string, width int) string {
	title := theme.HeaderTitle.Render(appTitle)
	subtitle := theme.HeaderSubtitle.Render(appSubtitle)

	left := lipgloss.JoinVertical(lipgloss.Left, title, subtitle)
	if reportName == "" {
		return theme.Header.Width(width).Render(left)
	}

	badge := theme.ReportBadge.Render("📄 " + util.Truncate(reportName, 28))
	gap := width - lipgloss.Width(left) - lipgloss.Width(badge) - 4
	if gap < 1 {
		gap = 1
	}
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, left, lipgloss.NewStyle().Width(gap).Render(""), badge)
	return theme.Header.Width(width).Render(row)
}
