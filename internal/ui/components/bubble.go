// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recognaize/companion-tui/internal/format"
	"github.com/recognaize/companion-tui/internal/model"
	"github.com/recognaize/companion-tui/internal/ui/styles"
)

// ============================================================================
// Chat bubbles
// ============================================================================

// RenderMessage renders a single transcript message as a chat bubble.
// User messages are right-aligned plain text; assistant messages run
// through the reply formatter before styling.
func RenderMessage(theme *styles.Theme, msg model.Message, width int) string {
	bubbleWidth := (width * 3) / 4
	if bubbleWidth < 24 {
		bubbleWidth = 24
	}

	meta := theme.MessageMeta.Render(msg.Role.DisplayName() + " · " + msg.DisplayTime())

	if msg.Role == model.RoleUser {
		body := strings.Join(WrapText(msg.Content, bubbleWidth-4), "\n")
		bubble := theme.UserBubble.Render(body)
		return padLeft(meta, width-2) + "\n" + padLeft(bubble, width-2)
	}

	body := RenderReply(theme, format.Format(msg.Content), bubbleWidth)
	return meta + "\n" + theme.AssistantBubble.Render(body)
}

// padLeft right-aligns a block within the given width.
func padLeft(block string, width int) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		pad := width - lipgloss.Width(line)
		if pad > 0 {
			lines[i] = strings.Repeat(" ", pad) + line
		}
	}
	return strings.Join(lines, "\n")
}
