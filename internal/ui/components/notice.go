// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/recognaize/companion-tui/internal/ui/styles"
)

// ============================================================================
// Notice box
// ============================================================================

// RenderNotice renders a transient notice banner above the input area.
// The box wraps its text to fit the available width and carries a
// dismiss hint on the last line.
func RenderNotice(theme *styles.Theme, text string, width int) string {
	if text == "" {
		return ""
	}

	boxWidth := width - 4
	if boxWidth < 20 {
		boxWidth = 20
	}

	var b strings.Builder
	for i, line := range WrapText(text, boxWidth-4) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	b.WriteString("\n")
	b.WriteString(theme.ShortcutKey.Render("esc"))
	b.WriteString(theme.MessageMeta.Render(" dismiss"))

	return theme.NoticeBox.Width(boxWidth).Render(b.String())
}

// ============================================================================
// Text wrapping
// ============================================================================

// WrapText breaks text into lines no wider than maxWidth display cells,
// preferring word boundaries. Widths are measured in terminal cells so
// wide runes count double.
func WrapText(text string, maxWidth int) []string {
	if maxWidth < 1 {
		maxWidth = 1
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(para, maxWidth)...)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func wrapParagraph(para string, maxWidth int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0

	for _, word := range words {
		w := runewidth.StringWidth(word)
		switch {
		case curWidth == 0:
			// First word on the line always goes down, truncated if
			// it alone exceeds the width.
			if w > maxWidth {
				word = runewidth.Truncate(word, maxWidth, "…")
				w = runewidth.StringWidth(word)
			}
			cur.WriteString(word)
			curWidth = w
		case curWidth+1+w <= maxWidth:
			cur.WriteString(" ")
			cur.WriteString(word)
			curWidth += 1 + w
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			if w > maxWidth {
				word = runewidth.Truncate(word, maxWidth, "…")
				w = runewidth.StringWidth(word)
			}
			cur.WriteString(word)
			curWidth = w
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
