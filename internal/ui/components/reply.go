// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/recognaize/companion-tui/internal/format"
	"github.com/recognaize/companion-tui/internal/ui/styles"
)

// ============================================================================
// Structured reply rendering
// ============================================================================

// RenderReply renders a formatted assistant reply for the chat view.
// Template replies become section cards; everything else is rendered
// line by line with heading, bullet, and emphasis styling.
func RenderReply(theme *styles.Theme, reply format.Reply, width int) string {
	if reply.IsTemplate() {
		parts := make([]string, 0, len(reply.Sections))
		for _, sec := range reply.Sections {
			parts = append(parts, renderSection(theme, sec, width))
		}
		return strings.Join(parts, "\n")
	}

	var b strings.Builder
	for i, line := range reply.Lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderLine(theme, line, width))
	}
	return b.String()
}

func renderSection(theme *styles.Theme, sec format.Section, width int) string {
	innerWidth := width - 6
	if innerWidth < 20 {
		innerWidth = 20
	}

	var b strings.Builder
	b.WriteString(theme.SectionTitle.Render(sec.Icon + " " + sec.Title))

	for i, para := range sec.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, line := range WrapText(para, innerWidth) {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}
	for _, bullet := range sec.Bullets {
		b.WriteString("\n")
		for j, line := range WrapText(bullet, innerWidth-2) {
			if j == 0 {
				b.WriteString(theme.ReplyBullet.Render("• "))
			} else {
				b.WriteString("\n  ")
			}
			b.WriteString(line)
		}
	}

	return theme.SectionCard.Width(width - 2).Render(b.String())
}

func renderLine(theme *styles.Theme, line format.Line, width int) string {
	switch line.Kind {
	case format.LineHeading:
		return theme.ReplyHeading.Render(renderSpans(theme, line.Spans))
	case format.LineBullet:
		return theme.ReplyBullet.Render("• ") + renderSpans(theme, line.Spans)
	case format.LineNumbered:
		return theme.ReplyBullet.Render(line.Marker+" ") + renderSpans(theme, line.Spans)
	default:
		return renderSpans(theme, line.Spans)
	}
}

func renderSpans(theme *styles.Theme, spans []format.Span) string {
	var b strings.Builder
	for _, span := range spans {
		if span.Emphasis {
			b.WriteString(theme.ReplyEmphasis.Render(span.Text))
		} else {
			b.WriteString(span.Text)
		}
	}
	return b.String()
}
