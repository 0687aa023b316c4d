// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import "strings"

// ============================================================================
// Inline emphasis
// ============================================================================

// Spans splits text into runs of plain and emphasized text. Substrings
// wrapped in double asterisks become emphasized spans; every other
// asterisk is markdown noise and stripped so none appears literally.
func Spans(text string) []Span {
	var spans []Span
	for {
		open := strings.Index(text, "**")
		if open < 0 {
			break
		}
		end := strings.Index(text[open+2:], "**")
		if end < 0 {
			break
		}
		end += open + 2
		if before := text[:open]; before != "" {
			spans = append(spans, Span{Text: stripAsterisks(before)})
		}
		if inner := stripAsterisks(text[open+2 : end]); inner != "" {
			spans = append(spans, Span{Text: inner, Emphasis: true})
		}
		text = text[end+2:]
	}
	if text != "" {
		spans = append(spans, Span{Text: stripAsterisks(text)})
	}
	return spans
}

// PlainText flattens spans back to unstyled text.
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func stripAsterisks(s string) string {
	return strings.ReplaceAll(s, "*", "")
}
