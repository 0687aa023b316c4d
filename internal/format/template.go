// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"strings"
	"unicode"
)

// ============================================================================
// Four-topic template
// ============================================================================

// templateMarker maps a case-insensitive marker phrase to the icon shown
// next to its section title. Order matters only for detection scanning;
// sections are emitted in the order they appear in the message.
type templateMarker struct {
	phrase string
	icon   string
}

var templateMarkers = []templateMarker{
	{"understanding your results", "📊"},
	{"your personalized action plan", "🎯"},
	{"monitoring your progress", "📅"},
	{"when to see your doctor", "⚕️"},
}

// matchMarker returns the marker whose phrase the line contains, if any.
func matchMarker(line string) (templateMarker, bool) {
	lower := strings.ToLower(line)
	for _, m := range templateMarkers {
		if strings.Contains(lower, m.phrase) {
			return m, true
		}
	}
	return templateMarker{}, false
}

// parseTemplate walks the lines looking for the fixed four-topic marker
// phrases. When at least one is present the whole message is treated as a
// template: each marker line opens a section, lines before the first
// marker are dropped, and within a section bullet-glyph lines become
// bullets while everything else becomes a paragraph. Blank lines are
// skipped. Returns ok=false when no marker is found.
func parseTemplate(lines []string) ([]Section, bool) {
	var sections []Section
	found := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m, ok := matchMarker(line); ok {
			found = true
			sections = append(sections, Section{
				Title: cleanTitle(line),
				Icon:  m.icon,
			})
			continue
		}
		if !found {
			continue
		}
		cur := &sections[len(sections)-1]
		if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") {
			text := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "•"), "-"))
			cur.Bullets = append(cur.Bullets, stripAsterisks(text))
		} else {
			cur.Paragraphs = append(cur.Paragraphs, stripAsterisks(line))
		}
	}
	return sections, found
}

// cleanTitle strips leading non-alphanumeric characters from a marker
// line so the server's own emoji prefix is not shown twice, then removes
// any markdown asterisks.
func cleanTitle(line string) string {
	line = strings.TrimLeftFunc(line, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
}
