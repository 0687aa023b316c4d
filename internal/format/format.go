// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// ============================================================================
// Types
// ============================================================================

// LineKind classifies a generic-path output line.
type LineKind int

const (
	LinePlain LineKind = iota
	LineHeading
	LineBullet
	LineNumbered
)

// Span is a run of text with uniform inline styling.
type Span struct {
	Text     string
	Emphasis bool
}

// Line is one classified line of a generic-path reply. Marker carries the
// original list marker for numbered lines ("1." or "2)") so rendering can
// echo it; bullets use a uniform glyph instead.
type Line struct {
	Kind   LineKind
	Marker string
	Spans  []Span
}

// Section is one block of a template reply.
type Section struct {
	Title      string
	Icon       string
	Paragraphs []string
	Bullets    []string
}

// Reply is the structured form of an assistant message. Exactly one of
// Sections or Lines is populated: Sections for template replies, Lines
// for everything else. An empty message yields both empty.
type Reply struct {
	Sections []Section
	Lines    []Line
}

// IsTemplate reports whether the reply matched the four-topic template.
func (r Reply) IsTemplate() bool {
	return len(r.Sections) > 0
}

// ============================================================================
// Entry point
// ============================================================================

// Format transforms raw assistant text into a structured reply. It is a
// pure function of content: deterministic, never fails, and never drops
// a non-blank line.
func Format(content string) Reply {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if sections, ok := parseTemplate(lines); ok {
		return Reply{Sections: sections}
	}
	return Reply{Lines: parseGeneric(lines)}
}

// ============================================================================
// Generic path
// ============================================================================

var (
	bulletRe   = regexp.MustCompile(`^[•\-*]\s+`)
	numberedRe = regexp.MustCompile(`^(\d+[.)])\s+`)
	hashRe     = regexp.MustCompile(`^(#{1,4})\s+`)
	boldLineRe = regexp.MustCompile(`^\*\*(.+)\*\*(:?)$`)
)

func parseGeneric(lines []string) []Line {
	trimmed := make([]string, 0, len(lines))
	for _, raw := range lines {
		if line := strings.TrimSpace(raw); line != "" {
			trimmed = append(trimmed, line)
		}
	}
	out := make([]Line, 0, len(trimmed))
	for i, line := range trimmed {
		switch {
		case bulletRe.MatchString(line):
			text := bulletRe.ReplaceAllString(line, "")
			out = append(out, Line{Kind: LineBullet, Spans: Spans(text)})
		case numberedRe.MatchString(line):
			m := numberedRe.FindStringSubmatch(line)
			text := strings.TrimSpace(line[len(m[0]):])
			out = append(out, Line{Kind: LineNumbered, Marker: m[1], Spans: Spans(text)})
		case isHeading(line) || leadsListRun(trimmed, i):
			out = append(out, Line{Kind: LineHeading, Spans: []Span{{Text: headingText(line)}}})
		default:
			out = append(out, Line{Kind: LinePlain, Spans: Spans(line)})
		}
	}
	return out
}

// leadsListRun promotes a short plain line into a heading when the line
// right after it starts a bullet or numbered run, so label lines like
// "Plan:" introduce the list that follows them.
func leadsListRun(lines []string, i int) bool {
	const maxLabelLen = 60
	if len(lines[i]) > maxLabelLen || i+1 >= len(lines) {
		return false
	}
	next := lines[i+1]
	return bulletRe.MatchString(next) || numberedRe.MatchString(next)
}

// isHeading recognizes markdown hash headings, fully bold-wrapped lines,
// and shouted all-caps phrases. List markers are checked first by the
// caller, so "* item" never lands here.
func isHeading(line string) bool {
	if hashRe.MatchString(line) {
		return true
	}
	if boldLineRe.MatchString(line) {
		return true
	}
	return isAllCaps(line)
}

// isAllCaps reports whether line is an all-caps phrase of at least four
// letters with no lowercase, optionally ending with a colon.
func isAllCaps(line string) bool {
	line = strings.TrimSuffix(line, ":")
	letters := 0
	for _, r := range line {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			letters++
		}
	}
	return letters >= 4
}

// headingText strips the wrapping markers from a heading line, keeping a
// trailing colon so "Plan:" displays as written.
func headingText(line string) string {
	if m := hashRe.FindStringSubmatch(line); m != nil {
		line = strings.TrimSpace(line[len(m[0]):])
	}
	if m := boldLineRe.FindStringSubmatch(line); m != nil {
		line = m[1] + m[2]
	}
	line = strings.ReplaceAll(line, "*", "")
	return strings.TrimSpace(line)
}
