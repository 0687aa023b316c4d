// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns an assistant reply's plain text into a structured
// layout for rendering.
//
// Two shapes come out of the backend. Replies that follow the fixed
// four-topic guidance template (understanding results / action plan /
// monitoring / doctor referral) become a sequence of icon-titled sections
// with paragraphs and bullets. Everything else goes through a generic
// line classifier that recognizes headings, bullet lists, numbered lists,
// and inline **emphasis**.
//
// Formatting is a pure function of the message content: no side effects,
// no errors. Unrecognized structure degrades to plain lines and no
// non-blank input line is ever dropped.
package format
