// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the rendering building blocks for the
// companion TUI: the header, chat bubbles, structured reply layout,
// error notices, and the upload wait status line.
//
// Components are pure render functions over the session state; they
// hold no state of their own beyond the shared Theme.
package components
