// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the chat session state: the active screen, the
// transcript, the uploaded report context, in-flight request status,
// and the error notice lifecycle.
//
// The Controller is written against the Bubble Tea message loop. Each
// operation returns a tea.Cmd that performs the network call off the
// interface goroutine and delivers a typed message back; the matching
// Handle method applies the result to the state. Results carry the
// generation current when the request started, so a reply that lands
// after a reset is dropped instead of corrupting the fresh session.
package session
