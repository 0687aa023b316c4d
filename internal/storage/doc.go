// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage mirrors the active chat session to a local SQLite
// database so a restart can restore the conversation.
//
// The mirror is best effort and holds exactly one session: the ordered
// transcript plus the active report context. An explicit reset wipes
// both. Write failures are surfaced to the caller but never block the
// conversation itself.
package storage
