// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/recognaize/companion-tui/internal/backend"

// ============================================================================
// Controller messages
// ============================================================================

// UploadResultMsg is delivered when an upload request finishes.
type UploadResultMsg struct {
	Generation int
	Result     *backend.UploadResult
	Err        error
}

// ChatResultMsg is delivered when a chat request finishes.
type ChatResultMsg struct {
	Generation int
	Reply      string
	Err        error
}

// WaitTickMsg drives the escalating wait-status message while an
// upload is outstanding.
type WaitTickMsg struct {
	Generation int
}

// NoticeExpiredMsg dismisses the error notice whose ID matches the one
// still showing. A stale ID from a superseded notice is ignored.
type NoticeExpiredMsg struct {
	ID int
}

// WarmupDoneMsg reports the best-effort startup health ping. The error
// is logged and otherwise ignored.
type WarmupDoneMsg struct {
	Err error
}
