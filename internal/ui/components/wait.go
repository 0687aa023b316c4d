// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/recognaize/companion-tui/internal/ui/styles"
)

// ============================================================================
// Wait status line
// ============================================================================

// RenderWaitStatus renders the escalating wait message shown while a
// slow operation is in flight, prefixed with the spinner frame.
func RenderWaitStatus(theme *styles.Theme, spinner, text string) string {
	if text == "" {
		return ""
	}
	return theme.Spinner.Render(spinner) + " " + theme.WaitStatus.Render(text)
}
