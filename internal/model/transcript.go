// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the ordered session conversation. Messages are append-only:
// entries are never edited, removed, or reordered. Only Reset clears it.
type Transcript struct {
	messages []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{messages: make([]Message, 0)}
}

// Append adds a message with the given role and content and returns it.
func (t *Transcript) Append(role Role, content string) Message {
	msg := NewMessage(role, content)
	t.messages = append(t.messages, msg)
	return msg
}

// AppendMessage adds an already-built message, preserving its ID and
// timestamp. Used when restoring a persisted session.
func (t *Transcript) AppendMessage(msg Message) {
	t.messages = append(t.messages, msg)
}

// Messages returns a copy of the transcript in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message and true, or a zero message and
// false when the transcript is empty.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// History returns the transcript as wire turns, in order.
func (t *Transcript) History() []Turn {
	turns := make([]Turn, 0, len(t.messages))
	for _, msg := range t.messages {
		turns = append(turns, Turn{Role: msg.Role.String(), Content: msg.Content})
	}
	return turns
}

// Reset clears the transcript. This is the only way messages are removed.
func (t *Transcript) Reset() {
	t.messages = t.messages[:0]
}

// =============================================================================
// REPORT CONTEXT
// =============================================================================

// ReportContext is the extracted text of an uploaded assessment report,
// attached to every chat request until cleared. At most one is active; a new
// upload replaces the previous one as a whole, so observers never see a
// mixed filename/content pair.
type ReportContext struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
