// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recognaize/companion-tui/internal/backend"
	"github.com/recognaize/companion-tui/internal/config"
	"github.com/recognaize/companion-tui/internal/model"
	"github.com/recognaize/companion-tui/internal/storage"
)

// ============================================================================
// Screen and status
// ============================================================================

// Screen is the active layout.
type Screen int

const (
	// ScreenUpload is the initial report upload screen.
	ScreenUpload Screen = iota
	// ScreenChat is the conversation screen.
	ScreenChat
)

// Status tracks the single in-flight request. The UI disables the
// triggering controls while a request is outstanding rather than
// queuing a second one.
type Status int

const (
	StatusIdle Status = iota
	StatusUploading
	StatusSending
)

// ============================================================================
// Controller
// ============================================================================

// Controller owns the session state and mediates all service calls.
// It is not safe for concurrent use; all methods run on the Bubble Tea
// update goroutine.
type Controller struct {
	cfg    *config.Config
	client *backend.Client
	store  *storage.SessionStore

	screen     Screen
	transcript *model.Transcript
	report     *model.ReportContext
	status     Status

	// generation invalidates in-flight results across resets.
	generation int

	notice   string
	noticeID int

	uploadStart time.Time
	waitText    string
}

// NewController creates a controller. store may be nil to disable
// session persistence.
func NewController(cfg *config.Config, client *backend.Client, store *storage.SessionStore) *Controller {
	return &Controller{
		cfg:        cfg,
		client:     client,
		store:      store,
		screen:     ScreenUpload,
		transcript: model.NewTranscript(),
	}
}

// Restore loads a previously mirrored session from the store. A
// non-empty restored session lands directly on the chat screen.
func (c *Controller) Restore() error {
	if c.store == nil {
		return nil
	}
	messages, err := c.store.LoadMessages()
	if err != nil {
		return err
	}
	report, err := c.store.LoadReport()
	if err != nil {
		return err
	}
	for _, msg := range messages {
		c.transcript.AppendMessage(msg)
	}
	c.report = report
	if len(messages) > 0 || report != nil {
		c.screen = ScreenChat
	}
	return nil
}

// ============================================================================
// Accessors
// ============================================================================

// Screen returns the active screen.
func (c *Controller) Screen() Screen { return c.screen }

// Status returns the in-flight request status.
func (c *Controller) Status() Status { return c.status }

// Busy reports whether a request is outstanding.
func (c *Controller) Busy() bool { return c.status != StatusIdle }

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []model.Message { return c.transcript.Messages() }

// Report returns the active report context, or nil.
func (c *Controller) Report() *model.ReportContext { return c.report }

// Notice returns the visible error notice, or empty.
func (c *Controller) Notice() string { return c.notice }

// WaitText returns the current upload wait-status message, or empty.
func (c *Controller) WaitText() string { return c.waitText }

// QuickReplies returns the canned prompts to offer.
func (c *Controller) QuickReplies() []string { return c.cfg.UI.QuickReplies }

// ============================================================================
// Upload
// ============================================================================

// Upload starts a report upload. Returns nil when a request is already
// in flight. The returned command runs the upload and a wait ticker
// that escalates the status message while the server cold starts.
func (c *Controller) Upload(path string) tea.Cmd {
	if c.status != StatusIdle {
		return nil
	}
	c.status = StatusUploading
	c.uploadStart = time.Now()
	c.waitText = c.cfg.WaitMessageAt(0)

	gen := c.generation
	client := c.client
	upload := func() tea.Msg {
		result, err := client.Upload(context.Background(), path)
		return UploadResultMsg{Generation: gen, Result: result, Err: err}
	}
	return tea.Batch(upload, c.waitTick(gen))
}

func (c *Controller) waitTick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return WaitTickMsg{Generation: gen}
	})
}

// HandleWaitTick advances the wait-status message and schedules the
// next tick while the upload is still outstanding.
func (c *Controller) HandleWaitTick(msg WaitTickMsg) tea.Cmd {
	if msg.Generation != c.generation || c.status != StatusUploading {
		return nil
	}
	c.waitText = c.cfg.WaitMessageAt(time.Since(c.uploadStart))
	return c.waitTick(msg.Generation)
}

// HandleUploadResult applies a finished upload. On success the report
// context is replaced as a whole and the chat screen opens; on failure
// the previous state stays untouched and a notice is shown.
func (c *Controller) HandleUploadResult(msg UploadResultMsg) tea.Cmd {
	if msg.Generation != c.generation {
		return nil
	}
	c.status = StatusIdle
	c.waitText = ""

	if msg.Err != nil {
		return c.showNotice(backend.UserMessage(msg.Err))
	}

	c.report = &model.ReportContext{
		Filename: msg.Result.Filename,
		Content:  msg.Result.Content,
	}
	c.screen = ScreenChat

	if c.store != nil {
		if err := c.store.SetReport(*c.report); err != nil {
			log.Printf("session: persist report: %v", err)
		}
	}
	return nil
}

// Skip moves to the chat screen without uploading a report.
func (c *Controller) Skip() {
	if c.screen == ScreenUpload && c.status == StatusIdle {
		c.screen = ScreenChat
	}
}

// ============================================================================
// Chat
// ============================================================================

// SendMessage appends the user's message and starts the chat request.
// Empty or whitespace-only text is a no-op, as is a send while another
// request is in flight. The history snapshot is taken before the
// append so the request carries only prior turns.
func (c *Controller) SendMessage(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" || c.status != StatusIdle {
		return nil
	}

	history := c.historyTurns()
	userMsg := c.transcript.Append(model.RoleUser, text)
	c.persistMessage(userMsg)
	c.status = StatusSending

	var fileContext string
	if c.report != nil {
		fileContext = c.report.Content
	}

	gen := c.generation
	client := c.client
	return func() tea.Msg {
		reply, err := client.Chat(context.Background(), text, history, fileContext)
		return ChatResultMsg{Generation: gen, Reply: reply, Err: err}
	}
}

// HandleChatResult applies a finished chat request. The loading status
// clears on every path; a failure keeps the user's message in the
// transcript and appends nothing.
func (c *Controller) HandleChatResult(msg ChatResultMsg) tea.Cmd {
	if msg.Generation != c.generation {
		return nil
	}
	c.status = StatusIdle

	if msg.Err != nil {
		return c.showNotice(backend.UserMessage(msg.Err))
	}

	reply := c.transcript.Append(model.RoleAssistant, msg.Reply)
	c.persistMessage(reply)
	return nil
}

func (c *Controller) historyTurns() []backend.Turn {
	history := c.transcript.History()
	turns := make([]backend.Turn, 0, len(history))
	for _, t := range history {
		turns = append(turns, backend.Turn{Role: t.Role, Content: t.Content})
	}
	return turns
}

func (c *Controller) persistMessage(msg model.Message) {
	if c.store == nil {
		return
	}
	if err := c.store.AppendMessage(msg); err != nil {
		log.Printf("session: persist message: %v", err)
	}
}

// ============================================================================
// Notices
// ============================================================================

// showNotice replaces the visible notice and restarts its expiry timer.
func (c *Controller) showNotice(text string) tea.Cmd {
	c.noticeID++
	c.notice = text
	id := c.noticeID
	return tea.Tick(c.cfg.UI.NoticeDuration(), func(time.Time) tea.Msg {
		return NoticeExpiredMsg{ID: id}
	})
}

// HandleNoticeExpired clears the notice if its expiry is still current.
func (c *Controller) HandleNoticeExpired(msg NoticeExpiredMsg) {
	if msg.ID == c.noticeID {
		c.notice = ""
	}
}

// DismissNotice clears the notice immediately and invalidates any
// pending expiry.
func (c *Controller) DismissNotice() {
	c.notice = ""
	c.noticeID++
}

// ============================================================================
// Reset and warmup
// ============================================================================

// Reset clears the transcript, report context, and notice, returns to
// the upload screen, and invalidates any in-flight results.
func (c *Controller) Reset() {
	c.generation++
	c.transcript.Reset()
	c.report = nil
	c.screen = ScreenUpload
	c.status = StatusIdle
	c.notice = ""
	c.noticeID++
	c.waitText = ""

	if c.store != nil {
		if err := c.store.Reset(); err != nil {
			log.Printf("session: reset store: %v", err)
		}
	}
}

// Warmup returns the best-effort startup health ping command, or nil
// when warmup is disabled.
func (c *Controller) Warmup() tea.Cmd {
	if !c.cfg.Backend.WarmupOnStart {
		return nil
	}
	client := c.client
	return func() tea.Msg {
		return WarmupDoneMsg{Err: client.Warmup(context.Background())}
	}
}

// HandleWarmupDone logs a failed warmup ping and nothing else.
func (c *Controller) HandleWarmupDone(msg WarmupDoneMsg) {
	if msg.Err != nil {
		log.Printf("session: warmup ping failed: %v", msg.Err)
	}
}
