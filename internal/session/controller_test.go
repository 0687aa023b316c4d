// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recognaize/companion-tui/internal/backend"
	"github.com/recognaize/companion-tui/internal/config"
	"github.com/recognaize/companion-tui/internal/model"
	"github.com/recognaize/companion-tui/internal/storage"
)

func newTestController(t *testing.T, handler http.HandlerFunc) *Controller {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.Default()
	return NewController(cfg, backend.NewClient(server.URL), nil)
}

// collectMsg executes a command, unpacking batches in order, until a
// produced message satisfies want.
func collectMsg(t *testing.T, cmd tea.Cmd, want func(tea.Msg) bool) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if want(msg) {
			return msg
		}
	}
	t.Fatal("expected message not produced")
	return nil
}

func isUploadResult(msg tea.Msg) bool { _, ok := msg.(UploadResultMsg); return ok }

func TestSendMessageEmptyIsNoop(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	assert.Nil(t, ctrl.SendMessage(""))
	assert.Nil(t, ctrl.SendMessage("   \n\t"))
	assert.Equal(t, 0, len(ctrl.Messages()))
	assert.Equal(t, StatusIdle, ctrl.Status())
}

func TestSendMessageSuccess(t *testing.T) {
	var gotHistory []backend.Turn
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message             string         `json:"message"`
			ConversationHistory []backend.Turn `json:"conversation_history"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotHistory = body.ConversationHistory
		json.NewEncoder(w).Encode(map[string]string{"reply": "You are doing well."})
	})

	cmd := ctrl.SendMessage("how am I doing?")
	require.NotNil(t, cmd)

	// Optimistic append happened before the request finished.
	require.Equal(t, 1, len(ctrl.Messages()))
	assert.Equal(t, model.RoleUser, ctrl.Messages()[0].Role)
	assert.Equal(t, StatusSending, ctrl.Status())

	result := cmd().(ChatResultMsg)
	assert.Nil(t, ctrl.HandleChatResult(result))

	messages := ctrl.Messages()
	require.Equal(t, 2, len(messages))
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
	assert.Equal(t, "You are doing well.", messages[1].Content)
	assert.Equal(t, StatusIdle, ctrl.Status())

	// History excludes the message being sent.
	assert.Empty(t, gotHistory)
}

func TestSendMessageHistoryCarriesPriorTurns(t *testing.T) {
	var gotHistory []backend.Turn
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ConversationHistory []backend.Turn `json:"conversation_history"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotHistory = body.ConversationHistory
		json.NewEncoder(w).Encode(map[string]string{"reply": "ok"})
	})

	first := ctrl.SendMessage("first")
	ctrl.HandleChatResult(first().(ChatResultMsg))

	second := ctrl.SendMessage("second")
	ctrl.HandleChatResult(second().(ChatResultMsg))

	require.Len(t, gotHistory, 2)
	assert.Equal(t, backend.Turn{Role: "user", Content: "first"}, gotHistory[0])
	assert.Equal(t, backend.Turn{Role: "assistant", Content: "ok"}, gotHistory[1])
}

func TestSendMessageBlockedWhileInFlight(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"reply": "ok"})
	})

	cmd := ctrl.SendMessage("first")
	require.NotNil(t, cmd)
	assert.Nil(t, ctrl.SendMessage("second"))
	assert.Equal(t, 1, len(ctrl.Messages()))
}

func TestSendMessageFailureKeepsUserMessage(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "model overloaded"})
	})

	cmd := ctrl.SendMessage("hello")
	noticeCmd := ctrl.HandleChatResult(cmd().(ChatResultMsg))
	require.NotNil(t, noticeCmd)

	messages := ctrl.Messages()
	require.Equal(t, 1, len(messages))
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, StatusIdle, ctrl.Status())
	assert.Equal(t, "model overloaded", ctrl.Notice())
}

func TestNoticeAutoExpires(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad input"})
	})
	ctrl.cfg.UI.NoticeSecs = 1

	cmd := ctrl.SendMessage("hello")
	noticeCmd := ctrl.HandleChatResult(cmd().(ChatResultMsg))
	require.NotNil(t, noticeCmd)
	assert.Equal(t, "bad input", ctrl.Notice())

	expired := noticeCmd().(NoticeExpiredMsg)
	ctrl.HandleNoticeExpired(expired)
	assert.Empty(t, ctrl.Notice())
}

func TestNewNoticeInvalidatesOldExpiry(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "failure"})
	})
	ctrl.cfg.UI.NoticeSecs = 1

	first := ctrl.HandleChatResult(ctrl.SendMessage("one")().(ChatResultMsg))
	second := ctrl.HandleChatResult(ctrl.SendMessage("two")().(ChatResultMsg))
	require.NotNil(t, first)
	require.NotNil(t, second)

	// The first notice's expiry fires after the second notice replaced
	// it and must not dismiss the replacement.
	ctrl.HandleNoticeExpired(first().(NoticeExpiredMsg))
	assert.Equal(t, "failure", ctrl.Notice())

	ctrl.HandleNoticeExpired(second().(NoticeExpiredMsg))
	assert.Empty(t, ctrl.Notice())
}

func TestDismissNoticeInvalidatesExpiry(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "failure"})
	})
	ctrl.cfg.UI.NoticeSecs = 1

	expiry := ctrl.HandleChatResult(ctrl.SendMessage("one")().(ChatResultMsg))
	ctrl.DismissNotice()
	assert.Empty(t, ctrl.Notice())

	// A notice shown after the dismissal survives the old expiry.
	ctrl.HandleChatResult(ctrl.SendMessage("two")().(ChatResultMsg))
	ctrl.HandleNoticeExpired(expiry().(NoticeExpiredMsg))
	assert.Equal(t, "failure", ctrl.Notice())
}

func TestUploadSuccess(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		json.NewEncoder(w).Encode(backend.UploadResult{
			Filename: header.Filename,
			Content:  "extracted report text",
		})
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("scores"), 0o644))

	cmd := ctrl.Upload(path)
	assert.Equal(t, StatusUploading, ctrl.Status())
	assert.NotEmpty(t, ctrl.WaitText())

	msg := collectMsg(t, cmd, isUploadResult)
	assert.Nil(t, ctrl.HandleUploadResult(msg.(UploadResultMsg)))

	assert.Equal(t, ScreenChat, ctrl.Screen())
	assert.Equal(t, StatusIdle, ctrl.Status())
	assert.Empty(t, ctrl.WaitText())
	require.NotNil(t, ctrl.Report())
	assert.Equal(t, "report.txt", ctrl.Report().Filename)
	assert.Equal(t, "extracted report text", ctrl.Report().Content)
}

func TestUploadFailureLeavesStateUntouched(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "unsupported file type"})
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "report.bin")
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))

	cmd := ctrl.Upload(path)
	msg := collectMsg(t, cmd, isUploadResult)
	noticeCmd := ctrl.HandleUploadResult(msg.(UploadResultMsg))
	require.NotNil(t, noticeCmd)

	assert.Equal(t, ScreenUpload, ctrl.Screen())
	assert.Nil(t, ctrl.Report())
	assert.Equal(t, StatusIdle, ctrl.Status())
	assert.Equal(t, "unsupported file type", ctrl.Notice())
}

func TestUploadReplacesReportWhole(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		json.NewEncoder(w).Encode(backend.UploadResult{
			Filename: header.Filename,
			Content:  "text of " + header.Filename,
		})
	})

	dir := t.TempDir()
	for _, name := range []string{"first.txt", "second.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
		msg := collectMsg(t, ctrl.Upload(path), isUploadResult)
		ctrl.HandleUploadResult(msg.(UploadResultMsg))
	}

	require.NotNil(t, ctrl.Report())
	assert.Equal(t, "second.txt", ctrl.Report().Filename)
	assert.Equal(t, "text of second.txt", ctrl.Report().Content)
}

func TestWaitMessageEscalates(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {})
	ctrl.status = StatusUploading
	ctrl.uploadStart = time.Now().Add(-11 * time.Second)

	next := ctrl.HandleWaitTick(WaitTickMsg{Generation: ctrl.generation})
	require.NotNil(t, next)
	assert.Equal(t, "Still connecting, hang tight...", ctrl.WaitText())

	// Ticks from a previous session are ignored.
	ctrl.waitText = ""
	assert.Nil(t, ctrl.HandleWaitTick(WaitTickMsg{Generation: ctrl.generation - 1}))
	assert.Empty(t, ctrl.WaitText())
}

func TestSkip(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {})
	ctrl.Skip()
	assert.Equal(t, ScreenChat, ctrl.Screen())
	assert.Nil(t, ctrl.Report())
}

func TestResetClearsEverything(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"reply": "ok"})
	})
	ctrl.report = &model.ReportContext{Filename: "a.pdf", Content: "text"}
	ctrl.screen = ScreenChat
	ctrl.notice = "old error"

	cmd := ctrl.SendMessage("hello")
	ctrl.HandleChatResult(cmd().(ChatResultMsg))
	require.NotEmpty(t, ctrl.Messages())

	ctrl.Reset()

	assert.Empty(t, ctrl.Messages())
	assert.Nil(t, ctrl.Report())
	assert.Equal(t, ScreenUpload, ctrl.Screen())
	assert.Equal(t, StatusIdle, ctrl.Status())
	assert.Empty(t, ctrl.Notice())
}

func TestStaleChatResultDroppedAfterReset(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"reply": "late reply"})
	})

	cmd := ctrl.SendMessage("hello")
	result := cmd().(ChatResultMsg)

	ctrl.Reset()
	assert.Nil(t, ctrl.HandleChatResult(result))
	assert.Empty(t, ctrl.Messages())
	assert.Equal(t, StatusIdle, ctrl.Status())
}

func TestRestoreFromStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := storage.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(model.NewMessage(model.RoleUser, "hello")))
	require.NoError(t, store.AppendMessage(model.NewMessage(model.RoleAssistant, "hi")))
	require.NoError(t, store.SetReport(model.ReportContext{Filename: "r.pdf", Content: "text"}))
	defer store.Close()

	ctrl := NewController(config.Default(), backend.NewClient(""), store)
	require.NoError(t, ctrl.Restore())

	assert.Equal(t, ScreenChat, ctrl.Screen())
	require.Len(t, ctrl.Messages(), 2)
	assert.Equal(t, "hello", ctrl.Messages()[0].Content)
	require.NotNil(t, ctrl.Report())
	assert.Equal(t, "r.pdf", ctrl.Report().Filename)
}

func TestRestoreEmptyStaysOnUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := storage.Open(path)
	require.NoError(t, err)
	defer store.Close()

	ctrl := NewController(config.Default(), backend.NewClient(""), store)
	require.NoError(t, ctrl.Restore())
	assert.Equal(t, ScreenUpload, ctrl.Screen())
}

func TestWarmupDisabled(t *testing.T) {
	ctrl := newTestController(t, func(w http.ResponseWriter, r *http.Request) {})
	ctrl.cfg.Backend.WarmupOnStart = false
	assert.Nil(t, ctrl.Warmup())
}
