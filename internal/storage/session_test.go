// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recognaize/companion-tui/internal/model"
)

func openTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndLoadMessages(t *testing.T) {
	store := openTestStore(t)

	first := model.NewMessage(model.RoleUser, "hello")
	second := model.NewMessage(model.RoleAssistant, "hi there")
	require.NoError(t, store.AppendMessage(first))
	require.NoError(t, store.AppendMessage(second))

	loaded, err := store.LoadMessages()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, first.ID, loaded[0].ID)
	assert.Equal(t, model.RoleUser, loaded[0].Role)
	assert.Equal(t, "hello", loaded[0].Content)
	assert.Equal(t, second.ID, loaded[1].ID)
	assert.Equal(t, model.RoleAssistant, loaded[1].Role)
}

func TestLoadMessagesEmpty(t *testing.T) {
	store := openTestStore(t)

	loaded, err := store.LoadMessages()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestReportReplacedWhole(t *testing.T) {
	store := openTestStore(t)

	report, err := store.LoadReport()
	require.NoError(t, err)
	assert.Nil(t, report)

	require.NoError(t, store.SetReport(model.ReportContext{Filename: "a.pdf", Content: "first"}))
	require.NoError(t, store.SetReport(model.ReportContext{Filename: "b.pdf", Content: "second"}))

	report, err = store.LoadReport()
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "b.pdf", report.Filename)
	assert.Equal(t, "second", report.Content)
}

func TestResetWipesEverything(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.AppendMessage(model.NewMessage(model.RoleUser, "hello")))
	require.NoError(t, store.SetReport(model.ReportContext{Filename: "a.pdf", Content: "text"}))

	require.NoError(t, store.Reset())

	loaded, err := store.LoadMessages()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	report, err := store.LoadReport()
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestReopenKeepsSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(model.NewMessage(model.RoleUser, "persisted")))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadMessages()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "persisted", loaded[0].Content)
}
