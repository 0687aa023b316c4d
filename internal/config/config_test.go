// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 90, cfg.Backend.TimeoutSecs)
	assert.True(t, cfg.Backend.WarmupOnStart)
	assert.True(t, cfg.Session.PersistEnabled)
	assert.Equal(t, 6, cfg.UI.NoticeSecs)
	assert.NotEmpty(t, cfg.UI.QuickReplies)
	assert.NotEmpty(t, cfg.UI.WaitStages)
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1.0.0"

[backend]
base_url = "http://localhost:5000"
timeout_secs = 30

[ui]
theme = "light"
notice_secs = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 30, cfg.Backend.TimeoutSecs)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, 4*time.Second, cfg.UI.NoticeDuration())
	// Missing sections keep defaults
	assert.NotEmpty(t, cfg.UI.WaitStages)
	assert.NotEmpty(t, cfg.UI.QuickReplies)
}

func TestLoadFromPathInvalidURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend]\nbase_url = \"::not a url\"\n"), 0o600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Backend.TimeoutSecs = 0
	cfg.UI.Theme = "neon"
	cfg.UI.WaitStages = []WaitStage{
		{AfterSecs: 5, Text: "a"},
		{AfterSecs: 5, Text: "b"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	var errs ValidateErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 3)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RECOGNAIZE_API_URL", "http://env.example:9000")
	t.Setenv("RECOGNAIZE_TIMEOUT_SECS", "45")
	t.Setenv("RECOGNAIZE_NO_WARMUP", "1")
	t.Setenv("RECOGNAIZE_NO_PERSIST", "true")
	t.Setenv("RECOGNAIZE_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://env.example:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 45, cfg.Backend.TimeoutSecs)
	assert.False(t, cfg.Backend.WarmupOnStart)
	assert.False(t, cfg.Session.PersistEnabled)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestWaitMessageAt(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Uploading your report...", cfg.WaitMessageAt(0))
	assert.Equal(t, "Uploading your report...", cfg.WaitMessageAt(2*time.Second))
	assert.Equal(t, "Waking up the server, this can take a minute...", cfg.WaitMessageAt(3*time.Second))
	assert.Equal(t, "Still connecting, hang tight...", cfg.WaitMessageAt(12*time.Second))
	assert.Equal(t, "Almost there...", cfg.WaitMessageAt(time.Minute))
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "http://localhost:5000"
	cfg.UI.Theme = "light"
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backend.BaseURL, loaded.Backend.BaseURL)
	assert.Equal(t, cfg.UI.Theme, loaded.UI.Theme)
	assert.Equal(t, cfg.UI.WaitStages, loaded.UI.WaitStages)
}

func TestSaveTOMLAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, SaveTOML(Default(), path))
	require.NoError(t, SaveTOML(Default(), path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.toml", entries[0].Name())
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0o600))

	var mu sync.Mutex
	var got *Config
	w, err := NewWatcher(path, func(cfg *Config) {
		mu.Lock()
		got = cfg
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.UI.Theme == "light"
	}, 5*time.Second, 50*time.Millisecond)
}
