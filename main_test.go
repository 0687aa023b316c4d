// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggingWritesToFileNotTerminal(t *testing.T) {
	dir := t.TempDir()

	f := setupLogging(dir)
	require.NotNil(t, f)
	defer f.Close()

	log.Printf("session: persist message: disk full")

	data, err := os.ReadFile(filepath.Join(dir, "companion.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "persist message: disk full")
}

func TestSetupLoggingDiscardsWithoutDir(t *testing.T) {
	f := setupLogging("")

	assert.Nil(t, f)
	log.Printf("never shown")
}
