// ReCOGnAIze Companion - A terminal chat client for cognitive assessment results.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recognaize/companion-tui/internal/backend"
	"github.com/recognaize/companion-tui/internal/config"
	"github.com/recognaize/companion-tui/internal/session"
	"github.com/recognaize/companion-tui/internal/storage"
	"github.com/recognaize/companion-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		configPath  = flag.String("config", "", "path to a config file (default: ~/.recognaize/config.toml)")
		noPersist   = flag.Bool("no-persist", false, "disable session persistence for this run")
		resetFlag   = flag.Bool("reset", false, "clear the saved session and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("recognaize-companion %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *noPersist {
		cfg.Session.PersistEnabled = false
	}

	if *resetFlag {
		if err := resetSession(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Session cleared.")
		return
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	scaffoldConfig()
	return cfg, nil
}

// scaffoldConfig writes a default config file on the first run so there
// is something to edit. Best effort; built-in defaults apply either way.
func scaffoldConfig() {
	path, err := config.ConfigPath()
	if err != nil {
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = config.Save(config.Default())
	}
}

// openStore opens the session database when persistence is enabled.
// A broken store degrades to an in-memory session rather than blocking
// startup.
func openStore(cfg *config.Config) *storage.SessionStore {
	if !cfg.Session.PersistEnabled {
		return nil
	}
	path, err := cfg.DatabasePath()
	if err != nil {
		log.Printf("storage: session persistence disabled: %v", err)
		return nil
	}
	store, err := storage.Open(path)
	if err != nil {
		log.Printf("storage: session persistence disabled: %v", err)
		return nil
	}
	return store
}

func resetSession(cfg *config.Config) error {
	path, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	store, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Reset()
}

// setupLogging routes the default logger to a file under dir. The TUI
// owns the terminal once it starts, so nothing may write to stderr;
// when no log file can be opened, logging is discarded instead.
func setupLogging(dir string) *os.File {
	if dir != "" {
		if f, err := tea.LogToFile(filepath.Join(dir, "companion.log"), "companion"); err == nil {
			return f
		}
	}
	log.SetOutput(io.Discard)
	return nil
}

func runTUI(cfg *config.Config) error {
	logDir := ""
	if err := config.EnsureConfigDir(); err == nil {
		if dir, dirErr := config.ConfigDir(); dirErr == nil {
			logDir = dir
		}
	}
	if logFile := setupLogging(logDir); logFile != nil {
		defer logFile.Close()
	}

	client := backend.NewClient(cfg.Backend.BaseURL).
		WithTimeout(cfg.Backend.Timeout())

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	ctrl := session.NewController(cfg, client, store)
	if err := ctrl.Restore(); err != nil {
		log.Printf("session: restore failed, starting fresh: %v", err)
	}

	p := tea.NewProgram(
		ui.New(cfg, ctrl),
		tea.WithAltScreen(),
	)

	// Reload UI-safe settings when the config file changes on disk. The
	// snapshot is forwarded into the program loop so config mutation
	// stays on the Bubble Tea goroutine.
	if path, err := config.ConfigPath(); err == nil {
		if watcher, werr := config.NewWatcher(path, func(updated *config.Config) {
			p.Send(ui.ConfigReloadedMsg{Config: updated})
		}); werr == nil {
			if werr = watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
	}

	_, err := p.Run()
	return err
}
