// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// companion client.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location:
//   - ~/.recognaize/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/recognaize/companion-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete companion client configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend service configuration
	Backend BackendConfig `toml:"backend"`

	// Session persistence configuration
	Session SessionConfig `toml:"session"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains the remote assessment service settings.
type BackendConfig struct {
	// BaseURL is the service endpoint; empty uses the built-in default.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds chat and upload requests.
	TimeoutSecs int `toml:"timeout_secs"`
	// WarmupOnStart pings /health once at startup to wake a cold
	// deployment. Failures are logged and ignored.
	WarmupOnStart bool `toml:"warmup_on_start"`
}

// SessionConfig contains local session persistence settings.
type SessionConfig struct {
	// PersistEnabled mirrors the transcript and report context to a
	// local database so a restart can restore the conversation.
	PersistEnabled bool `toml:"persist_enabled"`
	// DatabasePath overrides the session database location
	// (empty = default ~/.recognaize/session.db).
	DatabasePath string `toml:"database_path"`
}

// UIConfig contains interface behavior settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// NoticeSecs is how long an error notice stays visible before
	// auto-dismissing.
	NoticeSecs int `toml:"notice_secs"`
	// QuickReplies are the canned prompts offered above the input.
	QuickReplies []string `toml:"quick_replies"`
	// WaitStages is the escalating status schedule shown while an
	// upload waits on a cold-started server.
	WaitStages []WaitStage `toml:"wait_stages"`
}

// WaitStage is one step of the upload wait schedule: after AfterSecs
// seconds of waiting, Text replaces the previous status message.
type WaitStage struct {
	AfterSecs int    `toml:"after_secs"`
	Text      string `toml:"text"`
}

// NoticeDuration returns the error notice lifetime as a duration.
func (u UIConfig) NoticeDuration() time.Duration {
	return time.Duration(u.NoticeSecs) * time.Second
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			BaseURL:       "", // falls through to the client's built-in URL
			TimeoutSecs:   90,
			WarmupOnStart: true,
		},

		Session: SessionConfig{
			PersistEnabled: true,
			DatabasePath:   "",
		},

		UI: UIConfig{
			Theme:      "dark",
			NoticeSecs: 6,
			QuickReplies: []string{
				"What do my results mean?",
				"What should I do next?",
				"How can I support my memory?",
				"When should I see a doctor?",
			},
			WaitStages: []WaitStage{
				{AfterSecs: 0, Text: "Uploading your report..."},
				{AfterSecs: 3, Text: "Waking up the server, this can take a minute..."},
				{AfterSecs: 10, Text: "Still connecting, hang tight..."},
				{AfterSecs: 25, Text: "Almost there..."},
			},
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the companion configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".recognaize"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DatabasePath resolves the session database location, honoring the
// configured override.
func (c *Config) DatabasePath() (string, error) {
	if c.Session.DatabasePath != "" {
		return c.Session.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when the file is absent. Environment overrides apply last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// defaulting and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file. The write is atomic
// so a crash mid-save never leaves a truncated config behind, and the
// file watcher sees a single rename event.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# recognaize companion configuration file")
	fmt.Fprintln(&buf, "")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Backend.BaseURL != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Backend.BaseURL),
			})
		}
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Backend.TimeoutSecs),
		})
	}

	if c.UI.NoticeSecs < 1 || c.UI.NoticeSecs > 60 {
		errs = append(errs, ValidationError{
			Field:   "ui.notice_secs",
			Message: fmt.Sprintf("must be 1-60, got %d", c.UI.NoticeSecs),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	for i, stage := range c.UI.WaitStages {
		if stage.AfterSecs < 0 {
			errs = append(errs, ValidationError{
				Field:   "ui.wait_stages",
				Message: fmt.Sprintf("stage %d: after_secs cannot be negative", i),
			})
		}
		if i > 0 && stage.AfterSecs <= c.UI.WaitStages[i-1].AfterSecs {
			errs = append(errs, ValidationError{
				Field:   "ui.wait_stages",
				Message: fmt.Sprintf("stage %d: after_secs must increase", i),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.NoticeSecs == 0 {
		c.UI.NoticeSecs = defaults.UI.NoticeSecs
	}
	if len(c.UI.QuickReplies) == 0 {
		c.UI.QuickReplies = defaults.UI.QuickReplies
	}
	if len(c.UI.WaitStages) == 0 {
		c.UI.WaitStages = defaults.UI.WaitStages
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RECOGNAIZE_API_URL: overrides backend.base_url
//   - RECOGNAIZE_TIMEOUT_SECS: overrides backend.timeout_secs
//   - RECOGNAIZE_NO_WARMUP: set to "1" or "true" to skip the startup ping
//   - RECOGNAIZE_NO_PERSIST: set to "1" or "true" to disable session persistence
//   - RECOGNAIZE_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if apiURL := os.Getenv("RECOGNAIZE_API_URL"); apiURL != "" {
		c.Backend.BaseURL = apiURL
	}

	if secs := os.Getenv("RECOGNAIZE_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.Backend.TimeoutSecs = n
		}
	}

	if noWarmup := os.Getenv("RECOGNAIZE_NO_WARMUP"); noWarmup != "" {
		c.Backend.WarmupOnStart = !(noWarmup == "1" || strings.ToLower(noWarmup) == "true")
	}

	if noPersist := os.Getenv("RECOGNAIZE_NO_PERSIST"); noPersist != "" {
		c.Session.PersistEnabled = !(noPersist == "1" || strings.ToLower(noPersist) == "true")
	}

	if theme := os.Getenv("RECOGNAIZE_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// WaitMessageAt returns the wait-stage text for the given elapsed wait
// time, picking the last stage whose threshold has passed.
func (c *Config) WaitMessageAt(elapsed time.Duration) string {
	text := ""
	for _, stage := range c.UI.WaitStages {
		if elapsed >= time.Duration(stage.AfterSecs)*time.Second {
			text = stage.Text
		}
	}
	return text
}
