// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/jeranaias/chatbot-tui/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHATBOT_"

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the complete chatbot configuration.
type Config struct {
	Backend   BackendConfig   `toml:"backend" envPrefix:"BACKEND_"`
	Chat      ChatConfig      `toml:"chat" envPrefix:"CHAT_"`
	Storage   StorageConfig   `toml:"storage" envPrefix:"STORAGE_"`
	UI        UIConfig        `toml:"ui" envPrefix:"UI_"`
	Log       LogConfig       `toml:"log" envPrefix:"LOG_"`
	DevServer DevServerConfig `toml:"devserver" envPrefix:"DEVSERVER_"`
}

// BackendConfig locates the chat backend.
type BackendConfig struct {
	URL              string   `toml:"url" env:"URL"`
	Timeout          Duration `toml:"timeout" env:"TIMEOUT"` // single-shot requests only
	MaxResponseBytes int64    `toml:"max_response_bytes" env:"MAX_RESPONSE_BYTES"`
}

// ChatConfig controls exchanges.
type ChatConfig struct {
	Streaming          bool  `toml:"streaming" env:"STREAMING"`
	MaxAttachmentBytes int64 `toml:"max_attachment_bytes" env:"MAX_ATTACHMENT_BYTES"`
}

// StorageConfig selects where history is kept.
type StorageConfig struct {
	Driver             string   `toml:"driver" env:"DRIVER"` // file, sqlite, redis, memory
	Path               string   `toml:"path" env:"PATH"`     // empty means under ConfigDir
	RedisURL           string   `toml:"redis_url" env:"REDIS_URL"`
	Key                string   `toml:"key" env:"KEY"`
	StreamSaveInterval Duration `toml:"stream_save_interval" env:"STREAM_SAVE_INTERVAL"`
	Watch              bool     `toml:"watch" env:"WATCH"`
}

// UIConfig controls the terminal interface.
type UIConfig struct {
	Theme          string `toml:"theme" env:"THEME"` // dark or light
	RenderMarkdown bool   `toml:"render_markdown" env:"RENDER_MARKDOWN"`
	ShowTimestamps bool   `toml:"show_timestamps" env:"SHOW_TIMESTAMPS"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	File string `toml:"file" env:"FILE"` // empty means ConfigDir/chatbot.log
}

// DevServerConfig configures the bundled development backend.
type DevServerConfig struct {
	Addr       string   `toml:"addr" env:"ADDR"`
	ChunkDelay Duration `toml:"chunk_delay" env:"CHUNK_DELAY"`
}

// Duration is a time.Duration that reads and writes strings such as "500ms"
// in TOML and environment variables.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:              "http://localhost:5050",
			Timeout:          Duration{2 * time.Minute},
			MaxResponseBytes: 10 * 1024 * 1024,
		},
		Chat: ChatConfig{
			Streaming:          true,
			MaxAttachmentBytes: 20 * 1024 * 1024,
		},
		Storage: StorageConfig{
			Driver: "file",
			Key:    "chatbot_messages",
			Watch:  true,
		},
		UI: UIConfig{
			Theme:          "dark",
			RenderMarkdown: true,
			ShowTimestamps: true,
		},
		DevServer: DevServerConfig{
			Addr:       "127.0.0.1:5050",
			ChunkDelay: Duration{30 * time.Millisecond},
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatbot configuration directory. CHATBOT_HOME
// overrides the default ~/.chatbot.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatbot"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StoragePath returns the configured storage path, or the driver's default
// location under ConfigDir.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if strings.EqualFold(c.Storage.Driver, "sqlite") {
		return filepath.Join(dir, "chatbot.db"), nil
	}
	return dir, nil
}

// LogPath returns the log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chatbot.log"), nil
}

// HistoryFilePath returns the path of the liner input history.
func HistoryFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "input_history"), nil
}

// =============================================================================
// LOAD AND SAVE
// =============================================================================

// Load reads the default config file, applies environment overrides and
// validates the result. A missing file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides sets every field whose CHATBOT_* variable is present.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

// Save writes cfg to path as TOML.
func (c *Config) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Encode renders cfg as a commented TOML document.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# chatbot configuration file\n")
	buf.WriteString("# Environment variables (CHATBOT_*) override these values.\n\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
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
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and returns ValidateErrors on failure.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		add("backend.url", "must start with http:// or https://, got %q", c.Backend.URL)
	}
	if c.Backend.Timeout.Duration < 0 {
		add("backend.timeout", "must not be negative")
	}
	if c.Backend.MaxResponseBytes <= 0 {
		add("backend.max_response_bytes", "must be positive")
	}
	if c.Chat.MaxAttachmentBytes < 0 {
		add("chat.max_attachment_bytes", "must not be negative")
	}

	switch strings.ToLower(c.Storage.Driver) {
	case "file", "sqlite", "memory":
	case "redis":
		if c.Storage.RedisURL == "" {
			add("storage.redis_url", "required when driver is redis")
		}
	default:
		add("storage.driver", "invalid driver %q, must be one of: file, sqlite, redis, memory", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		add("storage.key", "must not be empty")
	}
	if c.Storage.StreamSaveInterval.Duration < 0 {
		add("storage.stream_save_interval", "must not be negative")
	}

	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light":
	default:
		add("ui.theme", "invalid theme %q, must be dark or light", c.UI.Theme)
	}

	if c.DevServer.Addr == "" {
		add("devserver.addr", "must not be empty")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
