// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides process configuration loading for gemclone.
//
// Configuration file locations (in order of precedence):
//   - ~/.gemclone/config.toml
//   - ~/.gemclone/config.json
//   - ~/.gemclone/config.yaml
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/gemclone/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete gemclone process configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	// Provider selects the chat backend
	Provider ProviderConfig `toml:"provider" json:"provider" yaml:"provider"`

	// Storage selects where chat sessions are kept
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Stream controls how replies are revealed
	Stream StreamConfig `toml:"stream" json:"stream" yaml:"stream"`

	// Log configures the zap logger
	Log LogConfig `toml:"log" json:"log" yaml:"log"`

	// Settings locates the user chat settings file
	Settings SettingsConfig `toml:"settings" json:"settings" yaml:"settings"`
}

// ProviderConfig contains chat backend configuration.
type ProviderConfig struct {
	// Name is "gemini" (default) or "openai"
	Name string `toml:"name" json:"name" yaml:"name"`
	// GeminiAPIKey is the Google AI Studio key
	GeminiAPIKey string `toml:"gemini_api_key" json:"gemini_api_key" yaml:"gemini_api_key"`
	// GeminiBaseURL overrides the Gemini endpoint (empty = SDK default)
	GeminiBaseURL string `toml:"gemini_base_url" json:"gemini_base_url" yaml:"gemini_base_url"`
	// OpenAIAPIKey is the key for the OpenAI-compatible endpoint
	OpenAIAPIKey string `toml:"openai_api_key" json:"openai_api_key" yaml:"openai_api_key"`
	// OpenAIBaseURL points at any OpenAI-compatible server (empty = api.openai.com)
	OpenAIBaseURL string `toml:"openai_base_url" json:"openai_base_url" yaml:"openai_base_url"`
}

// StorageConfig contains session store configuration.
type StorageConfig struct {
	// Backend is "memory" (default), "json" or "sqlite"
	Backend string `toml:"backend" json:"backend" yaml:"backend"`
	// Path is the sessions directory (json) or database file (sqlite).
	// Empty uses ~/.gemclone/sessions or ~/.gemclone/sessions.db.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// StreamConfig contains reply pacing configuration.
type StreamConfig struct {
	// PacingMS is the delay between revealed tokens in milliseconds (0 = no delay)
	PacingMS int `toml:"pacing_ms" json:"pacing_ms" yaml:"pacing_ms"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" json:"level" yaml:"level"`
	// Format is "json" (default) or "console"
	Format string `toml:"format" json:"format" yaml:"format"`
	// Path is the log file (empty = ~/.gemclone/gemclone.log, "-" = stderr)
	Path string `toml:"path" json:"path" yaml:"path"`
}

// SettingsConfig locates the chat settings file.
type SettingsConfig struct {
	// Path is the settings file (empty = ~/.gemclone/settings.toml)
	Path string `toml:"path" json:"path" yaml:"path"`
	// Watch reloads the settings when the file is edited externally
	Watch bool `toml:"watch" json:"watch" yaml:"watch"`
}

// Known values.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StorageMemory = "memory"
	StorageJSON   = "json"
	StorageSQLite = "sqlite"

	DefaultPacingMS = 10
	MaxPacingMS     = 1000
)

// =============================================================================
// DEFAULT CONFIG
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Provider: ProviderConfig{
			Name: ProviderGemini,
		},
		Storage: StorageConfig{
			Backend: StorageMemory,
		},
		Stream: StreamConfig{
			PacingMS: DefaultPacingMS,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Settings: SettingsConfig{
			Watch: true,
		},
	}
}

// Pacing returns the delay between revealed tokens.
func (s StreamConfig) Pacing() time.Duration {
	return time.Duration(s.PacingMS) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the gemclone configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".gemclone"), nil
}

// candidateNames lists the config file names tried by LoadDir, in order.
var candidateNames = []string{"config.toml", "config.json", "config.yaml", "config.yml"}

// ResolvePaths fills empty file locations from dir.
func (c *Config) ResolvePaths(dir string) {
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case StorageJSON:
			c.Storage.Path = filepath.Join(dir, "sessions")
		case StorageSQLite:
			c.Storage.Path = filepath.Join(dir, "sessions.db")
		}
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(dir, "gemclone.log")
	}
	if c.Settings.Path == "" {
		c.Settings.Path = filepath.Join(dir, "settings.toml")
	}
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.gemclone.
// Tries TOML first, then JSON, then YAML, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadDir(dir)
}

// LoadDir loads the first config file found in dir, or the defaults when
// there is none.
func LoadDir(dir string) (*Config, error) {
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	if err := finish(cfg); err != nil {
		return nil, err
	}
	cfg.ResolvePaths(dir)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file. The format follows
// the extension; anything other than .json, .yaml or .yml is read as TOML.
// Empty file locations default to siblings of the config file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	cfg.ResolvePaths(filepath.Dir(path))
	return cfg, nil
}

func finish(cfg *Config) error {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SetDefaults fills empty fields from Default and normalizes case.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	if c.Provider.Name == "" {
		c.Provider.Name = d.Provider.Name
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration as TOML with 0600 permissions, since it may
// carry API keys.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# gemclone configuration file\n")
	buf.WriteString("# API keys may also come from GEMINI_API_KEY / OPENAI_API_KEY.\n\n")

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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	switch c.Provider.Name {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, ValidationError{"provider.name", fmt.Sprintf("unknown provider %q (want gemini or openai)", c.Provider.Name)})
	}
	for field, raw := range map[string]string{
		"provider.gemini_base_url": c.Provider.GeminiBaseURL,
		"provider.openai_base_url": c.Provider.OpenAIBaseURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{field, fmt.Sprintf("invalid URL %q", raw)})
		}
	}

	switch c.Storage.Backend {
	case StorageMemory, StorageJSON, StorageSQLite:
	default:
		errs = append(errs, ValidationError{"storage.backend", fmt.Sprintf("unknown backend %q (want memory, json or sqlite)", c.Storage.Backend)})
	}

	if c.Stream.PacingMS < 0 || c.Stream.PacingMS > MaxPacingMS {
		errs = append(errs, ValidationError{"stream.pacing_ms", fmt.Sprintf("must be between 0 and %d", MaxPacingMS)})
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{"log.level", fmt.Sprintf("unknown level %q", c.Log.Level)})
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, ValidationError{"log.format", fmt.Sprintf("unknown format %q", c.Log.Format)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - GEMINI_API_KEY, GOOGLE_API_KEY, API_KEY: provider.gemini_api_key (first set wins)
//   - OPENAI_API_KEY: provider.openai_api_key
//   - GEMCLONE_PROVIDER: provider.name
//   - GEMCLONE_STORAGE: storage.backend
//   - GEMCLONE_LOG_LEVEL: log.level
//   - GEMCLONE_PACING_MS: stream.pacing_ms (ignored when not an integer)
func (c *Config) ApplyEnvOverrides() {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"} {
		if key := os.Getenv(name); key != "" {
			c.Provider.GeminiAPIKey = key
			break
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Provider.OpenAIAPIKey = key
	}

	if provider := os.Getenv("GEMCLONE_PROVIDER"); provider != "" {
		c.Provider.Name = provider
	}

	if backend := os.Getenv("GEMCLONE_STORAGE"); backend != "" {
		c.Storage.Backend = backend
	}

	if level := os.Getenv("GEMCLONE_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	if pacing := os.Getenv("GEMCLONE_PACING_MS"); pacing != "" {
		if ms, err := strconv.Atoi(pacing); err == nil {
			c.Stream.PacingMS = ms
		}
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// Clone returns a copy of the config. All fields are values, so a shallow
// copy is enough.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as TOML with API keys redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Provider.GeminiAPIKey != "" {
		safe.Provider.GeminiAPIKey = "[REDACTED]"
	}
	if safe.Provider.OpenAIAPIKey != "" {
		safe.Provider.OpenAIAPIKey = "[REDACTED]"
	}

	var buf bytes.Buffer
	_ = toml.NewEncoder(&buf).Encode(safe)
	return buf.String()
}
