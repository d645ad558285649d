// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

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
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/rigchat/internal/scroll"
	"github.com/jeranaias/rigchat/internal/util"
)

// Version is the current config format version.
const Version = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigchat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	API     APIConfig     `toml:"api" json:"api"`
	Chat    ChatConfig    `toml:"chat" json:"chat"`
	Scroll  ScrollConfig  `toml:"scroll" json:"scroll"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// APIConfig configures the chat API client.
type APIConfig struct {
	BaseURL     string `toml:"base_url" json:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
	MaxRetries  int    `toml:"max_retries" json:"max_retries"`

	// RateLimitRPS of 0 disables client-side throttling.
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
	RateBurst    int     `toml:"rate_burst" json:"rate_burst"`
}

// Timeout returns the request timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// ChatConfig configures the chat use cases.
type ChatConfig struct {
	HistoryLimit int `toml:"history_limit" json:"history_limit"`
}

// ScrollConfig configures the scroll choreography. Widths are in columns,
// offsets in lines.
type ScrollConfig struct {
	Smooth             bool `toml:"smooth" json:"smooth"`
	Threshold          int  `toml:"threshold" json:"threshold"`
	FirstDebounceMs    int  `toml:"first_debounce_ms" json:"first_debounce_ms"`
	ReplyDebounceMs    int  `toml:"reply_debounce_ms" json:"reply_debounce_ms"`
	BlockReleaseMs     int  `toml:"block_release_ms" json:"block_release_ms"`
	UserScrollIdleMs   int  `toml:"user_scroll_idle_ms" json:"user_scroll_idle_ms"`
	NarrowWidth        int  `toml:"narrow_width" json:"narrow_width"`
	NarrowBottomOffset int  `toml:"narrow_bottom_offset" json:"narrow_bottom_offset"`
	NarrowTopOffset    int  `toml:"narrow_top_offset" json:"narrow_top_offset"`
}

// Options converts the section to choreographer options.
func (s ScrollConfig) Options() scroll.Options {
	return scroll.Options{
		Smooth:             s.Smooth,
		Threshold:          s.Threshold,
		FirstDebounce:      time.Duration(s.FirstDebounceMs) * time.Millisecond,
		ReplyDebounce:      time.Duration(s.ReplyDebounceMs) * time.Millisecond,
		BlockRelease:       time.Duration(s.BlockReleaseMs) * time.Millisecond,
		UserScrollIdle:     time.Duration(s.UserScrollIdleMs) * time.Millisecond,
		NarrowBreakpoint:   s.NarrowWidth,
		NarrowBottomOffset: s.NarrowBottomOffset,
		NarrowTopOffset:    s.NarrowTopOffset,
	}
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	Mouse     bool `toml:"mouse" json:"mouse"`
	AltScreen bool `toml:"alt_screen" json:"alt_screen"`

	// WordWrap of 0 wraps at the viewport width.
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
}

// StorageConfig configures device storage.
type StorageConfig struct {
	Path string `toml:"path" json:"path"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	File    string `toml:"file" json:"file"`
}

// Default returns a configuration with default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = "."
	}
	return &Config{
		Version: Version,
		API: APIConfig{
			BaseURL:     "http://localhost:8080",
			TimeoutSecs: 30,
			MaxRetries:  2,
			RateBurst:   1,
		},
		Chat: ChatConfig{
			HistoryLimit: 50,
		},
		Scroll: ScrollConfig{
			Smooth:             true,
			Threshold:          1,
			FirstDebounceMs:    50,
			ReplyDebounceMs:    50,
			BlockReleaseMs:     1000,
			UserScrollIdleMs:   150,
			NarrowWidth:        80,
			NarrowBottomOffset: 1,
			NarrowTopOffset:    1,
		},
		UI: UIConfig{
			Mouse:     true,
			AltScreen: true,
		},
		Storage: StorageConfig{
			Path: filepath.Join(dir, "state.db"),
		},
		Logging: LoggingConfig{
			Enabled: true,
			File:    filepath.Join(dir, "rigchat.log"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rigchat configuration directory: $RIGCHAT_HOME when
// set, otherwise ~/.rigchat.
func ConfigDir() (string, error) {
	if dir := os.Getenv("RIGCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the config file Load would read, or the TOML path when
// neither file exists.
func ActivePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, nil
	}
	return tomlPath, nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// DotEnvFile is loaded into the environment before overrides are applied.
// Variables already set in the environment win.
var DotEnvFile = ".env"

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ActivePath()
	if err != nil {
		return finish(Default())
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .json are decoded as JSON, everything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	loadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv() {
	if DotEnvFile == "" {
		return
	}
	if _, err := os.Stat(DotEnvFile); err != nil {
		return
	}
	if err := godotenv.Load(DotEnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", DotEnvFile, err)
	}
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep the
// values already in cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML atomically writes the configuration to a TOML file with 0600
// permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# rigchat configuration file")
	fmt.Fprintln(&buf, "# Generated by rigchat - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON atomically writes the configuration to a JSON file with 0600
// permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
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

// Has reports whether field failed validation.
func (e ValidateErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validate validates the configuration and returns ValidateErrors when any
// field is out of range.
func (c *Config) Validate() error {
	var errs ValidateErrors
	check := func(ok bool, field, format string, args ...any) {
		if !ok {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
		}
	}
	between := func(v, lo, hi int, field string) {
		check(v >= lo && v <= hi, field, "must be between %d and %d, got %d", lo, hi, v)
	}

	// API
	u, err := url.Parse(c.API.BaseURL)
	switch {
	case c.API.BaseURL == "":
		check(false, "api.base_url", "must not be empty")
	case err != nil:
		check(false, "api.base_url", "invalid URL: %v", err)
	default:
		check(u.Scheme == "http" || u.Scheme == "https", "api.base_url", "scheme must be http or https, got %q", u.Scheme)
		check(u.Host != "", "api.base_url", "must include a host")
	}
	between(c.API.TimeoutSecs, 1, 300, "api.timeout_secs")
	between(c.API.MaxRetries, 0, 10, "api.max_retries")
	check(c.API.RateLimitRPS >= 0, "api.rate_limit_rps", "must not be negative, got %v", c.API.RateLimitRPS)
	between(c.API.RateBurst, 0, 1000, "api.rate_burst")

	// Chat
	between(c.Chat.HistoryLimit, 1, 500, "chat.history_limit")

	// Scroll
	between(c.Scroll.Threshold, 0, 1000, "scroll.threshold")
	between(c.Scroll.FirstDebounceMs, 0, 10000, "scroll.first_debounce_ms")
	between(c.Scroll.ReplyDebounceMs, 0, 10000, "scroll.reply_debounce_ms")
	between(c.Scroll.BlockReleaseMs, 0, 60000, "scroll.block_release_ms")
	between(c.Scroll.UserScrollIdleMs, 0, 10000, "scroll.user_scroll_idle_ms")
	between(c.Scroll.NarrowWidth, 0, 10000, "scroll.narrow_width")
	between(c.Scroll.NarrowBottomOffset, 0, 1000, "scroll.narrow_bottom_offset")
	between(c.Scroll.NarrowTopOffset, 0, 1000, "scroll.narrow_top_offset")

	// UI
	between(c.UI.WordWrap, 0, 1000, "ui.word_wrap")

	// Storage and logging
	check(c.Storage.Path != "", "storage.path", "must not be empty")
	check(!c.Logging.Enabled || c.Logging.File != "", "logging.file", "must not be empty when logging is enabled")

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty strings and non-positive required values.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.API.RateLimitRPS > 0 && c.API.RateBurst <= 0 {
		c.API.RateBurst = 1
	}
	if c.Chat.HistoryLimit <= 0 {
		c.Chat.HistoryLimit = defaults.Chat.HistoryLimit
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaults.Storage.Path
	}
	if c.Logging.File == "" {
		c.Logging.File = defaults.Logging.File
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RIGCHAT_API_URL: overrides api.base_url
//   - RIGCHAT_TIMEOUT: overrides api.timeout_secs
//   - RIGCHAT_HISTORY_LIMIT: overrides chat.history_limit
//   - RIGCHAT_STORAGE: overrides storage.path
//   - RIGCHAT_LOG_FILE: overrides logging.file
//   - RIGCHAT_NO_LOG: set to "1" or "true" to disable the log file
//
// Unparseable numbers are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RIGCHAT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("RIGCHAT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("RIGCHAT_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chat.HistoryLimit = n
		}
	}
	if v := os.Getenv("RIGCHAT_STORAGE"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("RIGCHAT_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("RIGCHAT_NO_LOG"); v != "" {
		if v == "1" || strings.EqualFold(v, "true") {
			c.Logging.Enabled = false
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON with credentials in the API
// URL redacted.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}

// Redacted returns a copy with credentials in the API URL masked.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if u, err := url.Parse(safe.API.BaseURL); err == nil && u.User != nil {
		u.User = url.User("REDACTED")
		safe.API.BaseURL = u.String()
	}
	return safe
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
