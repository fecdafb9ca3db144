// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// CurrentVersion is written into newly saved config files.
	CurrentVersion = "1"

	// DefaultAgentURL is the hosted agent service /ask endpoint.
	DefaultAgentURL = "https://main-agent-production.up.railway.app/ask"

	// DefaultVizBaseURL serves visualization_config.json files per thread.
	DefaultVizBaseURL = "http://192.168.114.212:8103"

	// DefaultConversationIndex is the conversation slot used in viz URLs.
	DefaultConversationIndex = "1"

	ThemeLight = "light_mode"
	ThemeDark  = "dark_mode"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete zuschat configuration.
type Config struct {
	Version string `toml:"version"`

	Agent   AgentConfig   `toml:"agent"`
	Viz     VizConfig     `toml:"viz"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// AgentConfig configures the inference endpoint.
type AgentConfig struct {
	// URL is the full /ask endpoint.
	URL string `toml:"url"`
	// APIKey is normally kept in the sealed credentials file; this field
	// exists for ZUSCHAT_API_KEY and is never written back to disk.
	APIKey string `toml:"-"`
	// TimeoutSecs bounds a single request. The agent can take a while.
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerMinute throttles outgoing requests (0 disables).
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// VizConfig configures where visualization configs come from.
type VizConfig struct {
	// BaseURL is the visualization file server.
	BaseURL string `toml:"base_url"`
	// ConversationIndex is the {conv_idx} path segment.
	ConversationIndex string `toml:"conversation_index"`
	// Source overrides the computed URL with a URL, file:// URL or path.
	Source string `toml:"source"`
	// Watch reloads a local Source when it changes.
	Watch bool `toml:"watch"`
	// TimeoutSecs bounds the config fetch.
	TimeoutSecs int `toml:"timeout_secs"`
}

// StorageConfig selects the history backend.
type StorageConfig struct {
	// Backend is "json" or "sqlite".
	Backend string `toml:"backend"`
	// Dir overrides the data directory (default ~/.zuschat/data).
	Dir string `toml:"dir"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is "light_mode" or "dark_mode". The stored preference wins once
	// the user has toggled it.
	Theme string `toml:"theme"`
	// TypingDelayMs is the delay between revealed words.
	TypingDelayMs int `toml:"typing_delay_ms"`
	// ShowSuggestions shows prompt suggestions on an empty thread.
	ShowSuggestions bool `toml:"show_suggestions"`
	// PanelWidth is the visualization panel width in columns.
	PanelWidth int `toml:"panel_width"`
}

// LogConfig configures the file logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
	// File overrides ~/.zuschat/logs/zuschat.log.
	File string `toml:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Agent: AgentConfig{
			URL:               DefaultAgentURL,
			TimeoutSecs:       120,
			RequestsPerMinute: 30,
		},
		Viz: VizConfig{
			BaseURL:           DefaultVizBaseURL,
			ConversationIndex: DefaultConversationIndex,
			TimeoutSecs:       10,
		},
		Storage: StorageConfig{
			Backend: BackendJSON,
		},
		UI: UIConfig{
			Theme:           ThemeLight,
			TypingDelayMs:   10,
			ShowSuggestions: true,
			PanelWidth:      48,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// AgentTimeout returns the agent request timeout.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.Agent.TimeoutSecs) * time.Second
}

// VizTimeout returns the visualization fetch timeout.
func (c *Config) VizTimeout() time.Duration {
	return time.Duration(c.Viz.TimeoutSecs) * time.Second
}

// TypingDelay returns the per-word reveal delay.
func (c *Config) TypingDelay() time.Duration {
	return time.Duration(c.UI.TypingDelayMs) * time.Millisecond
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// ConfigDir returns the zuschat state directory. ZUSCHAT_HOME overrides
// the default ~/.zuschat.
func ConfigDir() (string, error) {
	if dir := os.Getenv("ZUSCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".zuschat"), nil
}

// ConfigPath returns the path to config.toml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns the directory holding history and preferences.
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
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
	return filepath.Join(dir, "logs", "zuschat.log"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.zuschat/config.toml when present, then .env files, then
// environment overrides, and validates the result.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load with an explicit config file. A missing file is not
// an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadDotEnv loads .env from the working directory and then from the config
// directory. Variables already set in the environment are never replaced,
// and the first file to define a variable wins.
func LoadDotEnv() error {
	var files []string
	if _, err := os.Stat(".env"); err == nil {
		files = append(files, ".env")
	}
	if dir, err := ConfigDir(); err == nil {
		p := filepath.Join(dir, ".env")
		if _, err := os.Stat(p); err == nil {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values a hand-edited file may have left behind.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.Agent.URL == "" {
		cfg.Agent.URL = def.Agent.URL
	}
	if cfg.Agent.TimeoutSecs == 0 {
		cfg.Agent.TimeoutSecs = def.Agent.TimeoutSecs
	}
	if cfg.Viz.BaseURL == "" {
		cfg.Viz.BaseURL = def.Viz.BaseURL
	}
	if cfg.Viz.ConversationIndex == "" {
		cfg.Viz.ConversationIndex = def.Viz.ConversationIndex
	}
	if cfg.Viz.TimeoutSecs == 0 {
		cfg.Viz.TimeoutSecs = def.Viz.TimeoutSecs
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = def.Storage.Backend
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if cfg.UI.PanelWidth == 0 {
		cfg.UI.PanelWidth = def.UI.PanelWidth
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# zuschat configuration file\n")
	buf.WriteString("# The API key is stored separately; see `zuschat apikey`.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
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

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validateHTTPURL(c.Agent.URL); err != nil {
		errs = append(errs, ValidationError{Field: "agent.url", Message: err.Error()})
	}
	if c.Agent.TimeoutSecs < 1 || c.Agent.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "agent.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.Agent.TimeoutSecs),
		})
	}
	if c.Agent.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "agent.requests_per_minute", Message: "must not be negative"})
	}

	if err := validateHTTPURL(c.Viz.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "viz.base_url", Message: err.Error()})
	}
	if strings.ContainsAny(c.Viz.ConversationIndex, "/\\") {
		errs = append(errs, ValidationError{Field: "viz.conversation_index", Message: "must be a single path segment"})
	}
	if c.Viz.TimeoutSecs < 1 || c.Viz.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "viz.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Viz.TimeoutSecs),
		})
	}

	switch strings.ToLower(c.Storage.Backend) {
	case BackendJSON, BackendSQLite:
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: json, sqlite", c.Storage.Backend),
		})
	}

	switch c.UI.Theme {
	case ThemeLight, ThemeDark:
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: light_mode, dark_mode", c.UI.Theme),
		})
	}
	if c.UI.TypingDelayMs < 0 || c.UI.TypingDelayMs > 1000 {
		errs = append(errs, ValidationError{Field: "ui.typing_delay_ms", Message: "must be between 0 and 1000"})
	}
	if c.UI.PanelWidth < 20 || c.UI.PanelWidth > 200 {
		errs = append(errs, ValidationError{Field: "ui.panel_width", Message: "must be between 20 and 200"})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %q", raw)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies ZUSCHAT_* environment variables.
//
//   - ZUSCHAT_AGENT_URL: overrides agent.url
//   - ZUSCHAT_API_KEY: sets the API key for this process only
//   - ZUSCHAT_VIZ_BASE_URL: overrides viz.base_url
//   - ZUSCHAT_VIZ_SOURCE: overrides viz.source
//   - ZUSCHAT_THEME: overrides ui.theme
//   - ZUSCHAT_STORAGE_BACKEND: overrides storage.backend
//   - ZUSCHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ZUSCHAT_AGENT_URL"); v != "" {
		c.Agent.URL = v
	}
	if v := os.Getenv("ZUSCHAT_API_KEY"); v != "" {
		c.Agent.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("ZUSCHAT_VIZ_BASE_URL"); v != "" {
		c.Viz.BaseURL = v
	}
	if v := os.Getenv("ZUSCHAT_VIZ_SOURCE"); v != "" {
		c.Viz.Source = v
	}
	if v := os.Getenv("ZUSCHAT_THEME"); v != "" {
		c.UI.Theme = normalizeTheme(v)
	}
	if v := os.Getenv("ZUSCHAT_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("ZUSCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// normalizeTheme accepts "light"/"dark" as shorthands.
func normalizeTheme(v string) string {
	switch strings.ToLower(v) {
	case "light", ThemeLight:
		return ThemeLight
	case "dark", ThemeDark:
		return ThemeDark
	}
	return v
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "agent.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the toml tags of Config to find the field named by key.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag != "" && tag != "-" && strings.EqualFold(tag, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// AllKeys returns every settable key in dot notation.
func AllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		name := section.Tag.Get("toml")
		if section.Type.Kind() != reflect.Struct {
			keys = append(keys, name)
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			tag := section.Type.Field(j).Tag.Get("toml")
			if tag == "-" {
				continue
			}
			keys = append(keys, name+"."+tag)
		}
	}
	return keys
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// A config that fails to load is reported on stderr and replaced by defaults.
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
