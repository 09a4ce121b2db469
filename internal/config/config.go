// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/casechat/internal/util"
)

// CurrentVersion is written to new config files.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete casechat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Analysis service contract
	Service ServiceConfig `toml:"service" json:"service"`

	// HTTP behavior
	Transport TransportConfig `toml:"transport" json:"transport"`

	// Session limits
	Session SessionConfig `toml:"session" json:"session"`

	// Diagnostic log
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// Metrics exposition
	Metrics MetricsConfig `toml:"metrics" json:"metrics"`

	// Presentation
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServiceConfig locates the analysis service and its endpoints.
type ServiceConfig struct {
	// URL is the service base URL (default: http://localhost:5000)
	URL string `toml:"url" json:"url"`

	HealthPath string `toml:"health_path" json:"health_path"`
	UploadPath string `toml:"upload_path" json:"upload_path"`
	ChatPath   string `toml:"chat_path" json:"chat_path"`

	// Origin is sent as the Origin header and named in cross-origin errors.
	Origin string `toml:"origin" json:"origin"`

	// FileField is the multipart field name for uploads (default: "file")
	FileField string `toml:"file_field" json:"file_field"`
}

// TransportConfig controls timeouts and retry.
type TransportConfig struct {
	// RequestTimeoutSecs bounds each attempt of a question (default: 30)
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`

	// ProbeTimeoutSecs bounds the liveness probe (default: 2)
	ProbeTimeoutSecs int `toml:"probe_timeout_secs" json:"probe_timeout_secs"`

	// UploadTimeoutSecs bounds each upload attempt (default: 30)
	UploadTimeoutSecs int `toml:"upload_timeout_secs" json:"upload_timeout_secs"`

	// MaxRetries after a connection failure (default: 3)
	MaxRetries int `toml:"max_retries" json:"max_retries"`

	// BackoffStepMs is multiplied by the retry number (default: 1000)
	BackoffStepMs int `toml:"backoff_step_ms" json:"backoff_step_ms"`

	// RateLimit in requests per second, 0 for none
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	RateBurst int     `toml:"rate_burst" json:"rate_burst"`

	// MaxResponseMB caps response bodies (default: 10)
	MaxResponseMB int `toml:"max_response_mb" json:"max_response_mb"`
}

// SessionConfig limits what a session accepts.
type SessionConfig struct {
	// MaxDocumentMB caps selected files (default: 50)
	MaxDocumentMB int `toml:"max_document_mb" json:"max_document_mb"`
}

// LoggingConfig controls the diagnostic log.
type LoggingConfig struct {
	// Level: debug, info, warn, error (default: info)
	Level string `toml:"level" json:"level"`

	// Mode: production (JSON) or development (console)
	Mode string `toml:"mode" json:"mode"`

	// File receives the log (default: ~/.casechat/logs/diagnostic.log).
	// "off" disables it.
	File string `toml:"file" json:"file"`

	// Redact masks sensitive-looking keys (default: true)
	Redact bool `toml:"redact" json:"redact"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr to serve /metrics on during chat sessions. Empty disables it.
	Addr string `toml:"addr" json:"addr"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Markdown renders replies with glamour when stdout is a terminal.
	Markdown bool `toml:"markdown" json:"markdown"`

	// NoColor disables all styling.
	NoColor bool `toml:"no_color" json:"no_color"`

	// WordWrap width for rendered markdown, 0 for terminal width.
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Service: ServiceConfig{
			URL:        "http://localhost:5000",
			HealthPath: "/api/health",
			UploadPath: "/api/upload",
			ChatPath:   "/api/chat",
			FileField:  "file",
		},
		Transport: TransportConfig{
			RequestTimeoutSecs: 30,
			ProbeTimeoutSecs:   2,
			UploadTimeoutSecs:  30,
			MaxRetries:         3,
			BackoffStepMs:      1000,
			RateBurst:          1,
			MaxResponseMB:      10,
		},
		Session: SessionConfig{
			MaxDocumentMB: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Mode:   "production",
			Redact: true,
		},
		UI: UIConfig{
			Markdown: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the casechat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".casechat"), nil
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

// DefaultLogFile returns the default diagnostic log path.
func DefaultLogFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "logs", "diagnostic.log")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadEnvFile loads .env style files into the environment. Variables that
// are already set win. Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// A .env file in the working directory is read before environment
// overrides are applied.
func Load() (*Config, error) {
	if err := LoadEnvFile(); err != nil {
		return nil, err
	}

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	return finish(cfg)
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
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

// LoadFromPath loads configuration from a specific file path with full
// validation. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any zero values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Service
	if cfg.Service.URL == "" {
		cfg.Service.URL = defaults.Service.URL
	}
	cfg.Service.URL = strings.TrimSuffix(cfg.Service.URL, "/")
	if cfg.Service.HealthPath == "" {
		cfg.Service.HealthPath = defaults.Service.HealthPath
	}
	if cfg.Service.UploadPath == "" {
		cfg.Service.UploadPath = defaults.Service.UploadPath
	}
	if cfg.Service.ChatPath == "" {
		cfg.Service.ChatPath = defaults.Service.ChatPath
	}
	if cfg.Service.FileField == "" {
		cfg.Service.FileField = defaults.Service.FileField
	}

	// Transport
	if cfg.Transport.RequestTimeoutSecs == 0 {
		cfg.Transport.RequestTimeoutSecs = defaults.Transport.RequestTimeoutSecs
	}
	if cfg.Transport.ProbeTimeoutSecs == 0 {
		cfg.Transport.ProbeTimeoutSecs = defaults.Transport.ProbeTimeoutSecs
	}
	if cfg.Transport.UploadTimeoutSecs == 0 {
		cfg.Transport.UploadTimeoutSecs = defaults.Transport.UploadTimeoutSecs
	}
	if cfg.Transport.BackoffStepMs == 0 {
		cfg.Transport.BackoffStepMs = defaults.Transport.BackoffStepMs
	}
	if cfg.Transport.RateBurst == 0 {
		cfg.Transport.RateBurst = defaults.Transport.RateBurst
	}
	if cfg.Transport.MaxResponseMB == 0 {
		cfg.Transport.MaxResponseMB = defaults.Transport.MaxResponseMB
	}

	// Session
	if cfg.Session.MaxDocumentMB == 0 {
		cfg.Session.MaxDocumentMB = defaults.Session.MaxDocumentMB
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Mode == "" {
		cfg.Logging.Mode = defaults.Logging.Mode
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = DefaultLogFile()
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# casechat configuration file\n")
	b.WriteString("# Generated by casechat - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
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

	// Service
	if u, err := url.Parse(c.Service.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "service.url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Service.URL),
		})
	}
	for field, path := range map[string]string{
		"service.health_path": c.Service.HealthPath,
		"service.upload_path": c.Service.UploadPath,
		"service.chat_path":   c.Service.ChatPath,
	} {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("path '%s' must start with /", path)})
		}
	}
	if c.Service.Origin != "" {
		if u, err := url.Parse(c.Service.Origin); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "service.origin",
				Message: fmt.Sprintf("invalid origin '%s', expected scheme://host[:port]", c.Service.Origin),
			})
		}
	}

	// Transport
	if c.Transport.RequestTimeoutSecs < 1 || c.Transport.RequestTimeoutSecs > 3600 {
		errs = append(errs, ValidationError{Field: "transport.request_timeout_secs", Message: "must be between 1 and 3600"})
	}
	if c.Transport.ProbeTimeoutSecs < 1 || c.Transport.ProbeTimeoutSecs > 60 {
		errs = append(errs, ValidationError{Field: "transport.probe_timeout_secs", Message: "must be between 1 and 60"})
	}
	if c.Transport.UploadTimeoutSecs < 1 || c.Transport.UploadTimeoutSecs > 3600 {
		errs = append(errs, ValidationError{Field: "transport.upload_timeout_secs", Message: "must be between 1 and 3600"})
	}
	if c.Transport.MaxRetries < 0 || c.Transport.MaxRetries > 10 {
		errs = append(errs, ValidationError{Field: "transport.max_retries", Message: "must be between 0 and 10"})
	}
	if c.Transport.BackoffStepMs < 0 || c.Transport.BackoffStepMs > 60000 {
		errs = append(errs, ValidationError{Field: "transport.backoff_step_ms", Message: "must be between 0 and 60000"})
	}
	if c.Transport.RateLimit < 0 {
		errs = append(errs, ValidationError{Field: "transport.rate_limit", Message: "cannot be negative"})
	}
	if c.Transport.MaxResponseMB < 1 {
		errs = append(errs, ValidationError{Field: "transport.max_response_mb", Message: "must be at least 1"})
	}

	// Session
	if c.Session.MaxDocumentMB < 1 || c.Session.MaxDocumentMB > 1024 {
		errs = append(errs, ValidationError{Field: "session.max_document_mb", Message: "must be between 1 and 1024"})
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	validModes := map[string]bool{"production": true, "development": true, "dev": true}
	if !validModes[strings.ToLower(c.Logging.Mode)] {
		errs = append(errs, ValidationError{
			Field:   "logging.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be production or development", c.Logging.Mode),
		})
	}

	// UI
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "cannot be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - CASECHAT_SERVICE_URL: overrides service.url
//   - CASECHAT_ORIGIN: overrides service.origin
//   - CASECHAT_UPLOAD_TIMEOUT: overrides transport.upload_timeout_secs
//   - CASECHAT_PROBE_TIMEOUT: overrides transport.probe_timeout_secs
//   - CASECHAT_REQUEST_TIMEOUT: overrides transport.request_timeout_secs
//   - CASECHAT_LOG_LEVEL: overrides logging.level
//   - CASECHAT_LOG_FILE: overrides logging.file
//   - CASECHAT_METRICS_ADDR: overrides metrics.addr
//   - CASECHAT_NO_COLOR / NO_COLOR: disables styling
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CASECHAT_SERVICE_URL"); v != "" {
		c.Service.URL = v
	}
	if v := os.Getenv("CASECHAT_ORIGIN"); v != "" {
		c.Service.Origin = v
	}
	if v := os.Getenv("CASECHAT_UPLOAD_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Transport.UploadTimeoutSecs = n
		}
	}
	if v := os.Getenv("CASECHAT_PROBE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Transport.ProbeTimeoutSecs = n
		}
	}
	if v := os.Getenv("CASECHAT_REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Transport.RequestTimeoutSecs = n
		}
	}
	if v := os.Getenv("CASECHAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CASECHAT_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("CASECHAT_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("CASECHAT_NO_COLOR"); v == "1" || strings.ToLower(v) == "true" {
		c.UI.NoColor = true
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.NoColor = true
	}
}

// =============================================================================
// DURATION HELPERS
// =============================================================================

// RequestTimeout returns the per-attempt question timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Transport.RequestTimeoutSecs) * time.Second
}

// ProbeTimeout returns the liveness probe timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Transport.ProbeTimeoutSecs) * time.Second
}

// UploadTimeout returns the per-attempt upload timeout.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Transport.UploadTimeoutSecs) * time.Second
}

// BackoffStep returns the linear backoff unit.
func (c *Config) BackoffStep() time.Duration {
	return time.Duration(c.Transport.BackoffStepMs) * time.Millisecond
}

// MaxDocumentBytes returns the document size cap in bytes.
func (c *Config) MaxDocumentBytes() int64 {
	return int64(c.Session.MaxDocumentMB) * 1024 * 1024
}

// MaxResponseBytes returns the response size cap in bytes.
func (c *Config) MaxResponseBytes() int64 {
	return int64(c.Transport.MaxResponseMB) * 1024 * 1024
}

// LogFile returns the diagnostic log path, or "" when logging is off.
func (c *Config) LogFile() string {
	if strings.EqualFold(c.Logging.File, "off") {
		return ""
	}
	return c.Logging.File
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "service.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "service.url").
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

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
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
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
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

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"service.url",
		"service.health_path",
		"service.upload_path",
		"service.chat_path",
		"service.origin",
		"service.file_field",
		"transport.request_timeout_secs",
		"transport.probe_timeout_secs",
		"transport.upload_timeout_secs",
		"transport.max_retries",
		"transport.backoff_step_ms",
		"transport.rate_limit",
		"transport.rate_burst",
		"transport.max_response_mb",
		"session.max_document_mb",
		"logging.level",
		"logging.mode",
		"logging.file",
		"logging.redact",
		"metrics.addr",
		"ui.markdown",
		"ui.no_color",
		"ui.word_wrap",
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
