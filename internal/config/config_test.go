// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CASECHAT_SERVICE_URL",
	"CASECHAT_ORIGIN",
	"CASECHAT_UPLOAD_TIMEOUT",
	"CASECHAT_PROBE_TIMEOUT",
	"CASECHAT_REQUEST_TIMEOUT",
	"CASECHAT_LOG_LEVEL",
	"CASECHAT_LOG_FILE",
	"CASECHAT_METRICS_ADDR",
	"CASECHAT_NO_COLOR",
	"NO_COLOR",
}

// isolate points HOME at a temp dir and unsets every override variable.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range envKeys {
		if old, ok := os.LookupEnv(key); ok {
			key := key
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, old) })
		}
	}
	return home
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:5000", cfg.Service.URL)
	assert.Equal(t, "/api/health", cfg.Service.HealthPath)
	assert.Equal(t, "/api/upload", cfg.Service.UploadPath)
	assert.Equal(t, "/api/chat", cfg.Service.ChatPath)
	assert.Equal(t, "file", cfg.Service.FileField)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, 30*time.Second, cfg.UploadTimeout())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 3, cfg.Transport.MaxRetries)
	assert.Equal(t, time.Second, cfg.BackoffStep())
	assert.Equal(t, int64(50*1024*1024), cfg.MaxDocumentBytes())
	assert.Equal(t, int64(10*1024*1024), cfg.MaxResponseBytes())
	assert.True(t, cfg.Logging.Redact)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.Service.URL = "localhost:5000" }, "service.url"},
		{"ftp url", func(c *Config) { c.Service.URL = "ftp://host" }, "service.url"},
		{"health path", func(c *Config) { c.Service.HealthPath = "api/health" }, "service.health_path"},
		{"bad origin", func(c *Config) { c.Service.Origin = "nohost" }, "service.origin"},
		{"request timeout", func(c *Config) { c.Transport.RequestTimeoutSecs = 0 }, "transport.request_timeout_secs"},
		{"probe timeout", func(c *Config) { c.Transport.ProbeTimeoutSecs = 61 }, "transport.probe_timeout_secs"},
		{"upload timeout", func(c *Config) { c.Transport.UploadTimeoutSecs = -1 }, "transport.upload_timeout_secs"},
		{"retries", func(c *Config) { c.Transport.MaxRetries = 11 }, "transport.max_retries"},
		{"backoff", func(c *Config) { c.Transport.BackoffStepMs = -5 }, "transport.backoff_step_ms"},
		{"rate", func(c *Config) { c.Transport.RateLimit = -1 }, "transport.rate_limit"},
		{"response cap", func(c *Config) { c.Transport.MaxResponseMB = 0 }, "transport.max_response_mb"},
		{"document cap", func(c *Config) { c.Session.MaxDocumentMB = 0 }, "session.max_document_mb"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log mode", func(c *Config) { c.Logging.Mode = "verbose" }, "logging.mode"},
		{"word wrap", func(c *Config) { c.UI.WordWrap = -1 }, "ui.word_wrap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var errs ValidateErrors
			require.ErrorAs(t, err, &errs)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}

	t.Run("origin accepted", func(t *testing.T) {
		cfg := Default()
		cfg.Service.Origin = "http://localhost:3000"
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_LoadDefaultsWhenNoFile(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.Service.URL)
	assert.Equal(t, filepath.Join(home, ".casechat", "logs", "diagnostic.log"), cfg.LogFile())
}

func TestConfig_LoadTOMLKeepsDefaultsForMissingKeys(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".casechat")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[service]
url = "http://analysis.internal:8080/"
origin = "http://localhost:3000"

[transport]
upload_timeout_secs = 120
`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://analysis.internal:8080", cfg.Service.URL)
	assert.Equal(t, "http://localhost:3000", cfg.Service.Origin)
	assert.Equal(t, 2*time.Minute, cfg.UploadTimeout())
	assert.Equal(t, "/api/chat", cfg.Service.ChatPath)
	assert.Equal(t, 3, cfg.Transport.MaxRetries)
}

func TestConfig_LoadJSON(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"service":{"url":"https://svc.example"},"logging":{"level":"debug"}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://svc.example", cfg.Service.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfig_LoadRejectsInvalidFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CASECHAT_SERVICE_URL", "http://10.0.0.5:5000")
	t.Setenv("CASECHAT_ORIGIN", "http://localhost:8080")
	t.Setenv("CASECHAT_UPLOAD_TIMEOUT", "90")
	t.Setenv("CASECHAT_PROBE_TIMEOUT", "not-a-number")
	t.Setenv("CASECHAT_LOG_LEVEL", "warn")
	t.Setenv("CASECHAT_LOG_FILE", "off")
	t.Setenv("CASECHAT_METRICS_ADDR", ":9100")
	t.Setenv("NO_COLOR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", cfg.Service.URL)
	assert.Equal(t, "http://localhost:8080", cfg.Service.Origin)
	assert.Equal(t, 90*time.Second, cfg.UploadTimeout())
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "", cfg.LogFile())
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.True(t, cfg.UI.NoColor)
}

func TestLoadEnvFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CASECHAT_METRICS_ADDR=127.0.0.1:9200\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("CASECHAT_METRICS_ADDR") })

	require.NoError(t, LoadEnvFile(path, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "127.0.0.1:9200", os.Getenv("CASECHAT_METRICS_ADDR"))

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "127.0.0.1:9200", cfg.Metrics.Addr)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Service.URL = "http://case-host:5000"
	cfg.Transport.RateLimit = 2.5

	require.NoError(t, Save(cfg))

	path, err := ConfigPathTOML()
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://case-host:5000", loaded.Service.URL)
	assert.Equal(t, 2.5, loaded.Transport.RateLimit)

	jsonPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveJSON(cfg, jsonPath))
	loaded, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "http://case-host:5000", loaded.Service.URL)
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("service.url")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", v)

	require.NoError(t, cfg.Set("service.origin", "http://localhost:3000"))
	assert.Equal(t, "http://localhost:3000", cfg.Service.Origin)

	require.NoError(t, cfg.Set("transport.max_retries", "5"))
	assert.Equal(t, 5, cfg.Transport.MaxRetries)

	require.NoError(t, cfg.Set("transport.rate_limit", "1.5"))
	assert.Equal(t, 1.5, cfg.Transport.RateLimit)

	require.NoError(t, cfg.Set("ui.no_color", "yes"))
	assert.True(t, cfg.UI.NoColor)

	require.NoError(t, cfg.Set("ui.word_wrap", 80))
	assert.Equal(t, 80, cfg.UI.WordWrap)

	assert.Error(t, cfg.Set("transport.max_retries", "many"))
	assert.Error(t, cfg.Set("service.nope", "x"))
	assert.Error(t, cfg.Set("service.url.host", "x"))
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestNormalizeFieldName(t *testing.T) {
	assert.Equal(t, "MaxRetries", normalizeFieldName("max_retries"))
	assert.Equal(t, "MaxDocumentMb", normalizeFieldName("max-document-mb"))
	assert.Equal(t, "Url", normalizeFieldName("url"))
}

func TestConfig_Clone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Service.URL = "http://other:1"
	assert.Equal(t, "http://localhost:5000", cfg.Service.URL)
	assert.Contains(t, cfg.String(), `"url": "http://localhost:5000"`)
}
