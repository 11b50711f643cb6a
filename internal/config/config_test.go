package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENVIRONMENT", "DRAFTDESK_API_BASE_URL", "DRAFTDESK_USER_ID",
		"DRAFTDESK_POLL_INTERVAL", "DRAFTDESK_TOP_K", "DRAFTDESK_VERIFY_PDF",
		"DRAFTDESK_INTAKE_FOLDER", "DRAFTDESK_MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIBaseURL)
	assert.Equal(t, DefaultUserID, cfg.UserID)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, "최근 문서함", cfg.IntakeFolderName)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 3, cfg.TopK)
	assert.True(t, cfg.VerifyPDF)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DRAFTDESK_API_BASE_URL", "https://drafts.example.com")
	t.Setenv("DRAFTDESK_POLL_INTERVAL", "500ms")
	t.Setenv("DRAFTDESK_STATUS_CONCURRENCY", "8")
	t.Setenv("DRAFTDESK_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("DRAFTDESK_VERIFY_PDF", "false")
	t.Setenv("DRAFTDESK_TOP_K", "not-a-number")

	cfg := Load()
	assert.Equal(t, "https://drafts.example.com", cfg.APIBaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 8, cfg.StatusConcurrency)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.False(t, cfg.VerifyPDF)
	assert.Equal(t, DefaultTopK, cfg.TopK, "unparsable values fall back to the default")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:        "http://localhost:8000",
			UserID:            DefaultUserID,
			PollInterval:      time.Second,
			StatusConcurrency: 1,
			TopK:              3,
			MaxUploadBytes:    MaxUploadBytes,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing base URL", func(c *Config) { c.APIBaseURL = "" }, "DRAFTDESK_API_BASE_URL"},
		{"bad user ID", func(c *Config) { c.UserID = "alice" }, "DRAFTDESK_USER_ID"},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, "DRAFTDESK_POLL_INTERVAL"},
		{"zero concurrency", func(c *Config) { c.StatusConcurrency = 0 }, "DRAFTDESK_STATUS_CONCURRENCY"},
		{"negative poll interval", func(c *Config) { c.PollInterval = -time.Second }, "DRAFTDESK_POLL_INTERVAL"},
		{"top k too large", func(c *Config) { c.TopK = MaxTopK + 1 }, "DRAFTDESK_TOP_K"},
		{"negative top k", func(c *Config) { c.TopK = -1 }, "DRAFTDESK_TOP_K"},
		{"no upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, "DRAFTDESK_MAX_UPLOAD_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			var errs validation.Errors
			assert.ErrorAs(t, err, &errs, "field errors come back as a map")
			assert.Len(t, errs, 1, "only the mutated field fails")
		})
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"draftdesk-2025-01-01T00-00-00.log",
		"draftdesk-2025-01-02T00-00-00.log",
		"draftdesk-2025-01-03T00-00-00.log",
		"unrelated.log",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0644))
	}

	require.NoError(t, cleanupOldLogs(dir, 2))

	left, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	var base []string
	for _, f := range left {
		base = append(base, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{
		"draftdesk-2025-01-02T00-00-00.log",
		"draftdesk-2025-01-03T00-00-00.log",
		"unrelated.log",
	}, base)
}

func TestNewLoggerLevels(t *testing.T) {
	var console, file bytes.Buffer
	logger := NewLogger(&console, &file, "prod")

	logger.Debug("debug detail", "k", "v")
	logger.Info("info line")

	assert.NotContains(t, console.String(), "debug detail")
	assert.Contains(t, console.String(), "info line")
	assert.Contains(t, file.String(), "debug detail")
	assert.Contains(t, file.String(), "config_test.go:")
}

func TestNewLoggerNoWriters(t *testing.T) {
	logger := NewLogger(nil, nil, "dev")
	require.NotNil(t, logger)
	logger.Info("discarded")
}
