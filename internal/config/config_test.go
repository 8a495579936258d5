package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/models"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weave.yaml")
	content := `
interceptors:
  enabled:
    - github.com/acme/shop/audit.AuditInterceptor
    - github.com/acme/shop/log.LoggingInterceptor
  priorities:
    github.com/acme/shop/log.LoggingInterceptor: 5
deployment:
  concurrency: 8
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []models.TypeIdentity{
		"github.com/acme/shop/audit.AuditInterceptor",
		"github.com/acme/shop/log.LoggingInterceptor",
	}, cfg.Interceptors.EnabledInterceptors())
	assert.Equal(t, map[models.TypeIdentity]int{
		"github.com/acme/shop/log.LoggingInterceptor": 5,
	}, cfg.Interceptors.PriorityOverrides())
	assert.Equal(t, 8, cfg.Deployment.Concurrency)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.SlogLevel())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Nil(t, cfg.Interceptors.EnabledInterceptors())
	assert.Nil(t, cfg.Interceptors.PriorityOverrides())

	cfg, err = Parse([]byte("# only a comment\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConcurrency, cfg.Deployment.Concurrency)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "unknown key", content: "deployment:\n  workers: 3\n", wantMsg: "field workers not found"},
		{name: "bad yaml", content: "interceptors: [\n", wantMsg: "failed to parse configuration"},
		{name: "negative concurrency", content: "deployment:\n  concurrency: -1\n", wantMsg: "deployment.concurrency"},
		{name: "bad level", content: "logging:\n  level: trace\n", wantMsg: "invalid logging level"},
		{name: "bad format", content: "logging:\n  format: xml\n", wantMsg: "invalid logging format"},
		{name: "unqualified interceptor", content: "interceptors:\n  enabled: [Audit]\n", wantMsg: "expected <import path>.<Type>"},
		{name: "duplicate interceptor", content: "interceptors:\n  enabled: [a/b.C, a/b.C]\n", wantMsg: "enabled more than once"},
		{name: "bad priority key", content: "interceptors:\n  priorities:\n    \"a/b.\": 1\n", wantMsg: "interceptors.priorities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.True(t, weaveerrors.HasCode(err, weaveerrors.ConfigurationErrorCode))
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Deployment: DeploymentConfig{Concurrency: 0},
		Logging:    LoggingConfig{Level: "loud", Format: "yaml"},
	}
	err := Validate(cfg)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 3)
	assert.Contains(t, err.Error(), "3 errors")
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "weave.yaml")

	_, err := Load(missing)
	require.Error(t, err)
	assert.True(t, weaveerrors.HasCode(err, weaveerrors.FileSystemErrorCode))

	cfg, err := LoadOptional(missing)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WEAVE_LOGGING_LEVEL", "error")
	t.Setenv("WEAVE_DEPLOYMENT_CONCURRENCY", "2")

	cfg, err := Parse([]byte("logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.Deployment.Concurrency)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "component", "orders.Cart")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"component":"orders.Cart"`)
}
