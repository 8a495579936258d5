package config

import (
	"io"
	"log/slog"

	"github.com/toyz/weave/internal/models"
)

// Config is the root of a weave.yaml file
type Config struct {
	// Interceptors controls which binding-style interceptors are enabled and how they are ordered.
	Interceptors InterceptorsConfig `yaml:"interceptors"`

	// Deployment controls how components are initialized.
	Deployment DeploymentConfig `yaml:"deployment"`

	// Logging controls the structured logger handed to the initializer and registries.
	Logging LoggingConfig `yaml:"logging"`
}

// InterceptorsConfig is the enablement section, playing the role of a beans.xml interceptors list.
type InterceptorsConfig struct {
	// Enabled lists interceptor identities ("<import path>.<Type>") in enablement order.
	// When empty, every interceptor not declared -Disabled is enabled.
	Enabled []string `yaml:"enabled"`

	// Priorities overrides declared interceptor priorities by identity.
	Priorities map[string]int `yaml:"priorities"`
}

// DeploymentConfig contains deployment settings.
type DeploymentConfig struct {
	// Concurrency bounds how many components are initialized at the same time.
	// Default: 4
	Concurrency int `yaml:"concurrency"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is text or json.
	// Default: "text"
	Format string `yaml:"format"`
}

// EnabledInterceptors returns the enablement list as type identities
func (c *InterceptorsConfig) EnabledInterceptors() []models.TypeIdentity {
	if len(c.Enabled) == 0 {
		return nil
	}
	ids := make([]models.TypeIdentity, len(c.Enabled))
	for i, id := range c.Enabled {
		ids[i] = models.TypeIdentity(id)
	}
	return ids
}

// PriorityOverrides returns the priority overrides keyed by type identity
func (c *InterceptorsConfig) PriorityOverrides() map[models.TypeIdentity]int {
	if len(c.Priorities) == 0 {
		return nil
	}
	overrides := make(map[models.TypeIdentity]int, len(c.Priorities))
	for id, priority := range c.Priorities {
		overrides[models.TypeIdentity(id)] = priority
	}
	return overrides
}

// SlogLevel converts the configured level; unknown levels fall back to info
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the structured logger described by the logging section
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
