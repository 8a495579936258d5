package config

// Default values for configuration fields.
const (
	DefaultFileName = "weave.yaml"

	DefaultConcurrency   = 4
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// Defaults returns a configuration with every default applied
func Defaults() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields
func ApplyDefaults(cfg *Config) {
	if cfg.Deployment.Concurrency == 0 {
		cfg.Deployment.Concurrency = DefaultConcurrency
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
}
