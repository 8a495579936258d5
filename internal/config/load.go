package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	weaveerrors "github.com/toyz/weave/internal/errors"
)

// Load reads a weave.yaml file, applies defaults and environment overrides, and validates
// the result. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, weaveerrors.WrapFileSystemError("read", path, err)
	}
	return Parse(data)
}

// LoadOptional behaves like Load but returns the defaults when the file does not exist
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && stderrors.Is(err, fs.ErrNotExist) {
		cfg = Defaults()
		applyEnvOverrides(cfg)
		if err := Validate(cfg); err != nil {
			return nil, weaveerrors.WrapConfigurationError(path, "validate", err)
		}
		return cfg, nil
	}
	return cfg, err
}

// Parse decodes a YAML document into a validated configuration
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := decodeStrict(data, &cfg); err != nil {
		return nil, weaveerrors.WrapConfigurationError(DefaultFileName, "parse", err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, weaveerrors.WrapConfigurationError(DefaultFileName, "validate", err)
	}
	return &cfg, nil
}

func decodeStrict(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnvOverrides applies WEAVE_SECTION_FIELD environment variables
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("WEAVE_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("WEAVE_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("WEAVE_DEPLOYMENT_CONCURRENCY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Deployment.Concurrency = i
		}
	}
}
