package cli

import "github.com/toyz/weave/internal/config"

// Config holds the configuration for one deployment run
type Config struct {
	// Patterns are the package patterns to scan, e.g. "./..." or "./internal/orders"
	Patterns []string

	// ModuleName overrides the module path read from go.mod when deriving import paths
	ModuleName string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Settings is the loaded weave.yaml; nil means defaults
	Settings *config.Config
}

func (c Config) settings() *config.Config {
	if c.Settings == nil {
		return config.Defaults()
	}
	return c.Settings
}
