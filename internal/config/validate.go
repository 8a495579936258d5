package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "logging.level").
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError holds every field error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a ValidationError listing every problem.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateInterceptors(&cfg.Interceptors)...)
	errs = append(errs, validateDeployment(&cfg.Deployment)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateInterceptors(cfg *InterceptorsConfig) []FieldError {
	var errs []FieldError

	seen := make(map[string]bool, len(cfg.Enabled))
	for i, id := range cfg.Enabled {
		field := fmt.Sprintf("interceptors.enabled[%d]", i)
		if err := validateIdentity(id); err != "" {
			errs = append(errs, FieldError{Field: field, Message: err})
			continue
		}
		if seen[id] {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("interceptor %q is enabled more than once", id),
			})
		}
		seen[id] = true
	}

	for id := range cfg.Priorities {
		if err := validateIdentity(id); err != "" {
			errs = append(errs, FieldError{Field: "interceptors.priorities." + id, Message: err})
		}
	}
	return errs
}

// validateIdentity requires "<import path>.<Type>"
func validateIdentity(id string) string {
	if strings.TrimSpace(id) == "" {
		return "interceptor identity is required"
	}
	dot := strings.LastIndex(id, ".")
	if dot <= 0 || dot == len(id)-1 || strings.LastIndex(id, "/") > dot {
		return fmt.Sprintf("invalid interceptor identity %q: expected <import path>.<Type>", id)
	}
	return ""
}

func validateDeployment(cfg *DeploymentConfig) []FieldError {
	if cfg.Concurrency < 1 {
		return []FieldError{{
			Field:   "deployment.concurrency",
			Message: fmt.Sprintf("concurrency must be at least 1, got %d", cfg.Concurrency),
		}}
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Format),
		})
	}
	return errs
}
