package errors

import "fmt"

// Common error wrapping patterns used throughout the codebase

// WrapRegisterError wraps an error with a "failed to register" message
func WrapRegisterError(componentType, name string, cause error) *BaseError {
	message := fmt.Sprintf("failed to register %s '%s'", componentType, name)
	return Wrap(RegistrationErrorCode, message, cause).
		WithContext("component_type", componentType).
		WithContext("name", name)
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause)
}

// WrapValidationError wraps an error with a "failed to validate" message
func WrapValidationError(field string, cause error) *BaseError {
	return Wrap(ValidationErrorCode, fmt.Sprintf("failed to validate %s", field), cause).
		WithContext("field", field)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}
