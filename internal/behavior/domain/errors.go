package domain

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrConfiguration        = errors.New("baseline configuration incomplete")
	ErrInvalidBaseline      = errors.New("invalid baseline")
	ErrInvalidSession       = errors.New("invalid session")
	ErrSessionAlreadyScored = errors.New("session already scored")
	ErrUnknownFormula       = errors.New("unknown score formula version")
)

// ConfigurationError reports a missing or unusable baseline. Callers should
// surface it as "setup incomplete" rather than as a zero score.
type ConfigurationError struct {
	// Field is the baseline field that failed validation.
	Field string

	// Message describes the failure.
	Message string

	// Value is the offending value, if any.
	Value any
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("baseline %s: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("baseline %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(field, message string, value any) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func invalidSession(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSession, fmt.Sprintf(format, args...))
}
