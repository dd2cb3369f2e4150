package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing matches every *MissingConfigurationError with errors.Is.
	ErrMissing = errors.New("missing configuration")
	// ErrInvalid matches every *InvalidConfigurationError with errors.Is.
	ErrInvalid = errors.New("invalid configuration")
)

// MissingConfigurationError reports a required key that is unset and has no
// applicable default or fallback.
type MissingConfigurationError struct {
	Key string
}

// Error implements the error interface.
func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("config: '%s' is not set", e.Key)
}

// Is reports whether target is ErrMissing.
func (e *MissingConfigurationError) Is(target error) bool {
	return target == ErrMissing
}

// InvalidConfigurationError reports a value that is set but cannot be coerced into
// the setting's type. Value is masked for secret keys.
type InvalidConfigurationError struct {
	Key   string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *InvalidConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config: invalid value '%s' for '%s'", e.Value, e.Key)
	}
	return fmt.Sprintf("config: invalid value '%s' for '%s': %v", e.Value, e.Key, e.Err)
}

// Is reports whether target is ErrInvalid.
func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalid
}

// Unwrap returns the underlying coercion error.
func (e *InvalidConfigurationError) Unwrap() error {
	return e.Err
}
