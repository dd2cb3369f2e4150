package config

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvVarProvider retrieves configuration values from environment variables.
type EnvVarProvider struct{}

// NewEnvVarProvider creates a new environment variable configuration provider.
func NewEnvVarProvider() EnvVarProvider {
	return EnvVarProvider{}
}

// Get retrieves the environment variable value for the given name.
func (p EnvVarProvider) Get(_ context.Context, name string) (string, error) {
	value, exists := os.LookupEnv(name)
	if !exists {
		return "", fmt.Errorf("environment variable '%s' is not set: %w", name, ErrKeyNotFound)
	}
	return value, nil
}

// Keys returns the names of all environment variables of the process.
func (p EnvVarProvider) Keys(_ context.Context) ([]string, error) {
	environ := os.Environ()
	keys := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if name != "" {
			keys = append(keys, name)
		}
	}
	return keys, nil
}
