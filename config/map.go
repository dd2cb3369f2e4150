package config

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// MapProvider serves configuration values from an in-memory map.
// The map is read, never written, so it may be shared between goroutines.
type MapProvider map[string]string

// Get returns the value stored under name.
func (p MapProvider) Get(_ context.Context, name string) (string, error) {
	value, ok := p[name]
	if !ok {
		return "", fmt.Errorf("key '%s' is not set: %w", name, ErrKeyNotFound)
	}
	return value, nil
}

// Keys returns the map keys, sorted.
func (p MapProvider) Keys(_ context.Context) ([]string, error) {
	return slices.Sorted(maps.Keys(p)), nil
}

// LookupFunc adapts a lookup function with os.LookupEnv semantics into a Provider.
// It cannot enumerate keys.
type LookupFunc func(key string) (string, bool)

// Get calls f.
func (f LookupFunc) Get(_ context.Context, name string) (string, error) {
	value, ok := f(name)
	if !ok {
		return "", fmt.Errorf("key '%s' is not set: %w", name, ErrKeyNotFound)
	}
	return value, nil
}
