package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// YAMLFileProvider serves configuration values from a flat YAML document:
//
//	DATABASE_USER: airbyte
//	JOB_MAIN_CONTAINER_CPU_REQUEST: 500m
//	AIRBYTE_ROLE: ~
//
// Scalars are kept as written. Keys holding null are treated as unset.
// The document is read once when the provider is created.
type YAMLFileProvider struct {
	path   string
	values map[string]string
}

// NewYAMLFileProvider reads and parses the YAML document at path.
func NewYAMLFileProvider(path string) (YAMLFileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return YAMLFileProvider{}, fmt.Errorf("config: read file: %w", err)
	}
	p, err := ParseYAMLProvider(data)
	if err != nil {
		return YAMLFileProvider{}, fmt.Errorf("config: parse '%s': %w", path, err)
	}
	p.path = path
	return p, nil
}

// ParseYAMLProvider builds a provider from an in-memory YAML document.
func ParseYAMLProvider(data []byte) (YAMLFileProvider, error) {
	var raw map[string]*string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return YAMLFileProvider{}, fmt.Errorf("parse YAML: %w", err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v != nil {
			values[k] = *v
		}
	}
	return YAMLFileProvider{values: values}, nil
}

// Get returns the value stored under name.
func (p YAMLFileProvider) Get(_ context.Context, name string) (string, error) {
	value, ok := p.values[name]
	if !ok {
		return "", fmt.Errorf("key '%s' is not set in %s: %w", name, p.source(), ErrKeyNotFound)
	}
	return value, nil
}

// Keys returns the non-null keys of the document, sorted.
func (p YAMLFileProvider) Keys(_ context.Context) ([]string, error) {
	return slices.Sorted(maps.Keys(p.values)), nil
}

// Path returns the file the provider was loaded from, if any.
func (p YAMLFileProvider) Path() string {
	return p.path
}

func (p YAMLFileProvider) source() string {
	if p.path == "" {
		return "YAML document"
	}
	return fmt.Sprintf("'%s'", p.path)
}
