package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cleitonmarx/envconfigs/internal/callsite"
)

// namedConfigProvider wraps a Provider with its type name for error reporting.
type namedConfigProvider struct {
	ConfigProvider Provider
	Name           string
}

// CompositeProvider chains multiple providers and returns the first value found.
// Useful for layering, e.g., environment variables over a YAML file.
type CompositeProvider struct {
	providers []namedConfigProvider
}

// NewCompositeProvider creates a provider that tries each provider in order until one has the key.
func NewCompositeProvider(providers ...Provider) CompositeProvider {
	namedConfigProviders := make([]namedConfigProvider, len(providers))
	for i, p := range providers {
		namedConfigProviders[i] = namedConfigProvider{
			ConfigProvider: p,
			Name:           providerName(p),
		}
	}
	return CompositeProvider{
		providers: namedConfigProviders,
	}
}

// Get retrieves a configuration value from the first provider that has it.
func (p CompositeProvider) Get(ctx context.Context, name string) (string, error) {
	value, _, err := p.GetWithSource(ctx, name)
	return value, err
}

// GetWithSource retrieves a configuration value and reports which provider supplied it.
// The returned error wraps ErrKeyNotFound only when every provider reported the key as unset;
// otherwise it joins the failures of the providers that could not be read.
func (p CompositeProvider) GetWithSource(ctx context.Context, name string) (string, string, error) {
	var notFound, failures []error
	for _, provider := range p.providers {
		value, err := provider.ConfigProvider.Get(ctx, name)
		if err == nil {
			return value, provider.Name, nil
		}
		wrapped := fmt.Errorf("%s: %w", provider.Name, err)
		if errors.Is(err, ErrKeyNotFound) {
			notFound = append(notFound, wrapped)
			continue
		}
		failures = append(failures, wrapped)
	}
	if len(failures) > 0 {
		return "", "", errors.Join(failures...)
	}
	if len(notFound) == 0 {
		return "", "", fmt.Errorf("no providers configured for '%s': %w", name, ErrKeyNotFound)
	}
	return "", "", errors.Join(notFound...)
}

// Keys returns the union of the keys of every provider that implements Lister, sorted.
// Providers that cannot enumerate are skipped; ErrNotListable is returned only when none can.
func (p CompositeProvider) Keys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		listed bool
	)
	for _, provider := range p.providers {
		lister, ok := provider.ConfigProvider.(Lister)
		if !ok {
			continue
		}
		listed = true
		providerKeys, err := lister.Keys(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", provider.Name, err)
		}
		keys = append(keys, providerKeys...)
	}
	if !listed {
		return nil, ErrNotListable
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Name describes the chain, e.g. "config.EnvVarProvider>config.YAMLFileProvider".
func (p CompositeProvider) Name() string {
	names := make([]string, len(p.providers))
	for i, provider := range p.providers {
		names[i] = provider.Name
	}
	if len(names) == 0 {
		return callsite.TypeName(p)
	}
	return strings.Join(names, ">")
}
