// Package config resolves typed configuration values from pluggable key-value providers.
// It offers the resolution primitives used by typed accessors: direct and required lookups,
// defaults, layered fallbacks, coercion into typed values, and the delimited-string parsers
// used for list and map settings. Every read goes back to the provider; nothing is cached.
package config

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// secretMask replaces secret values in logs and errors.
const secretMask = "*****"

var (
	// ErrKeyNotFound is wrapped by providers when a key has no value.
	ErrKeyNotFound = errors.New("key not found")
	// ErrNotListable is returned when an operation needs to enumerate keys
	// and the provider does not implement Lister.
	ErrNotListable = errors.New("provider cannot enumerate keys")
)

// Provider retrieves configuration values by key.
// Implementations return an error wrapping ErrKeyNotFound when the key is unset.
type Provider interface {
	// Get retrieves the configuration value for the given key.
	Get(ctx context.Context, key string) (string, error)
}

// Lister is implemented by providers that can enumerate the keys they hold.
type Lister interface {
	// Keys returns every key currently held by the provider.
	Keys(ctx context.Context) ([]string, error)
}

// ParseFunc is a function that parses a string value into type T.
type ParseFunc[T any] func(value string) (T, error)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report defaults, fallbacks and dropped input.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIntrospection records every key access so it can be inspected with Resolver.Report.
func WithIntrospection() Option {
	return func(r *Resolver) {
		r.recorder = newAccessRecorder()
	}
}

// WithSecrets marks keys whose values must never appear in logs or error messages.
func WithSecrets(keys ...string) Option {
	return func(r *Resolver) {
		for _, k := range keys {
			r.secrets[k] = struct{}{}
		}
	}
}

// Resolver reads keys from a Provider and applies the resolution policies.
// It is safe for concurrent use when the underlying provider is.
type Resolver struct {
	provider     Provider
	providerName string
	logger       *zap.Logger
	recorder     *accessRecorder
	secrets      map[string]struct{}
}

// NewResolver creates a Resolver backed by provider.
func NewResolver(provider Provider, opts ...Option) *Resolver {
	r := &Resolver{
		provider:     provider,
		providerName: providerName(provider),
		logger:       zap.NewNop(),
		secrets:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provider returns the provider the resolver reads from.
func (r *Resolver) Provider() Provider {
	return r.provider
}

// Logger returns the logger the resolver reports to.
func (r *Resolver) Logger() *zap.Logger {
	return r.logger
}

// IsSecret reports whether key was registered with WithSecrets.
func (r *Resolver) IsSecret(key string) bool {
	_, ok := r.secrets[key]
	return ok
}

// Lookup returns the value of key and whether it is set.
// Provider failures other than a missing key are logged and reported as unset.
func (r *Resolver) Lookup(ctx context.Context, key string) (string, bool) {
	value, ok, err := r.lookup(ctx, key, 1)
	if err != nil {
		r.logger.Warn("failed to read configuration key, treating it as unset",
			zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, ok
}

// Required returns the value of key or a *MissingConfigurationError when it is unset.
// An empty value is a value.
func (r *Resolver) Required(ctx context.Context, key string) (string, error) {
	return r.required(ctx, key, 1)
}

// WithDefault returns the value of key, or defaultValue when key is unset or empty.
// It never fails.
func (r *Resolver) WithDefault(ctx context.Context, key, defaultValue string) string {
	value, source, ok, err := r.fetch(ctx, key)
	if err == nil && ok && value != "" {
		r.record(key, source, Found, 1)
		return value
	}
	if err != nil {
		r.logger.Warn("failed to read configuration key, using default",
			zap.String("key", key), zap.Error(err))
	}
	r.logger.Info("using default value for configuration key",
		zap.String("key", key), zap.String("default", r.mask(key, defaultValue)))
	r.record(key, "", UsedDefault, 1)
	return defaultValue
}

// lookup reads key and records the access depth frames above its caller.
func (r *Resolver) lookup(ctx context.Context, key string, depth int) (string, bool, error) {
	value, source, ok, err := r.fetch(ctx, key)
	if err != nil {
		return "", false, err
	}
	if !ok {
		r.record(key, "", Missing, depth+1)
		return "", false, nil
	}
	r.record(key, source, Found, depth+1)
	return value, true, nil
}

func (r *Resolver) required(ctx context.Context, key string, depth int) (string, error) {
	value, ok, err := r.lookup(ctx, key, depth+1)
	if err != nil {
		return "", fmt.Errorf("config: reading '%s': %w", key, err)
	}
	if !ok {
		return "", &MissingConfigurationError{Key: key}
	}
	return value, nil
}

// fetch queries the provider once, reporting the source that supplied the value.
// A missing key is not an error.
func (r *Resolver) fetch(ctx context.Context, key string) (string, string, bool, error) {
	var (
		value  string
		source string
		err    error
	)
	if sp, ok := r.provider.(ProviderWithSource); ok {
		value, source, err = sp.GetWithSource(ctx, key)
	} else {
		value, err = r.provider.Get(ctx, key)
		source = r.providerName
	}
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	return value, source, true, nil
}

func (r *Resolver) mask(key, value string) string {
	if r.IsSecret(key) && value != "" {
		return secretMask
	}
	return value
}
