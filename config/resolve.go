package config

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cleitonmarx/envconfigs/introspection"
)

// ResolutionKind tags how a layered lookup was satisfied.
type ResolutionKind int

const (
	// Missing means neither the key nor any fallback produced a value.
	Missing ResolutionKind = iota
	// Found means the requested key supplied the value.
	Found
	// UsedFallback means the value came from the fallback lookup.
	UsedFallback
	// UsedDefault means a fixed default replaced an unset key.
	UsedDefault
)

// String returns the introspection tag for k.
func (k ResolutionKind) String() string {
	return string(k.tag())
}

func (k ResolutionKind) tag() introspection.Resolution {
	switch k {
	case Found:
		return introspection.ResolutionFound
	case UsedFallback:
		return introspection.ResolutionFallback
	case UsedDefault:
		return introspection.ResolutionDefault
	default:
		return introspection.ResolutionMissing
	}
}

// Resolution is the outcome of a layered lookup.
type Resolution struct {
	Kind  ResolutionKind
	Value string
	// Key is the key that supplied Value. It is empty for defaults and misses.
	Key string
}

// Ok reports whether the resolution produced a value.
func (r Resolution) Ok() bool {
	return r.Kind != Missing
}

// FallbackFunc is a required lookup consulted when the primary key is unset.
// It returns the key it resolved together with its value.
type FallbackFunc func(ctx context.Context) (key string, value string, err error)

// RequiredFallback returns a FallbackFunc performing a required lookup of key.
func (r *Resolver) RequiredFallback(key string) FallbackFunc {
	return func(ctx context.Context) (string, string, error) {
		value, err := r.required(ctx, key, 2)
		return key, value, err
	}
}

// Fallback resolves key, falling back to fallback when key is unset or empty.
// A set key always wins and the fallback is never consulted. When both are unset
// the fallback's error is returned along with a Missing resolution.
func (r *Resolver) Fallback(ctx context.Context, key string, fallback FallbackFunc) (Resolution, error) {
	value, source, ok, err := r.fetch(ctx, key)
	if err != nil {
		r.logger.Warn("failed to read configuration key, trying fallback",
			zap.String("key", key), zap.Error(err))
	}
	if err == nil && ok && value != "" {
		r.record(key, source, Found, 1)
		return Resolution{Kind: Found, Value: value, Key: key}, nil
	}

	fallbackKey, fallbackValue, err := fallback(ctx)
	if err != nil {
		r.record(key, "", Missing, 1)
		return Resolution{Kind: Missing}, err
	}
	r.logger.Debug("configuration key unset, using fallback",
		zap.String("key", key), zap.String("fallback", fallbackKey))
	r.record(key, "", UsedFallback, 1)
	return Resolution{Kind: UsedFallback, Value: fallbackValue, Key: fallbackKey}, nil
}

// Parse performs a required lookup of key and converts the value with parse.
// Conversion failures are reported as *InvalidConfigurationError. For secret keys the
// parser's error is replaced, since parsers commonly quote their input.
func Parse[T any](ctx context.Context, r *Resolver, key string, parse ParseFunc[T]) (T, error) {
	var zero T
	raw, err := r.required(ctx, key, 1)
	if err != nil {
		return zero, err
	}
	value, err := parse(raw)
	if err != nil {
		if r.IsSecret(key) {
			err = fmt.Errorf("cannot parse value as %T", zero)
		}
		return zero, &InvalidConfigurationError{Key: key, Value: r.mask(key, raw), Err: err}
	}
	return value, nil
}

// Enum resolves key into one of a fixed set of members. The raw value is trimmed and
// upper-cased before being passed to match. Unset or unrecognized values resolve to
// defaultValue; Enum never fails.
func Enum[T any](ctx context.Context, r *Resolver, key string, defaultValue T, match func(normalized string) (T, bool)) T {
	raw, source, ok, err := r.fetch(ctx, key)
	if err != nil {
		r.logger.Warn("failed to read configuration key, using default",
			zap.String("key", key), zap.Error(err))
	}
	if err == nil && ok {
		if value, matched := match(strings.ToUpper(strings.TrimSpace(raw))); matched {
			r.record(key, source, Found, 1)
			return value
		}
		r.logger.Info("configuration value not recognized, using default",
			zap.String("key", key), zap.String("value", r.mask(key, raw)), zap.Any("default", defaultValue))
	}
	r.record(key, "", UsedDefault, 1)
	return defaultValue
}
