package config

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	recordSeparator = ";"
	pairSeparator   = ","
	assignment      = "="
)

// Pair is one field=value token of a delimited string.
type Pair struct {
	Field string
	Value string
}

// ParsePair parses a single field=value token. Surrounding whitespace is ignored.
// Tokens without exactly one '=' or with an empty side are rejected.
func ParsePair(token string) (Pair, bool) {
	field, value, ok := strings.Cut(strings.TrimSpace(token), assignment)
	if !ok || strings.Contains(value, assignment) {
		return Pair{}, false
	}
	field, value = strings.TrimSpace(field), strings.TrimSpace(value)
	if field == "" || value == "" {
		return Pair{}, false
	}
	return Pair{Field: field, Value: value}, true
}

// ParsePairs splits s on ',' and keeps the well-formed field=value tokens in order.
// Malformed tokens are dropped.
func ParsePairs(s string) []Pair {
	var pairs []Pair
	for _, token := range strings.Split(s, pairSeparator) {
		if p, ok := ParsePair(token); ok {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// ParseRecords splits s on ';' into entries and each entry into pairs.
// Blank entries and entries without any well-formed pair are dropped, so the
// result only holds entries that carry at least one field, in input order.
func ParseRecords(s string) [][]Pair {
	var records [][]Pair
	for _, entry := range strings.Split(s, recordSeparator) {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		if pairs := ParsePairs(entry); len(pairs) > 0 {
			records = append(records, pairs)
		}
	}
	return records
}

// ParseStringMap parses a ','-delimited list of key=value pairs.
// The result is absent when no well-formed pair exists. Later duplicates win.
func ParseStringMap(s string) Optional[map[string]string] {
	pairs := ParsePairs(s)
	if len(pairs) == 0 {
		return None[map[string]string]()
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Field] = p.Value
	}
	return Some(m)
}

// StringMap resolves key as a ','-delimited key=value map. Unset keys and values
// without any well-formed pair resolve to an absent Optional.
func (r *Resolver) StringMap(ctx context.Context, key string) Optional[map[string]string] {
	raw, ok, err := r.lookup(ctx, key, 1)
	if err != nil {
		r.logger.Warn("failed to read configuration key, treating it as unset",
			zap.String("key", key), zap.Error(err))
		return None[map[string]string]()
	}
	if !ok {
		return None[map[string]string]()
	}
	m := ParseStringMap(raw)
	if !m.IsPresent() && strings.TrimSpace(raw) != "" {
		r.logger.Info("configuration value holds no key=value pair, ignoring it",
			zap.String("key", key))
	}
	return m
}

// Records resolves key as a ';'-delimited list of ','-delimited field=value entries.
// Unset or blank values resolve to nil.
func (r *Resolver) Records(ctx context.Context, key string) [][]Pair {
	raw, ok, err := r.lookup(ctx, key, 1)
	if err != nil {
		r.logger.Warn("failed to read configuration key, treating it as unset",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return ParseRecords(raw)
}

// WithPrefix returns every key starting with prefix, mapped from the key with the
// prefix stripped to its raw value. Values are returned verbatim. The result is
// never nil. The provider must implement Lister.
func (r *Resolver) WithPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	lister, ok := r.provider.(Lister)
	if !ok {
		return nil, fmt.Errorf("config: scanning prefix '%s' on %s: %w", prefix, r.providerName, ErrNotListable)
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("config: listing keys: %w", err)
	}
	sort.Strings(keys)

	out := make(map[string]string)
	for _, key := range keys {
		suffix, found := strings.CutPrefix(key, prefix)
		if !found || suffix == "" {
			continue
		}
		value, ok, err := r.lookup(ctx, key, 1)
		if err != nil {
			return nil, fmt.Errorf("config: reading '%s': %w", key, err)
		}
		if ok {
			out[suffix] = value
		}
	}
	return out, nil
}
