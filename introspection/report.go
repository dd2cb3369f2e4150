// Package introspection describes which configuration keys were read, where they came from,
// and how each read was resolved.
package introspection

import "sort"

// Resolution tags how a configuration read was satisfied.
type Resolution string

const (
	ResolutionFound    Resolution = "found"
	ResolutionFallback Resolution = "fallback"
	ResolutionDefault  Resolution = "default"
	ResolutionMissing  Resolution = "missing"
)

// Report aggregates recorded configuration accesses.
type Report struct {
	Configs []ConfigAccess `json:"configs" yaml:"configs"`
}

// ConfigAccess captures a single configuration key access.
// Values are never recorded; Secret only marks keys whose values are masked elsewhere.
type ConfigAccess struct {
	Key        string     `json:"key" yaml:"key"`
	Provider   string     `json:"provider" yaml:"provider"`
	Resolution Resolution `json:"resolution" yaml:"resolution"`
	Secret     bool       `json:"secret" yaml:"secret"`
	Caller     Caller     `json:"caller" yaml:"caller"`
	Order      int        `json:"order" yaml:"order"`
}

// Caller identifies the code location that produced an access.
type Caller struct {
	Func string `json:"func" yaml:"func"`
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// Count returns how many accesses were resolved with res.
func (r Report) Count(res Resolution) int {
	n := 0
	for _, c := range r.Configs {
		if c.Resolution == res {
			n++
		}
	}
	return n
}

// Keys returns the distinct keys in the report, sorted.
func (r Report) Keys() []string {
	seen := make(map[string]struct{}, len(r.Configs))
	keys := make([]string, 0, len(r.Configs))
	for _, c := range r.Configs {
		if _, ok := seen[c.Key]; ok {
			continue
		}
		seen[c.Key] = struct{}{}
		keys = append(keys, c.Key)
	}
	sort.Strings(keys)
	return keys
}

// Missing returns the distinct keys whose most recent access was unresolved, sorted.
func (r Report) Missing() []string {
	latest := make(map[string]ConfigAccess, len(r.Configs))
	for _, c := range r.Configs {
		if prev, ok := latest[c.Key]; !ok || c.Order > prev.Order {
			latest[c.Key] = c
		}
	}
	var keys []string
	for key, c := range latest {
		if c.Resolution == ResolutionMissing {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
