package config

import (
	"context"
	"sort"
	"sync"

	"github.com/cleitonmarx/envconfigs/internal/callsite"
	"github.com/cleitonmarx/envconfigs/introspection"
)

// ProviderWithSource is an optional interface that providers can implement to report their source.
// For example, CompositeProvider reports which sub-provider supplied the value.
type ProviderWithSource interface {
	// GetWithSource retrieves a configuration value and reports its provider source.
	GetWithSource(ctx context.Context, key string) (string, string, error)
}

// accessRecorder keeps an ordered log of key accesses for introspection.
type accessRecorder struct {
	mu       sync.Mutex
	order    int
	accesses []introspection.ConfigAccess
}

func newAccessRecorder() *accessRecorder {
	return &accessRecorder{}
}

// record logs an access attributed to the frame depth levels above the function calling record.
func (r *Resolver) record(key, source string, kind ResolutionKind, depth int) {
	if r.recorder == nil {
		return
	}
	frame := callsite.Caller(depth + 1)
	r.recorder.add(introspection.ConfigAccess{
		Key:        key,
		Provider:   source,
		Resolution: kind.tag(),
		Secret:     r.IsSecret(key),
		Caller: introspection.Caller{
			Func: frame.Func,
			File: frame.File,
			Line: frame.Line,
		},
	})
}

func (a *accessRecorder) add(access introspection.ConfigAccess) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.order++
	access.Order = a.order
	a.accesses = append(a.accesses, access)
}

// snapshot returns the accesses sorted by key name, then file, then line.
func (a *accessRecorder) snapshot() []introspection.ConfigAccess {
	a.mu.Lock()
	out := make([]introspection.ConfigAccess, len(a.accesses))
	copy(out, a.accesses)
	a.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Key == out[j].Key {
			if out[i].Caller.File == out[j].Caller.File {
				return out[i].Caller.Line < out[j].Caller.Line
			}
			return out[i].Caller.File < out[j].Caller.File
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Report returns every recorded access. It is empty unless the resolver was
// created with WithIntrospection.
func (r *Resolver) Report() introspection.Report {
	if r.recorder == nil {
		return introspection.Report{}
	}
	return introspection.Report{Configs: r.recorder.snapshot()}
}

func providerName(p Provider) string {
	if named, ok := p.(interface{ Name() string }); ok {
		return named.Name()
	}
	return callsite.TypeName(p)
}
