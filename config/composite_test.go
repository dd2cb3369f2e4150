package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProvider1 struct {
	*stubProvider
}
type testProvider2 struct {
	*stubProvider
}

func notFound(key string) error {
	return errors.Join(errors.New("config '"+key+"' does not exist"), ErrKeyNotFound)
}

func TestCompositeProvider_Get(t *testing.T) {
	tests := map[string]struct {
		setStubs      func(p1 *stubProvider, p2 *stubProvider)
		expectedValue string
		expectedError string
		notFound      bool
	}{
		"exists_in_first_provider": {
			setStubs: func(p1 *stubProvider, p2 *stubProvider) {
				p1.set("key", "value", nil)
				p2.set("key", "other", nil)
			},
			expectedValue: "value",
		},
		"exists_in_second_provider": {
			setStubs: func(p1 *stubProvider, p2 *stubProvider) {
				p1.set("key", "", notFound("key"))
				p2.set("key", "value", nil)
			},
			expectedValue: "value",
		},
		"does_not_exist": {
			expectedValue: "",
			setStubs: func(p1 *stubProvider, p2 *stubProvider) {
				p1.set("key", "", notFound("key"))
				p2.set("key", "", notFound("key"))
			},
			expectedError: "config.testProvider1: config 'key' does not exist\nkey not found\nconfig.testProvider2: config 'key' does not exist\nkey not found",
			notFound:      true,
		},
		"failure_is_not_masked_as_missing": {
			setStubs: func(p1 *stubProvider, p2 *stubProvider) {
				p1.set("key", "", errBackend)
				p2.set("key", "", notFound("key"))
			},
			expectedError: "config.testProvider1: backend unavailable",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p1 := testProvider1{
				stubProvider: &stubProvider{},
			}
			p2 := testProvider2{
				stubProvider: &stubProvider{},
			}
			if tt.setStubs != nil {
				tt.setStubs(p1.stubProvider, p2.stubProvider)
			}
			p := NewCompositeProvider(
				p1,
				p2,
			)
			got, err := p.Get(context.Background(), "key")
			assertErrorMessage(t, err, tt.expectedError)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrKeyNotFound))
			if got != tt.expectedValue {
				t.Fatalf("expected value %q, got %q", tt.expectedValue, got)
			}
		})
	}
}

func TestCompositeProvider_GetWithSource(t *testing.T) {
	tests := map[string]struct {
		setStubs         func(p1 *stubProvider, p2 *stubProvider)
		expectedValue    string
		expectedProvider string
		expectedError    string
	}{
		"found_in_first_provider": {
			setStubs: func(p1 *stubProvider, p2 *stubProvider) {
				p1.set("key", "value1", nil)
			},
			expectedValue:    "value1",
			expectedProvider: "config.testProvider1",
		},
		"found_in_second_provider": {
			setStubs: func(p1 *stubProvider, p2 *stubProvider) {
				p2.set("key", "value2", nil)
			},
			expectedValue:    "value2",
			expectedProvider: "config.testProvider2",
		},
		"not_found_in_any_provider": {
			expectedValue:    "",
			expectedProvider: "",
			expectedError:    "config.testProvider1: key 'key' is not set: key not found\nconfig.testProvider2: key 'key' is not set: key not found",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p1 := testProvider1{
				stubProvider: &stubProvider{},
			}
			p2 := testProvider2{
				stubProvider: &stubProvider{},
			}
			if tt.setStubs != nil {
				tt.setStubs(p1.stubProvider, p2.stubProvider)
			}
			p := NewCompositeProvider(
				p1,
				p2,
			)
			gotValue, gotProvider, err := p.GetWithSource(context.Background(), "key")
			if gotValue != tt.expectedValue {
				t.Fatalf("expected value %q, got %q", tt.expectedValue, gotValue)
			}
			if gotProvider != tt.expectedProvider {
				t.Fatalf("expected provider %q, got %q", tt.expectedProvider, gotProvider)
			}
			assertErrorMessage(t, err, tt.expectedError)
		})
	}
}

func TestCompositeProvider_Empty(t *testing.T) {
	p := NewCompositeProvider()
	_, err := p.Get(context.Background(), "key")
	assert.True(t, errors.Is(err, ErrKeyNotFound))
	assert.Equal(t, "config.CompositeProvider", p.Name())

	_, err = p.Keys(context.Background())
	assert.True(t, errors.Is(err, ErrNotListable))
}

func TestCompositeProvider_Keys(t *testing.T) {
	lookup := LookupFunc(func(string) (string, bool) { return "", false })
	p := NewCompositeProvider(
		MapProvider{"B": "1", "A": "1"},
		lookup,
		MapProvider{"C": "1", "A": "2"},
	)

	keys, err := p.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, keys)
	assert.Equal(t, "config.MapProvider>config.LookupFunc>config.MapProvider", p.Name())
}

func TestResolver_UsesCompositeSource(t *testing.T) {
	p := NewCompositeProvider(MapProvider{}, MapProvider{"DATABASE_URL": "jdbc:postgresql://db:5432/airbyte"})
	r := NewResolver(p, WithIntrospection())

	got, err := r.Required(context.Background(), "DATABASE_URL")
	require.NoError(t, err)
	assert.Equal(t, "jdbc:postgresql://db:5432/airbyte", got)

	report := r.Report()
	require.Len(t, report.Configs, 1)
	assert.Equal(t, "config.MapProvider", report.Configs[0].Provider)
}
