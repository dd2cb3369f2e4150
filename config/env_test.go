package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvVarProvider_Get(t *testing.T) {
	t.Setenv("EXISTING_KEY", "some_value")
	t.Setenv("EMPTY_KEY", "")

	tests := map[string]struct {
		envKey      string
		want        string
		expectedErr string
	}{
		"existing_key": {
			envKey: "EXISTING_KEY",
			want:   "some_value",
		},
		"empty_key": {
			envKey: "EMPTY_KEY",
			want:   "",
		},
		"missing_key": {
			envKey:      "MISSING_KEY_7f3a",
			want:        "",
			expectedErr: "environment variable 'MISSING_KEY_7f3a' is not set: key not found",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := NewEnvVarProvider()
			got, err := p.Get(context.Background(), tt.envKey)
			assertErrorMessage(t, err, tt.expectedErr)
			if tt.expectedErr != "" {
				assert.True(t, errors.Is(err, ErrKeyNotFound))
			}
			if got != tt.want {
				t.Fatalf("expected value %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEnvVarProvider_Keys(t *testing.T) {
	t.Setenv("JOB_DEFAULT_ENV_FROM_TEST", "VAL=WITH=EQUALS")

	keys, err := NewEnvVarProvider().Keys(context.Background())
	require.NoError(t, err)
	assert.Contains(t, keys, "JOB_DEFAULT_ENV_FROM_TEST")
	for _, k := range keys {
		assert.NotContains(t, k, "=")
	}
}

func TestResolver_WithPrefix_Env(t *testing.T) {
	t.Setenv("ENVCONFIGS_TEST_PREFIX_ONE", "1")
	t.Setenv("ENVCONFIGS_TEST_PREFIX_TWO", `a"b$c`)

	got, err := NewResolver(NewEnvVarProvider()).WithPrefix(context.Background(), "ENVCONFIGS_TEST_PREFIX_")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ONE": "1", "TWO": `a"b$c`}, got)
}
