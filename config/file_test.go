package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
DATABASE_USER: airbyte
JOB_MAIN_CONTAINER_CPU_REQUEST: 500m
MAX_WORKERS: 5
ENABLED: true
AIRBYTE_ROLE: ~
JOB_KUBE_TOLERATIONS: "key=airbyte-server,operator=Exists,effect=NoSchedule"
`

func TestNewYAMLFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airbyte.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	p, err := NewYAMLFileProvider(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Path())

	tests := map[string]struct {
		key         string
		want        string
		expectedErr string
	}{
		"string":     {key: "DATABASE_USER", want: "airbyte"},
		"quantity":   {key: "JOB_MAIN_CONTAINER_CPU_REQUEST", want: "500m"},
		"int_scalar": {key: "MAX_WORKERS", want: "5"},
		"bool":       {key: "ENABLED", want: "true"},
		"quoted":     {key: "JOB_KUBE_TOLERATIONS", want: "key=airbyte-server,operator=Exists,effect=NoSchedule"},
		"null_is_unset": {
			key:         "AIRBYTE_ROLE",
			expectedErr: "key 'AIRBYTE_ROLE' is not set in '" + path + "': key not found",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := p.Get(context.Background(), tt.key)
			assertErrorMessage(t, err, tt.expectedErr)
			assert.Equal(t, tt.want, got)
		})
	}

	keys, err := p.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DATABASE_USER", "ENABLED", "JOB_KUBE_TOLERATIONS", "JOB_MAIN_CONTAINER_CPU_REQUEST", "MAX_WORKERS"}, keys)
}

func TestNewYAMLFileProvider_Errors(t *testing.T) {
	_, err := NewYAMLFileProvider(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a\n- map\n"), 0o600))
	_, err = NewYAMLFileProvider(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse YAML")
}

func TestParseYAMLProvider_Empty(t *testing.T) {
	p, err := ParseYAMLProvider(nil)
	require.NoError(t, err)

	_, err = p.Get(context.Background(), "ANY")
	assertErrorMessage(t, err, "key 'ANY' is not set in YAML document: key not found")
}
