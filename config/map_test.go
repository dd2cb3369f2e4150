package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapProvider(t *testing.T) {
	p := MapProvider{"b": "2", "a": "1", "empty": ""}

	got, err := p.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	got, err = p.Get(context.Background(), "empty")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = p.Get(context.Background(), "missing")
	assertErrorMessage(t, err, "key 'missing' is not set: key not found")
	assert.True(t, errors.Is(err, ErrKeyNotFound))

	keys, err := p.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "empty"}, keys)
}

func TestLookupFunc(t *testing.T) {
	env := map[string]string{"AIRBYTE_ROLE": "dev"}
	p := LookupFunc(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	got, err := p.Get(context.Background(), "AIRBYTE_ROLE")
	require.NoError(t, err)
	assert.Equal(t, "dev", got)

	_, err = p.Get(context.Background(), "AIRBYTE_VERSION")
	assert.True(t, errors.Is(err, ErrKeyNotFound))

	_, isLister := any(p).(Lister)
	assert.False(t, isLister)
}
