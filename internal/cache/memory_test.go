package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, found, err := m.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "cart", "[]"))
	require.NoError(t, m.Set(ctx, "cart", `[{"id":"1"}]`))

	v, found, err := m.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, v)
}
