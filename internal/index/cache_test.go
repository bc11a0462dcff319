package index

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetPut(t *testing.T) {
	c := NewCache(3)

	_, ok := c.Get("h1")
	assert.False(t, ok)

	c.Put("h1", []float32{1, 2, 3})
	vec, ok := c.Get("h1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, 1, c.Len())
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := NewCache(3)
	c.Put("h1", []float32{1, 2, 3})

	vec, ok := c.Get("h1")
	require.True(t, ok)
	vec[0] = 99

	again, ok := c.Get("h1")
	require.True(t, ok)
	assert.Equal(t, float32(1), again[0])
}

func TestCache_PutWrongDimensionIgnored(t *testing.T) {
	c := NewCache(3)
	c.Put("h1", []float32{1, 2})
	assert.Equal(t, 0, c.Len())
}

func TestCache_PutDoesNotOverwrite(t *testing.T) {
	c := NewCache(3)
	c.Put("h1", []float32{1, 2, 3})
	c.Put("h1", []float32{4, 5, 6})

	vec, ok := c.Get("h1")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestCache_SaveLoadRoundtrip(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	c := NewCache(3)
	c.Put("h1", []float32{1, 2, 3})
	c.Put("h2", []float32{4, 5, 6})
	require.True(t, c.Dirty())

	require.NoError(t, store.SaveCache(c))
	assert.False(t, c.Dirty())

	loaded := store.LoadCache(3)
	assert.Equal(t, 2, loaded.Len())
	vec, ok := loaded.Get("h2")
	require.True(t, ok)
	assert.Equal(t, []float32{4, 5, 6}, vec)
}

func TestCache_LoadCorruptReturnsEmpty(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	require.NoError(t, os.MkdirAll(store.Dir(), 0755))
	require.NoError(t, os.WriteFile(store.CachePath(), []byte("garbage"), 0644))

	loaded := store.LoadCache(3)
	assert.Equal(t, 0, loaded.Len())
}

func TestCache_LoadDimensionMismatchReturnsEmpty(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	c := NewCache(3)
	c.Put("h1", []float32{1, 2, 3})
	require.NoError(t, store.SaveCache(c))

	loaded := store.LoadCache(5)
	assert.Equal(t, 0, loaded.Len())
	assert.Equal(t, 5, loaded.Dimension())
}
