package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryStore_PutGet tests a basic round trip
func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	_, ok, err := store.Get(ctx, "sport:cricket")
	require.NoError(t, err)
	assert.False(t, ok)

	written, err := store.Put(ctx, "sport:cricket", Entry{Payload: []byte("v1"), FetchedAt: now}, time.Minute)
	require.NoError(t, err)
	assert.True(t, written)

	entry, ok, err := store.Get(ctx, "sport:cricket")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), entry.Payload)
	assert.True(t, now.Equal(entry.FetchedAt))
	assert.Equal(t, 1, store.Len())
}

// TestMemoryStore_MonotonicPut tests that older or equal fetches never overwrite newer entries
func TestMemoryStore_MonotonicPut(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	written, err := store.Put(ctx, "k", Entry{Payload: []byte("newer"), FetchedAt: base.Add(time.Second)}, 0)
	require.NoError(t, err)
	require.True(t, written)

	written, err = store.Put(ctx, "k", Entry{Payload: []byte("older"), FetchedAt: base}, 0)
	require.NoError(t, err)
	assert.False(t, written)

	written, err = store.Put(ctx, "k", Entry{Payload: []byte("same"), FetchedAt: base.Add(time.Second)}, 0)
	require.NoError(t, err)
	assert.False(t, written)

	entry, _, _ := store.Get(ctx, "k")
	assert.Equal(t, []byte("newer"), entry.Payload)

	written, err = store.Put(ctx, "k", Entry{Payload: []byte("newest"), FetchedAt: base.Add(2 * time.Second)}, 0)
	require.NoError(t, err)
	assert.True(t, written)

	entry, _, _ = store.Get(ctx, "k")
	assert.Equal(t, []byte("newest"), entry.Payload)
	assert.Equal(t, 1, store.Len())
}

// TestMemoryStore_PingClose tests the no-op lifecycle methods
func TestMemoryStore_PingClose(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}
