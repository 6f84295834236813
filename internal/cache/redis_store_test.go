package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedisStoreSetup is a helper struct to hold test dependencies
type testRedisStoreSetup struct {
	store     *RedisStore
	miniRedis *miniredis.Miniredis
	ctx       context.Context
}

// setupTestRedisStore creates a test store with miniredis
func setupTestRedisStore(t *testing.T) *testRedisStoreSetup {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	store := NewRedisStore(RedisStoreConfig{
		Addr:      mr.Addr(),
		KeyPrefix: "test",
	}, zerolog.Nop())

	return &testRedisStoreSetup{
		store:     store,
		miniRedis: mr,
		ctx:       context.Background(),
	}
}

// cleanup cleans up test resources
func (s *testRedisStoreSetup) cleanup() {
	s.store.Close()
	s.miniRedis.Close()
}

// TestNewRedisStore tests store creation
func TestNewRedisStore(t *testing.T) {
	setup := setupTestRedisStore(t)
	defer setup.cleanup()

	assert.NotNil(t, setup.store)
	assert.NotNil(t, setup.store.client)
	assert.NoError(t, setup.store.Ping(setup.ctx))
}

// TestRedisStore_PutGet tests a successful round trip
func TestRedisStore_PutGet(t *testing.T) {
	setup := setupTestRedisStore(t)
	defer setup.cleanup()

	fetchedAt := time.Now().Truncate(time.Microsecond)
	payload := []byte(`{"success":true,"sport":"cricket"}`)

	written, err := setup.store.Put(setup.ctx, "sport:cricket", Entry{Payload: payload, FetchedAt: fetchedAt}, 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, written)

	assert.True(t, setup.miniRedis.Exists("test:cache:sport:cricket"))
	assert.Equal(t, 10*time.Minute, setup.miniRedis.TTL("test:cache:sport:cricket"))

	entry, ok, err := setup.store.Get(setup.ctx, "sport:cricket")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, entry.Payload)
	assert.True(t, fetchedAt.Equal(entry.FetchedAt))
}

// TestRedisStore_GetMissing tests retrieval of a key that was never stored
func TestRedisStore_GetMissing(t *testing.T) {
	setup := setupTestRedisStore(t)
	defer setup.cleanup()

	_, ok, err := setup.store.Get(setup.ctx, "event:cricket:E404")

	assert.NoError(t, err)
	assert.False(t, ok)
}

// TestRedisStore_MonotonicPut tests that the Lua guard rejects stale writes
func TestRedisStore_MonotonicPut(t *testing.T) {
	setup := setupTestRedisStore(t)
	defer setup.cleanup()

	base := time.Now()

	written, err := setup.store.Put(setup.ctx, "k", Entry{Payload: []byte("newer"), FetchedAt: base.Add(time.Second)}, time.Minute)
	require.NoError(t, err)
	require.True(t, written)

	written, err = setup.store.Put(setup.ctx, "k", Entry{Payload: []byte("older"), FetchedAt: base}, time.Minute)
	require.NoError(t, err)
	assert.False(t, written)

	entry, ok, err := setup.store.Get(setup.ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("newer"), entry.Payload)

	written, err = setup.store.Put(setup.ctx, "k", Entry{Payload: []byte("newest"), FetchedAt: base.Add(2 * time.Second)}, time.Minute)
	require.NoError(t, err)
	assert.True(t, written)
}

// TestRedisStore_Expiry tests that entries disappear after their TTL
func TestRedisStore_Expiry(t *testing.T) {
	setup := setupTestRedisStore(t)
	defer setup.cleanup()

	_, err := setup.store.Put(setup.ctx, "k", Entry{Payload: []byte("v"), FetchedAt: time.Now()}, 20*time.Second)
	require.NoError(t, err)

	setup.miniRedis.FastForward(21 * time.Second)

	_, ok, err := setup.store.Get(setup.ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestRedisStore_CorruptEntry tests that a malformed timestamp surfaces as an error
func TestRedisStore_CorruptEntry(t *testing.T) {
	setup := setupTestRedisStore(t)
	defer setup.cleanup()

	setup.miniRedis.HSet("test:cache:k", "payload", "v", "fetched_at", "yesterday")

	_, ok, err := setup.store.Get(setup.ctx, "k")

	assert.Error(t, err)
	assert.False(t, ok)
}

// TestRedisStore_ContextCanceled tests put with a canceled context
func TestRedisStore_ContextCanceled(t *testing.T) {
	setup := setupTestRedisStore(t)
	defer setup.cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := setup.store.Put(ctx, "k", Entry{Payload: []byte("v"), FetchedAt: time.Now()}, time.Minute)

	assert.Error(t, err)
}

// TestRedisStore_ServerDown tests behavior when Redis is unreachable
func TestRedisStore_ServerDown(t *testing.T) {
	setup := setupTestRedisStore(t)
	setup.miniRedis.Close()
	defer setup.store.Close()

	_, _, err := setup.store.Get(setup.ctx, "k")
	assert.Error(t, err)
	assert.Error(t, setup.store.Ping(setup.ctx))
}
