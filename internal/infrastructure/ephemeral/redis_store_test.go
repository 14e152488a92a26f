package ephemeral

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, RedisStoreConfig{KeyPrefix: "test:"}, logging.NewNop()), server
}

func TestRedisStore_UpdateListRoundTrip(t *testing.T) {
	store, server := newTestStore(t)
	ctx := t.Context()

	items, err := store.List(ctx, "queue")
	require.NoError(t, err)
	assert.Empty(t, items)

	out, err := store.UpdateList(ctx, "queue", time.Minute, func(current []string) []string {
		return append(current, "a", "b")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)

	items, err = store.List(ctx, "queue")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)
	assert.Equal(t, time.Minute, server.TTL("test:queue"))

	_, err = store.UpdateList(ctx, "queue", time.Minute, func([]string) []string { return nil })
	require.NoError(t, err)
	assert.False(t, server.Exists("test:queue"), "an emptied list removes the key")
}

func TestRedisStore_ConcurrentUpdatesAreNotLost(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := t.Context()

	const writers = 10
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			if _, err := store.UpdateList(ctx, "queue", time.Minute, func(current []string) []string {
				return append(current, id)
			}); err != nil {
				t.Errorf("update list: %v", err)
			}
		}()
	}
	wg.Wait()

	items, err := store.List(ctx, "queue")
	require.NoError(t, err)
	assert.Len(t, items, writers)
}

func TestRedisStore_TryLock(t *testing.T) {
	store, server := newTestStore(t)
	ctx := t.Context()

	release, acquired, err := store.TryLock(ctx, "drain", 10*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = store.TryLock(ctx, "drain", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired, "a held lock is not granted twice")

	require.NoError(t, release(ctx))
	assert.False(t, server.Exists("test:drain"))

	_, acquired, err = store.TryLock(ctx, "drain", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedisStore_StaleReleaseKeepsNewOwner(t *testing.T) {
	store, server := newTestStore(t)
	ctx := t.Context()

	staleRelease, acquired, err := store.TryLock(ctx, "drain", time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	server.FastForward(2 * time.Second)

	_, acquired, err = store.TryLock(ctx, "drain", 10*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, staleRelease(ctx))
	assert.True(t, server.Exists("test:drain"), "an expired owner must not release the new lock")
}
