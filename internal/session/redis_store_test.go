package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	store := NewRedisStoreFromClient(client, "bookmarked:session")

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "sid", []byte("payload"), time.Minute))
	assert.True(t, mr.Exists("bookmarked:session:sid"))
	assert.Equal(t, time.Minute, mr.TTL("bookmarked:session:sid"))

	data, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, store.Delete(ctx, "sid"))
	assert.False(t, mr.Exists("bookmarked:session:sid"))
	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	store := NewRedisStoreFromClient(client, "")

	require.NoError(t, store.Save(ctx, "sid", []byte("payload"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStore_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{Addr: mr.Addr(), Prefix: "bookmarked:session"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Save(context.Background(), "sid", []byte("x"), time.Minute))
	assert.True(t, mr.Exists("bookmarked:session:sid"))
}

func TestRedisBlocklistService(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	blocklist := NewRedisBlocklistService(client, "bookmarked:session")

	require.NoError(t, blocklist.AddToBlocklist(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, blocklist.AddToBlocklist(ctx, "stale", time.Now().Add(-time.Minute)))
	assert.True(t, mr.Exists("bookmarked:session:revoked:live"))
	assert.False(t, mr.Exists("bookmarked:session:revoked:stale"))

	revoked, err := blocklist.IsBlocklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blocklist.IsBlocklisted(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = blocklist.IsBlocklisted(ctx, "live")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNewBlocklist_FollowsStore(t *testing.T) {
	_, client := newMiniRedis(t)

	assert.IsType(t, &RedisBlocklistService{}, NewBlocklist(NewRedisStoreFromClient(client, "p")))
	assert.IsType(t, &InMemoryBlocklistService{}, NewBlocklist(NewMemoryStore(time.Minute)))
}

func TestRedisBlocklist_SharedBetweenInstances(t *testing.T) {
	_, client := newMiniRedis(t)
	store := NewRedisStoreFromClient(client, "bookmarked:session")

	first := NewRedisBlocklistService(client, store.prefix)
	second := NewBlocklist(store)

	ctx := context.Background()
	require.NoError(t, first.AddToBlocklist(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := second.IsBlocklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}
