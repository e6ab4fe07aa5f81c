package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelia-app/travelia-backend/pkg/config"
)

type fakeStore struct {
	values map[string]string
	lists  map[string][]string

	expired map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:  map[string]string{},
		lists:   map[string][]string{},
		expired: map[string]time.Duration{},
	}
}

func (f *fakeStore) Ping(_ context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) RPush(_ context.Context, key string, values ...any) *redis.IntCmd {
	for _, value := range values {
		f.lists[key] = append(f.lists[key], value.(string))
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeStore) LRange(_ context.Context, key string, _, _ int64) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(f.lists[key], nil)
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expired[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
		if _, ok := f.lists[key]; ok {
			delete(f.lists, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestKeyBuilders(t *testing.T) {
	client := NewWithStore(newFakeStore())

	assert.Equal(t, "tv:idempotency:sess|POST|/api/v1/checkout:key-1",
		client.IdempotencyKey("sess|POST|/api/v1/checkout", "key-1"))
	assert.Equal(t, "tv:cart_state:abc123", client.CartStateKey("abc123"))
	assert.Equal(t, "tv:checkout_lock:abc123", client.CheckoutLockKey("abc123"))
	assert.Equal(t, "tv:notices:abc123", client.NoticeKey("abc123"))

	// Empty parts collapse instead of producing dangling separators.
	assert.Equal(t, "tv:cart_state", client.CartStateKey(""))
}

func TestSetNXIsFirstWriterWins(t *testing.T) {
	client := NewWithStore(newFakeStore())
	ctx := context.Background()

	first, err := client.SetNX(ctx, "tv:checkout_lock:s1", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := client.SetNX(ctx, "tv:checkout_lock:s1", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, second)

	require.NoError(t, client.Del(ctx, "tv:checkout_lock:s1"))

	third, err := client.SetNX(ctx, "tv:checkout_lock:s1", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, third)
}

func TestRPushRefreshesTTL(t *testing.T) {
	store := newFakeStore()
	client := NewWithStore(store)
	ctx := context.Background()

	require.NoError(t, client.RPush(ctx, "tv:notices:s1", 10*time.Minute, "a", "b"))

	entries, err := client.LRangeAll(ctx, "tv:notices:s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, entries)
	assert.Equal(t, 10*time.Minute, store.expired["tv:notices:s1"])
}

func TestGetMissingKeyYieldsNil(t *testing.T) {
	client := NewWithStore(newFakeStore())

	_, err := client.Get(context.Background(), "tv:cart_state:missing")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestUninitializedClientErrors(t *testing.T) {
	var client Client

	require.Error(t, client.Set(context.Background(), "k", "v", 0))
	_, err := client.Get(context.Background(), "k")
	require.Error(t, err)
	require.Error(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestOptionsFromConfigURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://:secret@localhost:6379/2",
		PoolSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 10, opts.PoolSize)
}

func TestOptionsFromConfigAddressFallback(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:     "redis.internal:6380",
		Password:    "secret",
		DB:          1,
		DialTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
}

func TestOptionsFromConfigRequiresEndpoint(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)
}
