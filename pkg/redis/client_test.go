package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merko/merko-backend/pkg/config"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockStore()
	client := &Client{store: mock}

	for i := int64(1); i <= 2; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "checkout:user-1", 2, time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, count)
	}
	allowed, count, err := client.FixedWindowAllow(ctx, "checkout:user-1", 2, time.Second)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.EqualValues(t, 3, count)

	// the window starts on the first hit and is not extended afterwards
	assert.Equal(t, []time.Duration{time.Second}, mock.expiries["merko:rate_limit:checkout:user-1"])

	_, _, err = client.FixedWindowAllow(ctx, "checkout:user-1", 2, 0)
	assert.Error(t, err)
}

func TestIdempotencyRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockStore()}
	key := client.IdempotencyKey("checkout", "abc")

	ok, err := client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = client.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Set(ctx, key, "done", time.Minute))
	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "done", got)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockStore()}
	require.NoError(t, client.Set(ctx, "k", "owner-a", 0))

	deleted, err := client.CompareAndDelete(ctx, "k", "owner-b")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = client.CompareAndDelete(ctx, "k", "owner-a")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	assert.Error(t, client.Ping(context.Background()))
	_, err := client.SetNX(context.Background(), "k", "v", time.Second)
	assert.Error(t, err)
	_, _, err = client.FixedWindowAllow(context.Background(), "s", 1, time.Second)
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "merko:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "merko:rate_limit:scope", client.RateLimitKey("scope"))
	assert.Equal(t, "merko:lock:route-generation", client.LockKey("route-generation"))
	assert.Equal(t, "merko:idempotency:scope", client.IdempotencyKey("scope", " "))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@cache:6380/3", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB, "db from the url wins")
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
}

// mockStore keeps values in a map and emulates the client's scripts.
type mockStore struct {
	data     map[string]string
	counters map[string]int64
	expiries map[string][]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{
		data:     map[string]string{},
		counters: map[string]int64{},
		expiries: map[string][]time.Duration{},
	}
}

func (m *mockStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockStore) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockStore) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	key := keys[0]
	switch script {
	case fixedWindowScript:
		m.counters[key]++
		if m.counters[key] == 1 {
			m.expiries[key] = append(m.expiries[key], time.Duration(args[0].(int64))*time.Millisecond)
		}
		return redis.NewCmdResult(m.counters[key], nil)
	case compareAndDeleteScript:
		if v, ok := m.data[key]; ok && v == args[0] {
			delete(m.data, key)
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	case compareAndExpireScript:
		if v, ok := m.data[key]; ok && v == args[0] {
			m.expiries[key] = append(m.expiries[key], time.Duration(args[1].(int64))*time.Millisecond)
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	}
	return redis.NewCmdResult(nil, errors.New("unexpected script"))
}
