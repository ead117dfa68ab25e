package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), Config{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestKVStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	_, ok, err := s.Get(ctx, "incidents:list")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "incidents:list", []byte(`[]`)))

	v, ok, err := s.Get(ctx, "incidents:list")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))

	// La key real lleva el prefijo.
	got, err := mr.Get("test:incidents:list")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	assert.ErrorIs(t, s.Set(ctx, "", nil), ErrEmptyKey)
}

func TestKVStore_SubscribeAcrossClients(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	// Segundo "proceso" apuntando al mismo redis.
	other := NewKVStore(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = other.Close() })

	var mu sync.Mutex
	var seen []string
	unsub := other.Subscribe("profile", func(v []byte) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(v))
	})

	require.NoError(t, s.Set(ctx, "profile", []byte(`{"elder_name":"Rosa"}`)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)

	unsub()
	require.NoError(t, s.Set(ctx, "profile", []byte(`{}`)))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"elder_name":"Rosa"}`}, seen)
}

func TestIsOOM(t *testing.T) {
	assert.True(t, isOOM(errors.New("OOM command not allowed when used memory > 'maxmemory'.")))
	assert.False(t, isOOM(errors.New("ERR wrong type")))
}
