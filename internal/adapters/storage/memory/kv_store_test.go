package memory

import (
	"context"
	"testing"

	"care-monitor/internal/ports/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(0)

	_, ok, err := s.Get(ctx, "profile")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "profile", []byte(`{"elder_name":"Rosa"}`)))

	v, ok, err := s.Get(ctx, "profile")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"elder_name":"Rosa"}`, string(v))

	_, _, err = s.Get(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestKVStore_SubscribeBroadcasts(t *testing.T) {
	ctx := context.Background()
	s := NewStore(0)

	var a, b []string
	unsubA := s.Subscribe("k", func(v []byte) { a = append(a, string(v)) })
	s.Subscribe("k", func(v []byte) { b = append(b, string(v)) })
	s.Subscribe("other", func(v []byte) { t.Fatalf("unexpected publish on other key") })

	require.NoError(t, s.Set(ctx, "k", []byte(`1`)))
	unsubA()
	unsubA()
	require.NoError(t, s.Set(ctx, "k", []byte(`2`)))

	assert.Equal(t, []string{"1"}, a)
	assert.Equal(t, []string{"1", "2"}, b)
}

func TestKVStore_QuotaAndSetCapped(t *testing.T) {
	ctx := context.Background()
	// key "list" (4) + ~ 5 ints con comas/corchetes
	s := NewStore(16)

	err := s.Set(ctx, "list", []byte(`[1,2,3,4,5,6,7,8,9]`))
	assert.ErrorIs(t, err, store.ErrStorageFull)

	saved, err := store.SetCapped(ctx, s, "list", []int{9, 8, 7, 6, 5, 4, 3, 2, 1}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, saved)
	// Se conservan las más recientes (el principio del slice).
	assert.Equal(t, 9, saved[0])
	assert.Less(t, len(saved), 9)

	var got []int
	ok, err := store.GetJSON(ctx, s, "list", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, saved, got)
}

func TestKVStore_OverwriteReleasesQuota(t *testing.T) {
	ctx := context.Background()
	s := NewStore(10)

	require.NoError(t, s.Set(ctx, "k", []byte(`12345678`)))
	require.NoError(t, s.Set(ctx, "k", []byte(`87654321`)))
	assert.ErrorIs(t, s.Set(ctx, "j", []byte(`1`)), store.ErrStorageFull)
}
