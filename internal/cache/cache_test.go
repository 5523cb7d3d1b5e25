package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Title string `json:"title"`
	Score int    `json:"score"`
}

func TestKey(t *testing.T) {
	assert.Equal(t, "0:1:0", Key(0, 1, 0))
	assert.Equal(t, "2024", Key(2024))
	assert.NotEqual(t, Key(1, 10), Key(11, 0))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	buf := []byte("v1")
	require.NoError(t, s.Set(ctx, "a", buf))
	buf[0] = 'x'
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	_ = s.Set(ctx, "b", []byte("1"))
	_ = s.Set(ctx, "c", []byte("2"))
	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Len())
}

func TestTyped_HitMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics(nil)
	c := NewTyped[[]item](NewMemoryStore(), "bili", m, nil)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", []item{{Title: "T1", Score: 9}})
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []item{{Title: "T1", Score: 9}}, got)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits.WithLabelValues("bili")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses.WithLabelValues("bili")))

	c.Delete(ctx, "k")
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestTyped_NamespacesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewTyped[string](store, "a", nil, nil)
	b := NewTyped[string](store, "b", nil, nil)

	a.Set(ctx, "1", "from a")
	_, ok := b.Get(ctx, "1")
	assert.False(t, ok)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (brokenStore) Set(context.Context, string, []byte) error   { return errors.New("down") }
func (brokenStore) Delete(context.Context, string) error        { return errors.New("down") }
func (brokenStore) Clear(context.Context) error                 { return errors.New("down") }

func TestTyped_FailuresDegradeToMiss(t *testing.T) {
	ctx := context.Background()
	c := NewTyped[int](brokenStore{}, "x", nil, nil)

	c.Set(ctx, "k", 1)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestTyped_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, "x/k", []byte("{not json"))

	c := NewTyped[item](store, "x", nil, nil)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(RedisOptions{Addr: mr.Addr(), Prefix: "tvbox:"})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	assert.True(t, mr.Exists("tvbox:a"))
	assert.Equal(t, 0, int(mr.TTL("tvbox:a")))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	require.NoError(t, mr.Set("other", "keep"))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	require.NoError(t, s.Clear(ctx))
	assert.False(t, mr.Exists("tvbox:a"))
	assert.False(t, mr.Exists("tvbox:b"))
	assert.True(t, mr.Exists("other"))
}

func TestRedisStore_Typed(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)

	c := NewTyped[[]item](s, "douban_top", nil, nil)
	c.Set(context.Background(), "0", []item{{Title: "A"}})
	got, ok := c.Get(context.Background(), "0")
	require.True(t, ok)
	assert.Equal(t, "A", got[0].Title)
}

func TestNewRedisStore_Errors(t *testing.T) {
	_, err := NewRedisStore(RedisOptions{})
	assert.ErrorIs(t, err, ErrEmptyAddress)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisStore(RedisOptions{Addr: addr})
	assert.Error(t, err)
}

func TestRedisStore_ClearWithoutPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, mr.Set("unrelated", "keep"))
	require.NoError(t, s.Set(ctx, "a", []byte("1")))

	assert.ErrorIs(t, s.Clear(ctx), ErrEmptyPrefix)
	assert.True(t, mr.Exists("unrelated"))
	assert.True(t, mr.Exists("a"))
}
