package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TabBox/internal/model"
)

type countingRecorder struct {
	hits   map[string]int
	misses map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{hits: map[string]int{}, misses: map[string]int{}}
}

func (r *countingRecorder) CacheHit(tier string)  { r.hits[tier]++ }
func (r *countingRecorder) CacheMiss(tier string) { r.misses[tier]++ }

func newMini(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	rs, err := NewRedisStore(ctx, mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })
	return mr, rs
}

func testDesign() model.Design {
	return model.NewDesign("Enclosure", 100, 50, 65, 3, 2)
}

func TestKey(t *testing.T) {
	d := testDesign()
	s := model.DefaultOutputSettings()

	k1, err := Key("svg", d, s)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(k1, "tabbox:v1:svg:"), k1)

	again, _ := Key("svg", d, s)
	assert.Equal(t, k1, again)

	d2 := d
	d2.ID = "other"
	d2.CreatedAt = "2026-01-01T00:00:00Z"
	same, _ := Key("svg", d2, s)
	assert.Equal(t, k1, same, "ID and CreatedAt do not affect the key")

	d3 := d
	d3.Width = 101
	wider, _ := Key("svg", d3, s)
	assert.NotEqual(t, k1, wider)

	s2 := s
	s2.Scale = 2
	scaled, _ := Key("svg", d, s2)
	assert.NotEqual(t, k1, scaled)

	dxf, _ := Key("dxf", d, s)
	assert.NotEqual(t, k1, dxf)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "g-code", sanitize(" G Code "))
	assert.Equal(t, "a-b", sanitize("a::/b"))
	assert.Equal(t, "svg", sanitize("SVG"))
}

func TestMemoryTier(t *testing.T) {
	rec := newCountingRecorder()
	c, err := New(2, WithRecorder(rec))
	require.NoError(t, err)
	ctx := context.Background()

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	v, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "1", string(v))

	require.NoError(t, c.Set(ctx, "c", []byte("3")))
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry is evicted")
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, 1, rec.hits[TierMemory])
	assert.Equal(t, 2, rec.misses[TierMemory])
	assert.Zero(t, rec.misses[TierRedis], "no redis tier configured")
}

func TestRedisTier_PromotesToMemory(t *testing.T) {
	_, rs := newMini(t)
	rec := newCountingRecorder()
	c, err := New(8, WithRedis(rs, time.Minute), WithRecorder(rec))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("payload")))
	c.Purge()
	assert.Zero(t, c.Len())

	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "payload", string(v))
	assert.Equal(t, 1, rec.hits[TierRedis])
	assert.Equal(t, 1, c.Len(), "redis hit is copied into memory")

	_, ok = c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, 1, rec.hits[TierMemory])
}

func TestRedisTier_TTL(t *testing.T) {
	mr, rs := newMini(t)
	c, err := New(8, WithRedis(rs, 30*time.Second))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	assert.Equal(t, 30*time.Second, mr.TTL("k"))

	mr.FastForward(31 * time.Second)
	c.Purge()
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisDown_FallsBackToRender(t *testing.T) {
	mr, rs := newMini(t)
	rec := newCountingRecorder()
	c, err := New(8, WithRedis(rs, time.Minute), WithRecorder(rec))
	require.NoError(t, err)
	mr.Close()

	calls := 0
	v, hit, err := c.GetOrRender(context.Background(), "k", func() ([]byte, error) {
		calls++
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", string(v))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rec.misses[TierRedis])

	_, hit, err = c.GetOrRender(context.Background(), "k", func() ([]byte, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, hit, "memory tier still holds the value")
	assert.Equal(t, 1, calls)
}

func TestGetOrRender_Error(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, _, err = c.GetOrRender(context.Background(), "k", func() ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Len(), "failed renders are not cached")
}

func TestNewRedisStore_Errors(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "")
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = NewRedisStore(ctx, addr, WithDialTimeout(100*time.Millisecond))
	assert.Error(t, err)
}

func TestRedisStore_PoolSize(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rs, err := NewRedisStore(context.Background(), mr.Addr(), WithPoolSize(4))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })
	assert.Equal(t, 4, rs.rdb.Options().PoolSize)
}

func TestRedisStore_GetSetExpire(t *testing.T) {
	mr, rs := newMini(t)
	ctx := context.Background()

	_, ok, err := rs.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rs.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := rs.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))

	mr.FastForward(2 * time.Minute)
	_, ok, _ = rs.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCloseWithoutRedis(t *testing.T) {
	c, err := New(1)
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
