package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisPlanCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := DialRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)

	c := NewRedisPlanCache(client, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisPlanCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "plans:abc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Put(ctx, "plans:abc", []byte(`{"truck_count":1}`), time.Minute))
	assert.True(t, mr.Exists("loadplan:plans:abc"))

	payload, found, err := c.Get(ctx, "plans:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"truck_count":1}`, string(payload))

	mr.FastForward(2 * time.Minute)
	_, found, err = c.Get(ctx, "plans:abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisPlanCacheServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "plans:abc")
	assert.Error(t, err)
	assert.Error(t, c.Put(context.Background(), "plans:abc", []byte("x"), time.Minute))
}

func TestDialRedisFailsFast(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := DialRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestKeyIsStableAndSensitive(t *testing.T) {
	type request struct {
		Items []string `json:"items"`
		Miles float64  `json:"miles"`
	}

	a, err := Key("plans", request{Items: []string{"a", "b"}, Miles: 10})
	require.NoError(t, err)
	b, err := Key("plans", request{Items: []string{"a", "b"}, Miles: 10})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "plans:"))
	assert.Len(t, strings.TrimPrefix(a, "plans:"), 64)

	c, err := Key("plans", request{Items: []string{"b", "a"}, Miles: 10})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := Key("selections", request{Items: []string{"a", "b"}, Miles: 10})
	require.NoError(t, err)
	assert.NotEqual(t, strings.TrimPrefix(a, "plans:"), strings.TrimPrefix(d, "selections:"))

	_, err = Key("plans", make(chan int))
	assert.Error(t, err)
}
