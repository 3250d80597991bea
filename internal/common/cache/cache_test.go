package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client, time.Minute), mr
}

func TestKey_StableAndEndpointScoped(t *testing.T) {
	body := []byte(`{"cpi":"0.80"}`)

	assert.Equal(t, Key("/analisar-projeto", body), Key("/analisar-projeto", body))
	assert.NotEqual(t, Key("/analisar-projeto", body), Key("/analisar-projeto-texto", body))
	assert.NotEqual(t, Key("/analisar-projeto", body), Key("/analisar-projeto", []byte(`{"cpi":"0.81"}`)))
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := Key("/analisar-projeto", []byte(`{}`))

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte(`{"versao_api":"1.4.0"}`)))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"versao_api":"1.4.0"}`), got)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := Key("/analisar-projeto", []byte(`{}`))

	require.NoError(t, c.Set(ctx, key, []byte(`{}`)))
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)
}

func TestGetDegradesWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, ok := c.Get(context.Background(), "any")
	assert.False(t, ok)
	assert.Error(t, c.Set(context.Background(), "any", []byte(`{}`)))
}
