package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offgridpay/solsync/config"
	"github.com/offgridpay/solsync/model"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
	})

	c, err := NewCache()
	require.NoError(t, err)
	return c
}

func TestCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	balance := model.Balance{Account: "acct", Lamports: 1_500_000_000, Sol: 1.5}
	err := c.Set(ctx, "balance:acct", balance, time.Minute)
	assert.NoError(t, err)

	var got model.Balance
	err = c.Get(ctx, "balance:acct", &got)
	assert.NoError(t, err)
	assert.Equal(t, balance, got)
}

func TestCacheGetMissIsNotAnError(t *testing.T) {
	c := newTestCache(t)

	var got model.Balance
	err := c.Get(context.Background(), "balance:missing", &got)
	assert.NoError(t, err)
	assert.Empty(t, got.Account)
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "balance:acct", model.Balance{Account: "acct"}, time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, c.Delete(ctx, "balance:acct"))

	var got model.Balance
	assert.NoError(t, c.Get(ctx, "balance:acct", &got))
	assert.Empty(t, got.Account)
}
