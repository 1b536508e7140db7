//go:build unit

package seckill_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"flashsale-api/internal/infra/seckill"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStream = "stream.orders"

var (
	saleBegin = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	saleEnd   = time.Date(2026, 8, 28, 22, 0, 0, 0, time.UTC)
	saleNow   = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
)

func newAdmission(t *testing.T) (*seckill.Admission, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return seckill.NewAdmission(rdb, testStream), rdb, mr
}

func warmup(t *testing.T, a *seckill.Admission, promotionID uint64, stock int64) {
	t.Helper()
	require.NoError(t, a.Warmup(context.Background(), promotionID, stock, saleBegin, saleEnd))
}

func TestAdmitOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted decrements stock, records user and enqueues", func(t *testing.T) {
		a, rdb, _ := newAdmission(t)
		warmup(t, a, 10, 5)

		code, err := a.Admit(ctx, 10, 100, 90001, saleNow)
		require.NoError(t, err)
		assert.Equal(t, seckill.Accepted, code)

		stock, err := rdb.Get(ctx, "seckill:stock:10").Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(4), stock)

		isMember, err := rdb.SIsMember(ctx, "seckill:order:10", "100").Result()
		require.NoError(t, err)
		assert.True(t, isMember)

		entries, err := rdb.XRange(ctx, testStream, "-", "+").Result()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "90001", entries[0].Values["id"])
		assert.Equal(t, "100", entries[0].Values["userId"])
		assert.Equal(t, "10", entries[0].Values["voucherId"])
	})

	t.Run("same user twice is a duplicate", func(t *testing.T) {
		a, rdb, _ := newAdmission(t)
		warmup(t, a, 10, 5)

		code, err := a.Admit(ctx, 10, 100, 90001, saleNow)
		require.NoError(t, err)
		require.Equal(t, seckill.Accepted, code)

		code, err = a.Admit(ctx, 10, 100, 90002, saleNow)
		require.NoError(t, err)
		assert.Equal(t, seckill.Duplicate, code)

		// The rejection must not consume stock or enqueue anything.
		stock, err := rdb.Get(ctx, "seckill:stock:10").Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(4), stock)
		entries, err := rdb.XRange(ctx, testStream, "-", "+").Result()
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("exhausted stock is sold out", func(t *testing.T) {
		a, _, _ := newAdmission(t)
		warmup(t, a, 10, 1)

		code, err := a.Admit(ctx, 10, 100, 90001, saleNow)
		require.NoError(t, err)
		require.Equal(t, seckill.Accepted, code)

		code, err = a.Admit(ctx, 10, 101, 90002, saleNow)
		require.NoError(t, err)
		assert.Equal(t, seckill.SoldOut, code)
	})

	t.Run("time window is enforced", func(t *testing.T) {
		a, _, _ := newAdmission(t)
		warmup(t, a, 10, 5)

		code, err := a.Admit(ctx, 10, 100, 90001, saleBegin.Add(-time.Minute))
		require.NoError(t, err)
		assert.Equal(t, seckill.NotStarted, code)

		code, err = a.Admit(ctx, 10, 100, 90001, saleEnd)
		require.NoError(t, err)
		assert.Equal(t, seckill.Ended, code)
	})

	t.Run("unknown promotion is not started", func(t *testing.T) {
		a, _, _ := newAdmission(t)

		code, err := a.Admit(ctx, 999, 100, 90001, saleNow)
		require.NoError(t, err)
		assert.Equal(t, seckill.NotStarted, code)
	})

	t.Run("store fault is an error", func(t *testing.T) {
		a, _, mr := newAdmission(t)
		warmup(t, a, 10, 5)
		mr.Close()

		_, err := a.Admit(ctx, 10, 100, 90001, saleNow)
		assert.Error(t, err)
	})
}

func TestAdmitNeverOversells(t *testing.T) {
	ctx := context.Background()
	a, rdb, _ := newAdmission(t)

	const stock = 5
	const contenders = 40
	warmup(t, a, 10, stock)

	var wg sync.WaitGroup
	results := make([]seckill.Code, contenders)
	for i := range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := a.Admit(ctx, 10, uint64(1000+i), uint64(90000+i), saleNow)
			assert.NoError(t, err)
			results[i] = code
		}()
	}
	wg.Wait()

	accepted := 0
	for _, code := range results {
		if code == seckill.Accepted {
			accepted++
		}
	}
	assert.Equal(t, stock, accepted, "accepted admissions must equal initial stock")

	remaining, err := rdb.Get(ctx, "seckill:stock:10").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining, "stock never goes negative")

	entries, err := rdb.XRange(ctx, testStream, "-", "+").Result()
	require.NoError(t, err)
	assert.Len(t, entries, stock, "exactly one queue entry per accepted admission")
}
