//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"flashsale-api/internal/infra"
	"flashsale-api/internal/infra/cache"
	"flashsale-api/internal/infra/redislock"
	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/errs"
	"flashsale-api/internal/usecase/queries"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViewRepo struct {
	views map[uint64]*queries.PromotionView
	calls int
}

func (r *fakeViewRepo) FindByID(_ context.Context, id uint64) (*queries.PromotionView, error) {
	r.calls++
	if v, ok := r.views[id]; ok {
		return v, nil
	}
	return nil, infra.WrapRepoErr("promotion not found", nil, infra.KindNotFound)
}

func setupQueries(t *testing.T) (queries.PromotionQueries, *fakeViewRepo, *cache.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clk := clock.NewMockClock(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	pool := cache.NewRebuildPool(1, 4)
	t.Cleanup(pool.Shutdown)
	cacheClient := cache.NewClient(rdb, redislock.NewFactory(rdb), pool, clk)

	begin := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeViewRepo{views: map[uint64]*queries.PromotionView{
		9001: {
			ID:        9001,
			Title:     "autumn drop",
			Stock:     100,
			BeginTime: begin,
			EndTime:   begin.Add(time.Hour),
			CreatedAt: begin.Add(-24 * time.Hour),
		},
	}}

	return queries.NewPromotionQueries(repo, cacheClient), repo, cacheClient, mr
}

func TestGetByID_LoadsOnceThenServesFromCache(t *testing.T) {
	q, repo, _, _ := setupQueries(t)
	ctx := context.Background()

	first, err := q.GetByID(ctx, 9001)
	require.NoError(t, err)
	assert.Equal(t, "autumn drop", first.Title)

	second, err := q.GetByID(ctx, 9001)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestGetByID_UnknownPromotionIsTombstoned(t *testing.T) {
	q, repo, _, _ := setupQueries(t)
	ctx := context.Background()

	_, err := q.GetByID(ctx, 404)
	assert.ErrorIs(t, err, errs.ErrPromotionNotFound)

	// The second miss is answered by the tombstone, not the source.
	_, err = q.GetByID(ctx, 404)
	assert.ErrorIs(t, err, errs.ErrPromotionNotFound)
	assert.Equal(t, 1, repo.calls)
}

func TestGetHotByID_RequiresWarmup(t *testing.T) {
	q, repo, cacheClient, _ := setupQueries(t)
	ctx := context.Background()

	_, err := q.GetHotByID(ctx, 9001)
	assert.ErrorIs(t, err, errs.ErrPromotionNotFound)
	assert.Zero(t, repo.calls)

	view, err := repo.FindByID(ctx, 9001)
	require.NoError(t, err)
	require.NoError(t, cacheClient.SetLogicalExpire(ctx, queries.PromotionCacheKey(9001), view, queries.HotPromotionWindow))

	got, err := q.GetHotByID(ctx, 9001)
	require.NoError(t, err)
	assert.Equal(t, view.Title, got.Title)
}
