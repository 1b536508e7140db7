package queries

import (
	"context"
	"strconv"
	"time"

	"flashsale-api/internal/infra"
	"flashsale-api/internal/infra/cache"
	"flashsale-api/internal/pkg/errs"
)

const (
	promotionKeyPrefix = "cache:promotion:"

	promotionCacheTTL = 30 * time.Minute

	// HotPromotionWindow is the logical freshness window for pre-warmed
	// promotion entries. Stale reads past this window trigger a background
	// rebuild while the stale value keeps being served.
	HotPromotionWindow = 20 * time.Second
)

// Read models (DTO for read side)
type PromotionView struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Stock     int64     `json:"stock"`
	BeginTime time.Time `json:"begin_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

func PromotionCacheKey(id uint64) string {
	return promotionKeyPrefix + strconv.FormatUint(id, 10)
}

type PromotionQueries interface {
	GetByID(ctx context.Context, id uint64) (*PromotionView, error)
	GetHotByID(ctx context.Context, id uint64) (*PromotionView, error)
}

type PromotionViewRepo interface {
	FindByID(ctx context.Context, id uint64) (*PromotionView, error)
}

type promotionQueriesImpl struct {
	repo  PromotionViewRepo
	cache *cache.Client
}

func NewPromotionQueries(repo PromotionViewRepo, cacheClient *cache.Client) PromotionQueries {
	return &promotionQueriesImpl{
		repo:  repo,
		cache: cacheClient,
	}
}

func (q *promotionQueriesImpl) GetByID(ctx context.Context, id uint64) (*PromotionView, error) {
	view, err := cache.QueryWithPassThrough(ctx, q.cache, PromotionCacheKey(id), q.loader(id), promotionCacheTTL)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, errs.ErrPromotionNotFound
	}
	return view, nil
}

// GetHotByID serves pre-warmed promotions only. A key that was never warmed
// reads as absent even when the promotion exists in the database.
func (q *promotionQueriesImpl) GetHotByID(ctx context.Context, id uint64) (*PromotionView, error) {
	view, err := cache.QueryWithLogicalExpire(ctx, q.cache, PromotionCacheKey(id), q.loader(id), HotPromotionWindow)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, errs.ErrPromotionNotFound
	}
	return view, nil
}

// A missing source row maps to (nil, nil) so the cache layer can tombstone
// the key instead of propagating a lookup error.
func (q *promotionQueriesImpl) loader(id uint64) cache.Loader[PromotionView] {
	return func(ctx context.Context) (*PromotionView, error) {
		view, err := q.repo.FindByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return view, nil
	}
}
