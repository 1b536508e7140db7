package commands

import (
	"context"
	"log/slog"
	"time"

	"flashsale-api/internal/domain/promotion"
	"flashsale-api/internal/infra/cache"
	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/errs"
	"flashsale-api/internal/usecase/queries"
	"flashsale-api/internal/usecase/shared"
)

const promotionNamespace = "promotion"

type PromotionCommands interface {
	CreatePromotion(ctx context.Context, title string, stock int64, begin, end time.Time) (*queries.PromotionView, error)
}

type promotionUseCaseImpl struct {
	idGen  IDGenerator
	warmer AdmissionWarmer
	uow    shared.UnitOfWork
	cache  *cache.Client
	clock  clock.Clock
}

func NewPromotionUseCase(
	idGen IDGenerator,
	warmer AdmissionWarmer,
	uow shared.UnitOfWork,
	cacheClient *cache.Client,
	clk clock.Clock,
) PromotionCommands {
	return &promotionUseCaseImpl{
		idGen:  idGen,
		warmer: warmer,
		uow:    uow,
		cache:  cacheClient,
		clock:  clk,
	}
}

// CreatePromotion persists the promotion and publishes it for sale: the
// admission-side stock counter and sale window are seeded, and the hot-key
// cache entry is pre-warmed. Admission attempts before publish completes
// read as not started.
func (p *promotionUseCaseImpl) CreatePromotion(ctx context.Context, title string, stock int64, begin, end time.Time) (*queries.PromotionView, error) {
	id, err := p.idGen.NextID(ctx, promotionNamespace)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrSystemBusy)
	}

	entity, err := promotion.NewPromotion(id, title, stock, begin, end, p.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidSaleWindow)
	}

	err = p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Promotions().Create(ctx, entity)
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := p.warmer.Warmup(ctx, entity.ID(), entity.Stock(), entity.BeginTime(), entity.EndTime()); err != nil {
		// The row exists but admission keys do not: the sale stays closed
		// until a re-publish. Surfacing the error lets the caller retry.
		return nil, err
	}

	view := &queries.PromotionView{
		ID:        entity.ID(),
		Title:     entity.Title(),
		Stock:     entity.Stock(),
		BeginTime: entity.BeginTime(),
		EndTime:   entity.EndTime(),
		CreatedAt: entity.CreatedAt(),
	}
	if err := p.cache.SetLogicalExpire(ctx, queries.PromotionCacheKey(view.ID), view, queries.HotPromotionWindow); err != nil {
		// Cache warm-up is best effort; reads fall back to pass-through.
		slog.Warn("failed to pre-warm promotion cache", "promotion_id", view.ID, "error", err.Error())
	}
	return view, nil
}
