package repository

import (
	"context"
	"errors"
	"time"

	"flashsale-api/internal/domain/promotion"
	"flashsale-api/internal/infra"
	"flashsale-api/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

type PromotionRepository struct {
	dbtx db.DBTX
}

func NewPromotionRepository(dbtx db.DBTX) *PromotionRepository {
	return &PromotionRepository{dbtx: dbtx}
}

func (r *PromotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	_, err := r.dbtx.Exec(ctx,
		`INSERT INTO promotions (id, title, stock, begin_time, end_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		int64(p.ID()), p.Title(), p.Stock(), p.BeginTime(), p.EndTime(), p.CreatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create promotion", err)
	}
	return nil
}

func (r *PromotionRepository) FindByID(ctx context.Context, id uint64) (*promotion.Promotion, error) {
	var (
		title               string
		stock               int64
		begin, end, created time.Time
	)
	err := r.dbtx.QueryRow(ctx,
		`SELECT title, stock, begin_time, end_time, created_at FROM promotions WHERE id = $1`,
		int64(id),
	).Scan(&title, &stock, &begin, &end, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find promotion", err)
	}

	p, err := promotion.NewPromotion(id, title, stock, begin, end, created)
	if err != nil {
		return nil, infra.WrapRepoErr("stored promotion is invalid", err)
	}
	return p, nil
}

// DecrementStock is the authoritative conditional decrement: it affects zero
// rows once relational stock is exhausted, guarding against drift from the
// admission-side counter.
func (r *PromotionRepository) DecrementStock(ctx context.Context, id uint64) (int64, error) {
	tag, err := r.dbtx.Exec(ctx,
		`UPDATE promotions SET stock = stock - 1 WHERE id = $1 AND stock > 0`,
		int64(id),
	)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to decrement promotion stock", err)
	}
	return tag.RowsAffected(), nil
}
