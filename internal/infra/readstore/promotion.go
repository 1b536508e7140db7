package readstore

import (
	"context"
	"errors"

	"flashsale-api/internal/infra"
	"flashsale-api/internal/infra/db"
	"flashsale-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
)

type PromotionReadStore struct {
	dbtx db.DBTX
}

func NewPromotionReadStore(dbtx db.DBTX) *PromotionReadStore {
	return &PromotionReadStore{dbtx: dbtx}
}

func (r *PromotionReadStore) FindByID(ctx context.Context, id uint64) (*queries.PromotionView, error) {
	var (
		rowID int64
		view  queries.PromotionView
	)
	err := r.dbtx.QueryRow(ctx,
		`SELECT id, title, stock, begin_time, end_time, created_at FROM promotions WHERE id = $1`,
		int64(id),
	).Scan(&rowID, &view.Title, &view.Stock, &view.BeginTime, &view.EndTime, &view.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("promotion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find promotion by ID", err)
	}

	view.ID = uint64(rowID)
	return &view, nil
}
