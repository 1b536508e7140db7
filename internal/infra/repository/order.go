package repository

import (
	"context"
	"errors"

	"flashsale-api/internal/domain/order"
	"flashsale-api/internal/infra"
	"flashsale-api/internal/infra/db"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

type OrderRepository struct {
	dbtx db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{dbtx: dbtx}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.dbtx.Exec(ctx,
		`INSERT INTO orders (id, user_id, promotion_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		int64(o.ID()), int64(o.UserID()), int64(o.PromotionID()), o.CreatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("order already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create order", err)
	}
	return nil
}

// ExistsByUserAndPromotion backs the idempotent re-check in fulfillment:
// redelivered queue entries must not produce a second order row.
func (r *OrderRepository) ExistsByUserAndPromotion(ctx context.Context, userID, promotionID uint64) (bool, error) {
	var exists bool
	err := r.dbtx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE user_id = $1 AND promotion_id = $2)`,
		int64(userID), int64(promotionID),
	).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check existing order", err)
	}
	return exists, nil
}
