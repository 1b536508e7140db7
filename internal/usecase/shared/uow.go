package shared

import (
	"context"

	"flashsale-api/internal/domain/order"
	"flashsale-api/internal/domain/promotion"
	"flashsale-api/internal/infra/db"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
}

type Tx interface {
	Promotions() PromotionRepository
	Orders() OrderRepository
	DB() db.DBTX
}

type PromotionRepository interface {
	Create(ctx context.Context, p *promotion.Promotion) error
	FindByID(ctx context.Context, id uint64) (*promotion.Promotion, error)
	DecrementStock(ctx context.Context, id uint64) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	ExistsByUserAndPromotion(ctx context.Context, userID, promotionID uint64) (bool, error)
}
