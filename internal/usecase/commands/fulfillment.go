package commands

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"flashsale-api/internal/domain/order"
	"flashsale-api/internal/infra"
	"flashsale-api/internal/infra/redislock"
	"flashsale-api/internal/infra/seckill"
	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/errs"
	"flashsale-api/internal/usecase/shared"
)

const (
	userLockPrefix = "order:"
	userLockTTL    = 10 * time.Second
)

type FulfillmentCommands interface {
	CreateOrder(ctx context.Context, msg *seckill.Message) error
}

type fulfillmentUseCaseImpl struct {
	locks *redislock.Factory
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewFulfillmentUseCase(locks *redislock.Factory, uow shared.UnitOfWork, clk clock.Clock) FulfillmentCommands {
	return &fulfillmentUseCaseImpl{
		locks: locks,
		uow:   uow,
		clock: clk,
	}
}

// CreateOrder materializes one accepted admission into a relational order.
// It is safe to call any number of times for the same entry: the per-user
// lock, the existence re-check and the unique constraint each stop a
// duplicate row on their own. A nil return means the entry may be
// acknowledged, including the cases where nothing was written.
func (f *fulfillmentUseCaseImpl) CreateOrder(ctx context.Context, msg *seckill.Message) error {
	lock := f.locks.New(userLockPrefix + strconv.FormatUint(msg.UserID, 10))
	ok, err := lock.TryLock(ctx, userLockTTL)
	if err != nil {
		return errs.Mark(err, errs.ErrSystemBusy)
	}
	if !ok {
		// Another consumer is fulfilling for this user. The admission-side
		// dedup set guarantees at most one entry per user and promotion, so
		// this delivery cannot be for a different pending order.
		slog.Warn("user fulfillment lock held elsewhere, skipping entry",
			"user_id", msg.UserID, "order_id", msg.OrderID)
		return nil
	}
	defer func() {
		if unlockErr := lock.Unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			slog.Warn("failed to release user fulfillment lock",
				"user_id", msg.UserID, "error", unlockErr.Error())
		}
	}()

	return f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		exists, err := tx.Orders().ExistsByUserAndPromotion(ctx, msg.UserID, msg.PromotionID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if exists {
			slog.Info("order already fulfilled, entry treated as replay",
				"user_id", msg.UserID, "promotion_id", msg.PromotionID)
			return nil
		}

		affected, err := tx.Promotions().DecrementStock(ctx, msg.PromotionID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if affected == 0 {
			// Relational stock drifted below the admission counter. Dropping
			// the entry keeps the store authoritative; the admission side
			// already told this user they won, which is logged for follow-up.
			slog.Error("relational stock depleted for accepted order",
				"order_id", msg.OrderID, "promotion_id", msg.PromotionID)
			return nil
		}

		o, err := order.NewOrder(msg.OrderID, msg.UserID, msg.PromotionID, f.clock.Now())
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			// A duplicate here means another writer won between the existence
			// check and the insert. Failing the transaction rolls the
			// decrement back; the redelivery then resolves via the existence
			// check.
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, errs.ErrDuplicateOrder)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
}
