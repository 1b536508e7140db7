package commands

import (
	"context"

	"flashsale-api/internal/infra/seckill"
	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/errs"
)

const orderNamespace = "order"

type SeckillCommands interface {
	SubmitOrder(ctx context.Context, userID, promotionID uint64) (uint64, error)
}

type seckillUseCaseImpl struct {
	idGen    IDGenerator
	admitter Admitter
	clock    clock.Clock
}

func NewSeckillUseCase(idGen IDGenerator, admitter Admitter, clk clock.Clock) SeckillCommands {
	return &seckillUseCaseImpl{
		idGen:    idGen,
		admitter: admitter,
		clock:    clk,
	}
}

// SubmitOrder decides admission synchronously. On success the returned order
// id is already enqueued for fulfillment, but the order row does not exist
// yet; readers must tolerate the lag.
func (s *seckillUseCaseImpl) SubmitOrder(ctx context.Context, userID, promotionID uint64) (uint64, error) {
	orderID, err := s.idGen.NextID(ctx, orderNamespace)
	if err != nil {
		return 0, errs.Mark(err, errs.ErrSystemBusy)
	}

	code, err := s.admitter.Admit(ctx, promotionID, userID, orderID, s.clock.Now())
	if err != nil {
		return 0, errs.Mark(err, errs.ErrSystemBusy)
	}

	switch code {
	case seckill.Accepted:
		return orderID, nil
	case seckill.SoldOut:
		return 0, errs.ErrSoldOut
	case seckill.Duplicate:
		return 0, errs.ErrDuplicateOrder
	case seckill.NotStarted:
		return 0, errs.ErrSeckillNotStarted
	case seckill.Ended:
		return 0, errs.ErrSeckillEnded
	default:
		return 0, errs.New("unknown admission code")
	}
}
