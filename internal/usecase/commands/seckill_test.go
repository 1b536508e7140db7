//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flashsale-api/internal/infra/seckill"
	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/errs"
	"flashsale-api/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIDGen struct {
	id  uint64
	err error
}

func (s *stubIDGen) NextID(_ context.Context, _ string) (uint64, error) {
	return s.id, s.err
}

type stubAdmitter struct {
	code seckill.Code
	err  error

	gotPromotionID uint64
	gotUserID      uint64
	gotOrderID     uint64
	gotNow         time.Time
}

func (s *stubAdmitter) Admit(_ context.Context, promotionID, userID, orderID uint64, now time.Time) (seckill.Code, error) {
	s.gotPromotionID = promotionID
	s.gotUserID = userID
	s.gotOrderID = orderID
	s.gotNow = now
	return s.code, s.err
}

func TestSubmitOrder_Accepted(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	idGen := &stubIDGen{id: 555}
	admitter := &stubAdmitter{code: seckill.Accepted}
	uc := commands.NewSeckillUseCase(idGen, admitter, clock.NewMockClock(now))

	orderID, err := uc.SubmitOrder(context.Background(), 42, 7001)

	require.NoError(t, err)
	assert.Equal(t, uint64(555), orderID)
	assert.Equal(t, uint64(7001), admitter.gotPromotionID)
	assert.Equal(t, uint64(42), admitter.gotUserID)
	assert.Equal(t, uint64(555), admitter.gotOrderID)
	assert.Equal(t, now, admitter.gotNow)
}

func TestSubmitOrder_RejectionCodes(t *testing.T) {
	testCases := []struct {
		name     string
		code     seckill.Code
		expected error
	}{
		{name: "sold out", code: seckill.SoldOut, expected: errs.ErrSoldOut},
		{name: "duplicate", code: seckill.Duplicate, expected: errs.ErrDuplicateOrder},
		{name: "not started", code: seckill.NotStarted, expected: errs.ErrSeckillNotStarted},
		{name: "ended", code: seckill.Ended, expected: errs.ErrSeckillEnded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := commands.NewSeckillUseCase(
				&stubIDGen{id: 1},
				&stubAdmitter{code: tc.code},
				clock.NewMockClock(time.Now()),
			)

			orderID, err := uc.SubmitOrder(context.Background(), 42, 7001)

			assert.ErrorIs(t, err, tc.expected)
			assert.Zero(t, orderID)
		})
	}
}

func TestSubmitOrder_InfrastructureFailures(t *testing.T) {
	t.Run("id generation failure maps to system busy", func(t *testing.T) {
		uc := commands.NewSeckillUseCase(
			&stubIDGen{err: errors.New("counter unreachable")},
			&stubAdmitter{},
			clock.NewMockClock(time.Now()),
		)

		_, err := uc.SubmitOrder(context.Background(), 42, 7001)
		assert.ErrorIs(t, err, errs.ErrSystemBusy)
	})

	t.Run("admission failure maps to system busy", func(t *testing.T) {
		uc := commands.NewSeckillUseCase(
			&stubIDGen{id: 1},
			&stubAdmitter{err: errors.New("script failed")},
			clock.NewMockClock(time.Now()),
		)

		_, err := uc.SubmitOrder(context.Background(), 42, 7001)
		assert.ErrorIs(t, err, errs.ErrSystemBusy)
	})
}
