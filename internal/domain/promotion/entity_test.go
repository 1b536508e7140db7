//go:build unit

package promotion_test

import (
	"testing"
	"time"

	"flashsale-api/internal/domain/promotion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	begin = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC)
)

func newPromotion(t *testing.T, stock int64) *promotion.Promotion {
	t.Helper()
	p, err := promotion.NewPromotion(10, "flash sale", stock, begin, end, begin.Add(-time.Hour))
	require.NoError(t, err)
	return p
}

func TestNewPromotion(t *testing.T) {
	cases := []struct {
		name  string
		title string
		stock int64
		begin time.Time
		end   time.Time
		errIs error
	}{
		{name: "valid", title: "sale", stock: 100, begin: begin, end: end},
		{name: "empty title", title: "", stock: 100, begin: begin, end: end, errIs: promotion.ErrEmptyTitle},
		{name: "negative stock", title: "sale", stock: -1, begin: begin, end: end, errIs: promotion.ErrNegativeStock},
		{name: "inverted window", title: "sale", stock: 100, begin: end, end: begin, errIs: promotion.ErrWindowInverted},
		{name: "zero-length window", title: "sale", stock: 100, begin: begin, end: begin, errIs: promotion.ErrWindowInverted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := promotion.NewPromotion(1, tc.title, tc.stock, tc.begin, tc.end, begin)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.stock, p.Stock())
		})
	}
}

func TestValidateAdmission(t *testing.T) {
	p := newPromotion(t, 5)

	assert.ErrorIs(t, p.ValidateAdmission(begin.Add(-time.Second)), promotion.ErrSaleNotStarted)
	assert.ErrorIs(t, p.ValidateAdmission(end), promotion.ErrSaleEnded)
	assert.NoError(t, p.ValidateAdmission(begin))
	assert.NoError(t, p.ValidateAdmission(end.Add(-time.Second)))

	soldOut := newPromotion(t, 0)
	assert.ErrorIs(t, soldOut.ValidateAdmission(begin), promotion.ErrStockUnavailable)
}

func TestIsOpenAt(t *testing.T) {
	p := newPromotion(t, 1)

	assert.False(t, p.IsOpenAt(begin.Add(-time.Nanosecond)))
	assert.True(t, p.IsOpenAt(begin))
	assert.True(t, p.IsOpenAt(end.Add(-time.Nanosecond)))
	assert.False(t, p.IsOpenAt(end))
}
