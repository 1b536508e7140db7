package order

import (
	"errors"
	"time"
)

var ErrMissingIdentity = errors.New("order requires id, user id and promotion id")

// Order is created exactly once by fulfillment and never mutated afterward.
// At most one order may ever exist for a (user id, promotion id) pair.
type Order struct {
	id          uint64
	userID      uint64
	promotionID uint64
	createdAt   time.Time
}

func NewOrder(id, userID, promotionID uint64, createdAt time.Time) (*Order, error) {
	if id == 0 || userID == 0 || promotionID == 0 {
		return nil, ErrMissingIdentity
	}
	return &Order{
		id:          id,
		userID:      userID,
		promotionID: promotionID,
		createdAt:   createdAt,
	}, nil
}

func (o *Order) ID() uint64           { return o.id }
func (o *Order) UserID() uint64       { return o.userID }
func (o *Order) PromotionID() uint64  { return o.promotionID }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
