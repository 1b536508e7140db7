package promotion

import (
	"errors"
	"time"
)

var (
	ErrEmptyTitle       = errors.New("promotion title is empty")
	ErrNegativeStock    = errors.New("promotion stock is negative")
	ErrWindowInverted   = errors.New("promotion sale window ends before it begins")
	ErrSaleNotStarted   = errors.New("sale has not started")
	ErrSaleEnded        = errors.New("sale has ended")
	ErrStockUnavailable = errors.New("no stock remaining")
)

// Promotion is a time-boxed, limited-stock sale. Stock here is the
// authoritative relational view; the Redis-side counter seeded at publish
// time is the admission view and is mutated only by the admission script.
type Promotion struct {
	id        uint64
	title     string
	stock     int64
	beginTime time.Time
	endTime   time.Time
	createdAt time.Time
}

func NewPromotion(id uint64, title string, stock int64, beginTime, endTime, createdAt time.Time) (*Promotion, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	if !endTime.After(beginTime) {
		return nil, ErrWindowInverted
	}

	return &Promotion{
		id:        id,
		title:     title,
		stock:     stock,
		beginTime: beginTime,
		endTime:   endTime,
		createdAt: createdAt,
	}, nil
}

func (p *Promotion) IsOpenAt(t time.Time) bool {
	return !t.Before(p.beginTime) && t.Before(p.endTime)
}

func (p *Promotion) ValidateAdmission(t time.Time) error {
	if t.Before(p.beginTime) {
		return ErrSaleNotStarted
	}
	if !t.Before(p.endTime) {
		return ErrSaleEnded
	}
	if p.stock <= 0 {
		return ErrStockUnavailable
	}
	return nil
}

func (p *Promotion) ID() uint64           { return p.id }
func (p *Promotion) Title() string        { return p.title }
func (p *Promotion) Stock() int64         { return p.stock }
func (p *Promotion) BeginTime() time.Time { return p.beginTime }
func (p *Promotion) EndTime() time.Time   { return p.endTime }
func (p *Promotion) CreatedAt() time.Time { return p.createdAt }
