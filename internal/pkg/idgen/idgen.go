package idgen

import (
	"context"

	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// Epoch for the timestamp half of generated ids: 2022-01-01T00:00:00Z.
const beginTimestamp = 1640995200

const counterBits = 32

var errCounterUnavailable = errs.New("id counter unavailable")

// Generator produces globally unique, roughly time-ordered uint64 ids.
// High 32 bits: seconds since the epoch. Low 32 bits: a per-namespace,
// per-calendar-day counter backed by an atomic Redis INCR. Uniqueness
// holds as long as a namespace stays under 2^32 ids per day.
type Generator struct {
	rdb   redis.UniversalClient
	clock clock.Clock
}

func NewGenerator(rdb redis.UniversalClient, clk clock.Clock) *Generator {
	return &Generator{rdb: rdb, clock: clk}
}

func (g *Generator) NextID(ctx context.Context, namespace string) (uint64, error) {
	now := g.clock.Now().UTC()
	timestamp := uint64(now.Unix() - beginTimestamp)

	// Daily keys keep any single counter far from wrap-around and make the
	// sequence numbers readable for a given day.
	date := now.Format("2006:01:02")
	count, err := g.rdb.Incr(ctx, "icr:"+namespace+":"+date).Result()
	if err != nil {
		return 0, errs.Mark(err, errCounterUnavailable)
	}

	return timestamp<<counterBits | uint64(count), nil
}
