package seckill

import (
	"context"
	"strconv"
	"strings"
	"time"

	"flashsale-api/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

var (
	errQueueUnavailable = errs.New("order queue unavailable")
	errMalformedEntry   = errs.New("malformed queue entry")
)

// Message is one delivered queue entry: the serialized order fields plus the
// stream entry id needed to acknowledge it.
type Message struct {
	EntryID     string
	OrderID     uint64
	UserID      uint64
	PromotionID uint64
}

// Queue is the durable, at-least-once order queue: a Redis stream read
// through a consumer group, whose pending-entry ledger drives crash
// recovery.
type Queue struct {
	rdb      redis.UniversalClient
	stream   string
	group    string
	consumer string
}

func NewQueue(rdb redis.UniversalClient, stream, group, consumer string) *Queue {
	return &Queue{
		rdb:      rdb,
		stream:   stream,
		group:    group,
		consumer: consumer,
	}
}

// EnsureGroup creates the consumer group (and the stream) if missing.
// Safe to call on every startup.
func (q *Queue) EnsureGroup(ctx context.Context) error {
	err := q.rdb.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return errs.Mark(err, errQueueUnavailable)
	}
	return nil
}

// ReadNew blocks up to block for the next undelivered entry.
// Returns (nil, nil) when the timeout elapses with nothing to deliver.
func (q *Queue) ReadNew(ctx context.Context, block time.Duration) (*Message, error) {
	return q.readOne(ctx, ">", block)
}

// ReadPending returns the oldest delivered-but-unacknowledged entry for this
// consumer, or (nil, nil) when the pending ledger is empty.
func (q *Queue) ReadPending(ctx context.Context) (*Message, error) {
	return q.readOne(ctx, "0", 0)
}

func (q *Queue) Ack(ctx context.Context, entryID string) error {
	if err := q.rdb.XAck(ctx, q.stream, q.group, entryID).Err(); err != nil {
		return errs.Mark(err, errQueueUnavailable)
	}
	return nil
}

func (q *Queue) readOne(ctx context.Context, id string, block time.Duration) (*Message, error) {
	args := &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, id},
		Count:    1,
	}
	if block > 0 {
		args.Block = block
	} else {
		// Negative disables blocking entirely; recovery reads must not wait.
		args.Block = -1
	}

	streams, err := q.rdb.XReadGroup(ctx, args).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Mark(err, errQueueUnavailable)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	return decodeMessage(streams[0].Messages[0])
}

func decodeMessage(m redis.XMessage) (*Message, error) {
	msg := &Message{EntryID: m.ID}

	var err error
	if msg.OrderID, err = fieldUint(m.Values, "id"); err != nil {
		return nil, err
	}
	if msg.UserID, err = fieldUint(m.Values, "userId"); err != nil {
		return nil, err
	}
	if msg.PromotionID, err = fieldUint(m.Values, "voucherId"); err != nil {
		return nil, err
	}
	return msg, nil
}

func fieldUint(values map[string]any, key string) (uint64, error) {
	raw, ok := values[key]
	if !ok {
		return 0, errs.Mark(errs.New("missing field "+key), errMalformedEntry)
	}
	s, ok := raw.(string)
	if !ok {
		return 0, errs.Mark(errs.New("non-string field "+key), errMalformedEntry)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.Mark(err, errMalformedEntry)
	}
	return v, nil
}
