package seckill

import (
	"context"
	"strconv"
	"time"

	"flashsale-api/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix = "seckill:stock:"
	dedupKeyPrefix = "seckill:order:"
	beginKeyPrefix = "seckill:begin:"
	endKeyPrefix   = "seckill:end:"
)

// Code is the synchronous outcome of one admission attempt.
type Code int

const (
	Accepted Code = iota
	SoldOut
	Duplicate
	NotStarted
	Ended
)

// The whole decision runs as one script: time-window checks, per-user dedup,
// stock decrement and the queue append are indivisible with respect to every
// other admission attempt for the same promotion. Keys are derived inside the
// script (single-node deployment; no hash-tag routing needed).
var admissionScript = redis.NewScript(`
local voucherId = ARGV[1]
local userId = ARGV[2]
local orderId = ARGV[3]
local now = tonumber(ARGV[4])
local stream = ARGV[5]

local beginTime = tonumber(redis.call('get', 'seckill:begin:' .. voucherId))
if (beginTime == nil or now < beginTime) then
    return 3
end
local endTime = tonumber(redis.call('get', 'seckill:end:' .. voucherId))
if (endTime == nil or now >= endTime) then
    return 4
end

if (redis.call('sismember', 'seckill:order:' .. voucherId, userId) == 1) then
    return 2
end

local stock = tonumber(redis.call('get', 'seckill:stock:' .. voucherId))
if (stock == nil or stock <= 0) then
    return 1
end

redis.call('incrby', 'seckill:stock:' .. voucherId, -1)
redis.call('sadd', 'seckill:order:' .. voucherId, userId)
redis.call('xadd', stream, '*', 'id', orderId, 'userId', userId, 'voucherId', voucherId)
return 0
`)

var errAdmissionFailed = errs.New("admission script execution failed")

type Admission struct {
	rdb    redis.UniversalClient
	stream string
}

func NewAdmission(rdb redis.UniversalClient, stream string) *Admission {
	return &Admission{rdb: rdb, stream: stream}
}

// Admit runs the atomic admission decision. An Accepted result means the
// queue entry for orderID is already durably appended.
func (a *Admission) Admit(ctx context.Context, promotionID, userID, orderID uint64, now time.Time) (Code, error) {
	res, err := admissionScript.Run(ctx, a.rdb, []string{},
		strconv.FormatUint(promotionID, 10),
		strconv.FormatUint(userID, 10),
		strconv.FormatUint(orderID, 10),
		now.Unix(),
		a.stream,
	).Int64()
	if err != nil {
		return 0, errs.Mark(err, errAdmissionFailed)
	}
	return Code(res), nil
}

// Warmup seeds the admission-side view of a promotion: its stock counter and
// sale window. Called once when the promotion is published; the admission
// script is the only writer of the stock counter afterwards.
func (a *Admission) Warmup(ctx context.Context, promotionID uint64, stock int64, begin, end time.Time) error {
	id := strconv.FormatUint(promotionID, 10)
	_, err := a.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, stockKeyPrefix+id, stock, 0)
		pipe.Set(ctx, beginKeyPrefix+id, begin.Unix(), 0)
		pipe.Set(ctx, endKeyPrefix+id, end.Unix(), 0)
		return nil
	})
	if err != nil {
		return errs.Wrap(err, "failed to warm up promotion keys")
	}
	return nil
}
