package worker

import (
	"context"
	"log/slog"
	"time"

	"flashsale-api/internal/infra/seckill"
	"flashsale-api/internal/pkg/config"
)

type OrderQueue interface {
	ReadNew(ctx context.Context, block time.Duration) (*seckill.Message, error)
	ReadPending(ctx context.Context) (*seckill.Message, error)
	Ack(ctx context.Context, entryID string) error
}

type Fulfiller interface {
	CreateOrder(ctx context.Context, msg *seckill.Message) error
}

// Consumer drains the order queue. Normal operation reads undelivered
// entries; startup and any failure drop into recovery, which replays the
// pending ledger oldest first until it is empty. Entries are acknowledged
// only after fulfillment returns, so a crash at any point leads to
// redelivery, never loss.
type Consumer struct {
	queue           OrderQueue
	fulfiller       Fulfiller
	blockTimeout    time.Duration
	recoveryBackoff time.Duration
}

func NewConsumer(queue OrderQueue, fulfiller Fulfiller, cfg config.SeckillConfig) *Consumer {
	return &Consumer{
		queue:           queue,
		fulfiller:       fulfiller,
		blockTimeout:    cfg.BlockTimeout,
		recoveryBackoff: cfg.RecoveryBackoff,
	}
}

// Run blocks until ctx is cancelled. The pending ledger is drained before
// the first live read, so entries delivered before a crash are replayed
// ahead of anything new.
func (c *Consumer) Run(ctx context.Context) {
	slog.Info("order consumer started")
	c.recoverPending(ctx)
	for {
		if ctx.Err() != nil {
			slog.Info("order consumer stopped")
			return
		}

		msg, err := c.queue.ReadNew(ctx, c.blockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			// The read may have failed after the server recorded the
			// delivery, stranding the entry in pending.
			slog.Error("failed to read order queue", "error", err.Error())
			c.sleep(ctx)
			c.recoverPending(ctx)
			continue
		}
		if msg == nil {
			// Block timeout elapsed with nothing to deliver.
			continue
		}

		if !c.handle(ctx, msg) {
			c.recoverPending(ctx)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *seckill.Message) bool {
	if err := c.fulfiller.CreateOrder(ctx, msg); err != nil {
		slog.Error("order fulfillment failed",
			"entry_id", msg.EntryID, "order_id", msg.OrderID, "error", err.Error())
		return false
	}
	if err := c.queue.Ack(ctx, msg.EntryID); err != nil {
		slog.Error("failed to acknowledge order entry",
			"entry_id", msg.EntryID, "error", err.Error())
		return false
	}
	return true
}

// recoverPending replays the pending ledger until it reads empty. The oldest
// entry is retried in place on failure rather than skipped, preserving
// delivery order within this consumer.
func (c *Consumer) recoverPending(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := c.queue.ReadPending(ctx)
		if err != nil {
			slog.Error("failed to read pending entries", "error", err.Error())
			c.sleep(ctx)
			continue
		}
		if msg == nil {
			return
		}

		if !c.handle(ctx, msg) {
			c.sleep(ctx)
		}
	}
}

func (c *Consumer) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.recoveryBackoff):
	}
}
