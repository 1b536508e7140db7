package bootstrap

import (
	"context"

	"flashsale-api/internal/infra/seckill"
	"flashsale-api/internal/pkg/config"
	"flashsale-api/internal/usecase/commands"
	"flashsale-api/internal/worker"

	"go.uber.org/fx"
)

var ConsumerModule = fx.Module("consumer",
	fx.Provide(
		NewOrderConsumer,
	),
	fx.Invoke(runOrderConsumer),
)

func NewOrderConsumer(queue *seckill.Queue, fulfiller commands.FulfillmentCommands, cfg config.Config) *worker.Consumer {
	return worker.NewConsumer(queue, fulfiller, cfg.Seckill)
}

// The consumer group must exist before the first read, and the consumer goroutine
// must drain before the Redis client is closed on shutdown.
func runOrderConsumer(lc fx.Lifecycle, queue *seckill.Queue, consumer *worker.Consumer) {
	var cancel context.CancelFunc
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := queue.EnsureGroup(ctx); err != nil {
				return err
			}

			runCtx, c := context.WithCancel(context.Background())
			cancel = c
			go func() {
				defer close(done)
				consumer.Run(runCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
