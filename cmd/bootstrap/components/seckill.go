package components

import (
	"context"

	"flashsale-api/internal/infra/cache"
	"flashsale-api/internal/infra/redislock"
	"flashsale-api/internal/infra/seckill"
	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/config"
	"flashsale-api/internal/pkg/idgen"
	"flashsale-api/internal/usecase/commands"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var SeckillModule = fx.Module("seckill",
	fx.Provide(
		redislock.NewFactory,
		fx.Annotate(
			idgen.NewGenerator,
			fx.As(new(commands.IDGenerator)),
		),
		fx.Annotate(
			NewAdmission,
			fx.As(new(commands.Admitter)),
			fx.As(new(commands.AdmissionWarmer)),
		),
		NewQueue,
		NewCacheClient,
	),
)

func NewAdmission(cfg config.Config, rdb redis.UniversalClient) *seckill.Admission {
	return seckill.NewAdmission(rdb, cfg.Seckill.Stream)
}

func NewQueue(cfg config.Config, rdb redis.UniversalClient) *seckill.Queue {
	return seckill.NewQueue(rdb, cfg.Seckill.Stream, cfg.Seckill.Group, cfg.Seckill.Consumer)
}

func NewCacheClient(lc fx.Lifecycle, cfg config.Config, rdb redis.UniversalClient, locks *redislock.Factory, clk clock.Clock) *cache.Client {
	pool := cache.NewRebuildPool(cfg.Seckill.RebuildWorkers, cfg.Seckill.RebuildQueue)
	client := cache.NewClient(rdb, locks, pool, clk)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			client.Shutdown()
			return nil
		},
	})

	return client
}
