package bootstrap

import (
	"flashsale-api/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	RedisModule,
	JWTModule,
	components.PersistenceModule,
	components.SeckillModule,
	components.UseCaseModule,
	components.HandlerModule,
	ConsumerModule,
)
