package components

import (
	"flashsale-api/internal/infra/db"
	"flashsale-api/internal/infra/readstore"
	"flashsale-api/internal/infra/uow"
	"flashsale-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewPromotionReadStore,
			fx.As(new(queries.PromotionViewRepo)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
