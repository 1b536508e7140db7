//go:build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"flashsale-api/internal/handler"
	"flashsale-api/internal/handler/api"
	"flashsale-api/internal/handler/middleware"
	"flashsale-api/internal/infra/cache"
	"flashsale-api/internal/infra/db"
	"flashsale-api/internal/infra/readstore"
	"flashsale-api/internal/infra/redislock"
	"flashsale-api/internal/infra/seckill"
	"flashsale-api/internal/infra/uow"
	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/config"
	"flashsale-api/internal/pkg/idgen"
	"flashsale-api/internal/pkg/jwt"
	"flashsale-api/internal/usecase"
	"flashsale-api/internal/usecase/commands"
	"flashsale-api/internal/usecase/queries"
	"flashsale-api/internal/worker"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "test"
	testPassword = "testpass"
	testDBName   = "testdb"
)

type testEnv struct {
	Router *gin.Engine
	Pool   *pgxpool.Pool
	Cfg    config.Config
	JWT    *jwt.Service
}

func setupE2EEnvironment(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pgHost, pgPort := startPostgres(t, ctx)
	redisHost, redisPort := startRedis(t, ctx)

	cfg := config.NewTestConfig()
	cfg.DB = config.DBConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   testDBName,
		SSLMode:  "disable",
	}
	cfg.Redis = config.RedisConfig{Host: redisHost, Port: redisPort.Port()}

	pool, cleanup, err := db.Connect(cfg.DB)
	require.NoError(t, err, "failed to connect to postgres container")
	t.Cleanup(cleanup)
	require.NoError(t, db.EnsureSchema(ctx, pool))

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := &testEnv{Pool: pool, Cfg: cfg}
	env.Router = buildApp(t, cfg, pool, rdb)
	env.JWT = jwt.NewService(cfg.JWT.Secret, 24*time.Hour)
	return env
}

// buildApp wires the full application by hand, mirroring the fx graph.
func buildApp(t *testing.T, cfg config.Config, pool *pgxpool.Pool, rdb redis.UniversalClient) *gin.Engine {
	t.Helper()

	clk := clock.NewRealClock()
	locks := redislock.NewFactory(rdb)
	rebuildPool := cache.NewRebuildPool(cfg.Seckill.RebuildWorkers, cfg.Seckill.RebuildQueue)
	t.Cleanup(rebuildPool.Shutdown)
	cacheClient := cache.NewClient(rdb, locks, rebuildPool, clk)

	idGen := idgen.NewGenerator(rdb, clk)
	admission := seckill.NewAdmission(rdb, cfg.Seckill.Stream)
	queue := seckill.NewQueue(rdb, cfg.Seckill.Stream, cfg.Seckill.Group, cfg.Seckill.Consumer)

	unitOfWork := uow.NewPostgresUoW(pool)
	promotionReads := readstore.NewPromotionReadStore(pool)

	promotionQueries := queries.NewPromotionQueries(promotionReads, cacheClient)
	seckillCommands := commands.NewSeckillUseCase(idGen, admission, clk)
	promotionCommands := commands.NewPromotionUseCase(idGen, admission, unitOfWork, cacheClient, clk)
	fulfillment := commands.NewFulfillmentUseCase(locks, unitOfWork, clk)

	require.NoError(t, queue.EnsureGroup(context.Background()))
	consumer := worker.NewConsumer(queue, fulfillment, cfg.Seckill)
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(runCtx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	tokenValidator := usecase.NewTokenValidator(jwt.NewService(cfg.JWT.Secret, 24*time.Hour))
	authMiddleware := middleware.NewAuthMiddleware(tokenValidator)

	engine := gin.New()
	handler.NewRouter(engine, cfg,
		api.NewSeckillHandler(seckillCommands),
		api.NewPromotionHandler(promotionCommands, promotionQueries),
		authMiddleware,
	)
	return engine
}

func startPostgres(t *testing.T, ctx context.Context) (string, nat.Port) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       testDBName,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	return containerHostPort(t, ctx, container, "5432/tcp")
}

func startRedis(t *testing.T, ctx context.Context) (string, nat.Port) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	return containerHostPort(t, ctx, container, "6379/tcp")
}

func containerHostPort(t *testing.T, ctx context.Context, container testcontainers.Container, port nat.Port) (string, nat.Port) {
	t.Helper()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)
	return host, mapped
}

func (e *testEnv) token(t *testing.T, userID uint64) string {
	t.Helper()
	token, err := e.JWT.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) countOrders(t *testing.T, promotionID uint64) int {
	t.Helper()
	var n int
	err := e.Pool.QueryRow(context.Background(),
		`SELECT count(*) FROM orders WHERE promotion_id = $1`, int64(promotionID)).Scan(&n)
	require.NoError(t, err)
	return n
}

func (e *testEnv) promotionStock(t *testing.T, promotionID uint64) int64 {
	t.Helper()
	var stock int64
	err := e.Pool.QueryRow(context.Background(),
		`SELECT stock FROM promotions WHERE id = $1`, int64(promotionID)).Scan(&stock)
	require.NoError(t, err)
	return stock
}
