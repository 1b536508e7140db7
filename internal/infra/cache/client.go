package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"flashsale-api/internal/infra/redislock"
	"flashsale-api/internal/pkg/clock"
	"flashsale-api/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const (
	// Tombstones block repeated-miss storms against the data source.
	tombstoneTTL = 2 * time.Minute

	rebuildLockTTL  = 10 * time.Second
	rebuildTimeout  = 10 * time.Second
	rebuildLockName = "cache:rebuild:"
)

var errCacheUnavailable = errs.New("cache store unavailable")

// envelope carries a payload with its embedded logical expiry. Entries
// written this way have no physical TTL; staleness is decided purely by
// comparing ExpireTime to the current time.
type envelope struct {
	Data       json.RawMessage `json:"data"`
	ExpireTime time.Time       `json:"expireTime"`
}

// Loader fetches the source-of-truth value on a cache miss or rebuild.
// Returning (nil, nil) means the value does not exist.
type Loader[T any] func(ctx context.Context) (*T, error)

type Client struct {
	rdb   redis.UniversalClient
	locks *redislock.Factory
	pool  *RebuildPool
	clock clock.Clock
}

func NewClient(rdb redis.UniversalClient, locks *redislock.Factory, pool *RebuildPool, clk clock.Clock) *Client {
	return &Client{
		rdb:   rdb,
		locks: locks,
		pool:  pool,
		clock: clk,
	}
}

// Shutdown drains the rebuild pool.
func (c *Client) Shutdown() {
	c.pool.Shutdown()
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errs.Wrap(err, "failed to marshal cache value")
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return errs.Mark(err, errCacheUnavailable)
	}
	return nil
}

// SetLogicalExpire writes value wrapped with expiry = now + window and no
// physical TTL. Used to pre-warm hot keys read through QueryWithLogicalExpire.
func (c *Client) SetLogicalExpire(ctx context.Context, key string, value any, window time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errs.Wrap(err, "failed to marshal cache value")
	}
	data, err := json.Marshal(envelope{
		Data:       payload,
		ExpireTime: c.clock.Now().Add(window),
	})
	if err != nil {
		return errs.Wrap(err, "failed to marshal cache envelope")
	}
	if err := c.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return errs.Mark(err, errCacheUnavailable)
	}
	return nil
}

// QueryWithPassThrough is the classic cache-aside read. A cached tombstone
// short-circuits to (nil, nil) without touching the loader.
func QueryWithPassThrough[T any](ctx context.Context, c *Client, key string, loader Loader[T], ttl time.Duration) (*T, error) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		if raw == "" {
			return nil, nil
		}
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, errs.Wrap(err, "failed to unmarshal cached value")
		}
		return &value, nil
	}
	if err != redis.Nil {
		return nil, errs.Mark(err, errCacheUnavailable)
	}

	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if value == nil {
		if err := c.rdb.Set(ctx, key, "", tombstoneTTL).Err(); err != nil {
			return nil, errs.Mark(err, errCacheUnavailable)
		}
		return nil, nil
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		return nil, err
	}
	return value, nil
}

// QueryWithLogicalExpire never invokes the loader on the read path. A miss
// returns (nil, nil): keys served this way must be pre-warmed out of band.
// A stale hit returns the stale value immediately and schedules at most one
// concurrent rebuild for the key, guarded by the rebuild lock.
func QueryWithLogicalExpire[T any](ctx context.Context, c *Client, key string, loader Loader[T], window time.Duration) (*T, error) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Mark(err, errCacheUnavailable)
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal cache envelope")
	}
	var value T
	if err := json.Unmarshal(env.Data, &value); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal cached value")
	}

	if env.ExpireTime.After(c.clock.Now()) {
		return &value, nil
	}

	scheduleRebuild(ctx, c, key, loader, window)
	return &value, nil
}

func scheduleRebuild[T any](ctx context.Context, c *Client, key string, loader Loader[T], window time.Duration) {
	lock := c.locks.New(rebuildLockName + key)
	ok, err := lock.TryLock(ctx, rebuildLockTTL)
	if err != nil {
		slog.Warn("failed to acquire rebuild lock", "key", key, "error", err.Error())
		return
	}
	if !ok {
		// Another rebuild is already in flight.
		return
	}

	submitted := c.pool.Submit(func() {
		// Detached from the request: a slow source must not be tied to the
		// reader's deadline, and the lock is released on every exit path.
		rebuildCtx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
		defer cancel()
		defer func() {
			if err := lock.Unlock(rebuildCtx); err != nil {
				slog.Warn("failed to release rebuild lock", "key", key, "error", err.Error())
			}
		}()

		fresh, err := loader(rebuildCtx)
		if err != nil {
			slog.Error("cache rebuild failed", "key", key, "error", err.Error())
			return
		}
		if fresh == nil {
			slog.Warn("cache rebuild found no source value", "key", key)
			return
		}
		if err := c.SetLogicalExpire(rebuildCtx, key, fresh, window); err != nil {
			slog.Error("cache rebuild write failed", "key", key, "error", err.Error())
		}
	})
	if !submitted {
		if err := lock.Unlock(ctx); err != nil {
			slog.Warn("failed to release rebuild lock", "key", key, "error", err.Error())
		}
	}
}
