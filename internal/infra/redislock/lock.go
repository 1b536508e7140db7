package redislock

import (
	"context"
	"time"

	"flashsale-api/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

// Unlock must only delete a lock this holder still owns. A lock that
// auto-expired and was re-acquired by another holder carries a different
// token, so the compare and the delete run in one script.
var unlockScript = redis.NewScript(`
if (redis.call('get', KEYS[1]) == ARGV[1]) then
    return redis.call('del', KEYS[1])
end
return 0
`)

var errLockUnavailable = errs.New("lock store unavailable")

// Lock is advisory mutual exclusion over a named resource. TTL auto-expiry
// is the sole deadlock-recovery mechanism; there is no renewal.
type Lock struct {
	rdb   redis.UniversalClient
	name  string
	token string
}

type Factory struct {
	rdb redis.UniversalClient
}

func NewFactory(rdb redis.UniversalClient) *Factory {
	return &Factory{rdb: rdb}
}

func (f *Factory) New(name string) *Lock {
	return &Lock{
		rdb:   f.rdb,
		name:  name,
		token: uuid.NewString(),
	}
}

// TryLock is non-blocking: it reports false immediately on contention.
func (l *Lock) TryLock(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, keyPrefix+l.name, l.token, ttl).Result()
	if err != nil {
		return false, errs.Mark(err, errLockUnavailable)
	}
	return ok, nil
}

func (l *Lock) Unlock(ctx context.Context) error {
	err := unlockScript.Run(ctx, l.rdb, []string{keyPrefix + l.name}, l.token).Err()
	if err != nil && err != redis.Nil {
		return errs.Mark(err, errLockUnavailable)
	}
	return nil
}
