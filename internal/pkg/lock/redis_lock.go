// Best-effort cross-instance lock for the open-workflow check. The partial
// unique index on open attempts is the hard guarantee; this lock just keeps
// concurrent double-opens from both reaching the insert in the common case.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL       = 5 * time.Second
	lockKeyPrefix = "cancelflow:open:"
)

type UserLocker interface {
	// AcquireOpenLock returns a release func. When the lock cannot be
	// obtained (held elsewhere or redis unavailable) acquired is false and
	// the caller proceeds without it.
	AcquireOpenLock(ctx context.Context, userId uuid.UUID) (release func(), acquired bool)
}

type redisUserLocker struct {
	rdb *redis.Client
}

func NewRedisUserLocker(rdb *redis.Client) UserLocker {
	return &redisUserLocker{rdb: rdb}
}

func (l *redisUserLocker) AcquireOpenLock(ctx context.Context, userId uuid.UUID) (func(), bool) {
	if l.rdb == nil {
		return func() {}, false
	}

	key := lockKeyPrefix + userId.String()
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil || !ok {
		return func() {}, false
	}

	release := func() {
		// Release only our own token; an expired lock may have been
		// re-acquired by another instance.
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		l.rdb.Eval(context.Background(), script, []string{key}, token)
	}
	return release, true
}

// NoopUserLocker is used when redis is not configured.
type NoopUserLocker struct{}

func (NoopUserLocker) AcquireOpenLock(ctx context.Context, userId uuid.UUID) (func(), bool) {
	return func() {}, false
}
