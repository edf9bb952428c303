package redis

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Locker grants short-lived cluster-wide leases.
type Locker struct {
	rs  *redsync.Redsync
	log zerolog.Logger
}

// NewLocker builds a redsync locker over client.
func NewLocker(client redis.UniversalClient, log zerolog.Logger) *Locker {
	return &Locker{
		rs:  redsync.New(goredis.NewPool(client)),
		log: log.With().Str("component", "redis-lock").Logger(),
	}
}

// TryWithLock runs fn only if the named lease is free. It reports whether fn ran.
func (l *Locker) TryWithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) (bool, error) {
	mutex := l.rs.NewMutex(name, redsync.WithExpiry(ttl), redsync.WithTries(1))

	if err := mutex.TryLockContext(ctx); err != nil {
		l.log.Debug().Err(err).Str("lock", name).Msg("lease held elsewhere")
		return false, nil
	}

	defer func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			l.log.Error().Err(err).Str("lock", name).Msg("failed to release lease")
		}
	}()

	return true, fn(ctx)
}
