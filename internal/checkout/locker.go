package checkout

import (
	"context"
	"time"

	"github.com/ecofinds/ecofinds-backend/pkg/redis"
)

const lockScope = "checkout"

type lockLease interface {
	Release(ctx context.Context) error
}

type cartLocker interface {
	AcquireCartLock(ctx context.Context, buyerID string, ttl time.Duration) (lockLease, error)
}

// RedisLocker serializes settlements per buyer on the shared Redis lease.
type RedisLocker struct {
	Client *redis.Client
}

func (l RedisLocker) AcquireCartLock(ctx context.Context, buyerID string, ttl time.Duration) (lockLease, error) {
	lock, err := l.Client.AcquireLock(ctx, lockScope, buyerID, ttl)
	if err != nil {
		return nil, err
	}
	return lock, nil
}
