package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// ErrLockHeld signals the lock is currently owned by another caller.
var ErrLockHeld = errors.New("lock already held")

// releaseScript deletes the lock only when the caller still owns it.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// Lock is a single-holder lease acquired via SET NX.
type Lock struct {
	client *Client
	key    string
	token  string
}

// AcquireLock takes the lease for scope/id or fails fast with ErrLockHeld.
func (c *Client) AcquireLock(ctx context.Context, scope, id string, ttl time.Duration) (*Lock, error) {
	if c.store == nil {
		return nil, errors.New("redis client not initialized")
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}

	key := c.LockKey(scope, id)
	token := uuid.NewString()
	ok, err := c.store.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: c, key: key, token: token}, nil
}

// Release frees the lease if this holder still owns it.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	err := l.client.store.Eval(ctx, releaseScript, []string{l.key}, l.token).Err()
	if err != nil && !errors.Is(err, redislib.Nil) {
		return err
	}
	return nil
}
