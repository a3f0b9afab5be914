package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-engine/pkg/id"
)

// release only deletes the key if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct{ rdb *redis.Client }

func NewLocker(rdb *redis.Client) *Locker { return &Locker{rdb: rdb} }

// TryLock takes key for ttl using SET NX. ok is false when someone else
// holds it; otherwise release frees it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	token := id.NewID32()
	ok, err = l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
	}, true, nil
}
