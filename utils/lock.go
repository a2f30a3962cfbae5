package utils

import (
	"context"
	"coursehub/models"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLeaseLost is returned by Extend once another holder owns the key.
var ErrLeaseLost = errors.New("lock lease lost")

// Locker hands out a fleet-wide mutex for scheduled jobs. ok is false when
// another holder owns the key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (lease Lease, ok bool, err error)
}

// Lease is one held lock. Extend and Release only touch our own hold.
type Lease interface {
	Extend(ctx context.Context, ttl time.Duration) error
	Release(ctx context.Context) error
}

func lockHolder() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return host + ":" + uuid.NewString()
}

// RedisLocker uses SET NX PX with a random holder token.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, prefix: "coursehub:lock:"}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type redisLease struct {
	client *redis.Client
	key    string
	holder string
}

func (l *redisLease) Extend(ctx context.Context, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, l.client, []string{l.key}, l.holder, ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}

func (l *redisLease) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.holder).Err()
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	redisKey := l.prefix + key
	holder := lockHolder()

	ok, err := l.client.SetNX(ctx, redisKey, holder, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	return &redisLease{client: l.client, key: redisKey, holder: holder}, true, nil
}

// DBLocker leases rows in scheduler_locks. Expired leases are cleared before each attempt.
type DBLocker struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBLocker(db *gorm.DB) *DBLocker {
	return &DBLocker{db: db, now: time.Now}
}

type dbLease struct {
	locker *DBLocker
	key    string
	holder string
}

func (l *dbLease) Extend(ctx context.Context, ttl time.Duration) error {
	res := l.locker.db.WithContext(ctx).
		Model(&models.SchedulerLock{}).
		Where("lock_key = ? AND holder = ?", l.key, l.holder).
		Update("expires_at", l.locker.now().Add(ttl))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLeaseLost
	}
	return nil
}

func (l *dbLease) Release(ctx context.Context) error {
	return l.locker.db.WithContext(ctx).
		Where("lock_key = ? AND holder = ?", l.key, l.holder).
		Delete(&models.SchedulerLock{}).Error
}

func (l *DBLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	db := l.db.WithContext(ctx)
	now := l.now()

	if err := db.Where("lock_key = ? AND expires_at < ?", key, now).Delete(&models.SchedulerLock{}).Error; err != nil {
		return nil, false, fmt.Errorf("failed to clear expired lock %s: %w", key, err)
	}

	lease := models.SchedulerLock{Name: key, Holder: lockHolder(), ExpiresAt: now.Add(ttl)}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lease)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	return &dbLease{locker: l, key: key, holder: lease.Holder}, true, nil
}
