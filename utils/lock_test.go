package utils

import (
	"context"
	"coursehub/database/databasetest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBLockerExcludesSecondHolder(t *testing.T) {
	db := databasetest.Open(t)
	a := NewDBLocker(db)
	b := NewDBLocker(db)
	ctx := context.Background()

	lease, ok, err := a.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lease.Release(ctx))

	_, ok, err = b.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDBLockerTakesOverExpiredLease(t *testing.T) {
	db := databasetest.Open(t)
	a := NewDBLocker(db)
	b := NewDBLocker(db)
	ctx := context.Background()

	_, ok, err := a.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, ok, err = b.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDBLockerReleaseKeepsForeignLease(t *testing.T) {
	db := databasetest.Open(t)
	a := NewDBLocker(db)
	b := NewDBLocker(db)
	ctx := context.Background()

	stale, ok, err := a.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, ok, err = b.TryLock(ctx, "job", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	// a's lease expired and b owns the key now
	require.NoError(t, stale.Release(ctx))
	_, ok, err = NewDBLocker(db).TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDBLockerExtendKeepsLeaseAlive(t *testing.T) {
	db := databasetest.Open(t)
	a := NewDBLocker(db)
	b := NewDBLocker(db)
	ctx := context.Background()

	lease, ok, err := a.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// pushed past the original expiry, still ours
	a.now = func() time.Time { return time.Now().Add(50 * time.Second) }
	require.NoError(t, lease.Extend(ctx, time.Minute))

	b.now = func() time.Time { return time.Now().Add(90 * time.Second) }
	_, ok, err = b.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDBLockerExtendReportsLostLease(t *testing.T) {
	db := databasetest.Open(t)
	a := NewDBLocker(db)
	b := NewDBLocker(db)
	ctx := context.Background()

	stale, ok, err := a.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, ok, err = b.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	assert.ErrorIs(t, stale.Extend(ctx, time.Minute), ErrLeaseLost)
}

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLocker(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	key := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.Del(ctx, "coursehub:lock:"+key) })

	a := NewRedisLocker(client)
	lease, ok, err := a.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = NewRedisLocker(client).TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lease.Extend(ctx, time.Minute))
	require.NoError(t, lease.Release(ctx))
	assert.ErrorIs(t, lease.Extend(ctx, time.Minute), ErrLeaseLost)

	_, ok, err = NewRedisLocker(client).TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
