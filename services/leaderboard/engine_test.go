package leaderboard

import (
	"context"
	"coursehub/apperrors"
	"coursehub/database/databasetest"
	"coursehub/models"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedUsers(t *testing.T, db *gorm.DB, points ...int64) []models.User {
	t.Helper()
	users := make([]models.User, len(points))
	for i, p := range points {
		users[i] = models.User{
			Name:          fmt.Sprintf("user%d", i),
			Email:         fmt.Sprintf("user%d@example.com", i),
			Password:      "x",
			PointsBalance: p,
		}
	}
	require.NoError(t, db.Create(&users).Error)
	return users
}

func loadEntries(t *testing.T, db *gorm.DB) map[uint]models.LeaderboardEntry {
	t.Helper()
	var entries []models.LeaderboardEntry
	require.NoError(t, db.Find(&entries).Error)
	out := make(map[uint]models.LeaderboardEntry, len(entries))
	for _, e := range entries {
		out[e.UserID] = e
	}
	return out
}

func TestRecomputeDenseRanks(t *testing.T) {
	db := databasetest.Open(t)
	users := seedUsers(t, db, 100, 100, 50, 0)
	engine := NewEngine(db, quietLogger())

	res, err := engine.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.UsersProcessed)

	entries := loadEntries(t, db)
	require.Len(t, entries, 4)
	for i, want := range []int{1, 1, 2, 3} {
		assert.Equal(t, want, entries[users[i].ID].Rank, "user %d", i)
		assert.Equal(t, users[i].PointsBalance, entries[users[i].ID].Points)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db := databasetest.Open(t)
	seedUsers(t, db, 10, 40, 40, 3, 10)
	engine := NewEngine(db, quietLogger())

	_, err := engine.Recompute(context.Background())
	require.NoError(t, err)
	first := loadEntries(t, db)

	_, err = engine.Recompute(context.Background())
	require.NoError(t, err)
	second := loadEntries(t, db)

	require.Len(t, second, len(first))
	for id, e := range first {
		assert.Equal(t, e.Rank, second[id].Rank)
		assert.Equal(t, e.Points, second[id].Points)
		assert.Equal(t, e.ID, second[id].ID, "entry should be updated in place")
	}
}

func TestRecomputeEmptyUserSet(t *testing.T) {
	db := databasetest.Open(t)
	engine := NewEngine(db, quietLogger())

	res, err := engine.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.UsersProcessed)

	var count int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecomputePicksUpChangedPoints(t *testing.T) {
	db := databasetest.Open(t)
	users := seedUsers(t, db, 10, 20)
	engine := NewEngine(db, quietLogger())

	_, err := engine.Recompute(context.Background())
	require.NoError(t, err)

	require.NoError(t, db.Model(&users[0]).Update("points_balance", 99).Error)
	_, err = engine.Recompute(context.Background())
	require.NoError(t, err)

	entries := loadEntries(t, db)
	assert.Equal(t, 1, entries[users[0].ID].Rank)
	assert.Equal(t, int64(99), entries[users[0].ID].Points)
	assert.Equal(t, 2, entries[users[1].ID].Rank)
}

func TestRecomputeFailureKeepsPreviousEntries(t *testing.T) {
	db := databasetest.Open(t)
	users := seedUsers(t, db, 5, 4, 3, 2)
	engine := NewEngine(db, quietLogger())
	engine.batchSize = 2

	_, err := engine.Recompute(context.Background())
	require.NoError(t, err)
	before := loadEntries(t, db)

	// reverse the order so every rank would change
	for i, u := range users {
		require.NoError(t, db.Model(&u).Update("points_balance", 10*(i+1)).Error)
	}

	// let the first batch through, fail the second
	batches := 0
	err = db.Callback().Create().Before("gorm:create").Register("test:fail_second_batch", func(tx *gorm.DB) {
		if tx.Statement.Table != "leaderboards" {
			return
		}
		batches++
		if batches == 2 {
			tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = engine.Recompute(context.Background())
	require.Error(t, err)
	var storageErr *apperrors.StorageError
	assert.ErrorAs(t, err, &storageErr)
	assert.Equal(t, 2, batches)

	after := loadEntries(t, db)
	require.Len(t, after, len(before))
	for id, e := range before {
		assert.Equal(t, e.Rank, after[id].Rank)
		assert.Equal(t, e.Points, after[id].Points)
	}
}

func TestRecomputeSkipsSoftDeletedUsers(t *testing.T) {
	db := databasetest.Open(t)
	users := seedUsers(t, db, 10, 20, 30)
	require.NoError(t, db.Delete(&users[2]).Error)

	res, err := NewEngine(db, quietLogger()).Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.UsersProcessed)

	entries := loadEntries(t, db)
	assert.Equal(t, 1, entries[users[1].ID].Rank)
	assert.Equal(t, 2, entries[users[0].ID].Rank)
}

func TestTopJoinsUsersInRankOrder(t *testing.T) {
	db := databasetest.Open(t)
	users := seedUsers(t, db, 1, 3, 2)
	engine := NewEngine(db, quietLogger())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	engine.now = func() time.Time { return fixed }

	_, err := engine.Recompute(context.Background())
	require.NoError(t, err)

	top, err := engine.Top(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, users[1].ID, top[0].UserID)
	assert.Equal(t, "user1", top[0].Name)
	assert.Equal(t, "user1@example.com", top[0].Email)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, users[2].ID, top[1].UserID)
	assert.Equal(t, 2, top[1].Rank)
}

func TestForUser(t *testing.T) {
	db := databasetest.Open(t)
	users := seedUsers(t, db, 8, 12)
	engine := NewEngine(db, quietLogger())

	standing, err := engine.ForUser(context.Background(), users[0].ID)
	require.NoError(t, err)
	assert.Nil(t, standing.Rank)
	assert.Equal(t, int64(8), standing.Points)

	_, err = engine.Recompute(context.Background())
	require.NoError(t, err)

	standing, err = engine.ForUser(context.Background(), users[0].ID)
	require.NoError(t, err)
	require.NotNil(t, standing.Rank)
	assert.Equal(t, 2, *standing.Rank)

	_, err = engine.ForUser(context.Background(), 9999)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestPruneRemovesOnlyThatUser(t *testing.T) {
	db := databasetest.Open(t)
	users := seedUsers(t, db, 1, 2)
	engine := NewEngine(db, quietLogger())
	_, err := engine.Recompute(context.Background())
	require.NoError(t, err)

	require.NoError(t, engine.Prune(context.Background(), users[0].ID))

	entries := loadEntries(t, db)
	assert.Len(t, entries, 1)
	assert.Contains(t, entries, users[1].ID)
}
