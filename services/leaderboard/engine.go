package leaderboard

import (
	"context"
	"coursehub/apperrors"
	"coursehub/metrics"
	"coursehub/models"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultBatchSize = 500
	DefaultTopLimit  = 100
)

// Result reports a completed recompute.
type Result struct {
	UsersProcessed int `json:"users_processed"`
}

// Standing is a leaderboard row joined with the owning user's identity.
type Standing struct {
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Points    int64     `json:"points"`
	Rank      int       `json:"rank"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserStanding is a single user's view. Rank is nil until the user has been ranked.
type UserStanding struct {
	UserID    uint       `json:"user_id"`
	Points    int64      `json:"points"`
	Rank      *int       `json:"rank"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type Engine struct {
	db        *gorm.DB
	log       logrus.FieldLogger
	now       func() time.Time
	batchSize int
}

func NewEngine(db *gorm.DB, log logrus.FieldLogger) *Engine {
	return &Engine{
		db:        db,
		log:       log,
		now:       time.Now,
		batchSize: defaultBatchSize,
	}
}

// Recompute snapshots every user's points, dense-ranks them and upserts the
// leaderboard in a single transaction. A failure leaves the previous table intact.
func (e *Engine) Recompute(ctx context.Context) (Result, error) {
	started := e.now()

	var processed int
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users []UserPoints
		err := tx.Model(&models.User{}).
			Select("id", "points_balance").
			Order("points_balance DESC").
			Order("id ASC").
			Find(&users).Error
		if err != nil {
			return err
		}

		ranked := DenseRank(users)
		if len(ranked) == 0 {
			return nil
		}

		updatedAt := e.now()
		entries := make([]models.LeaderboardEntry, len(ranked))
		for i, r := range ranked {
			entries[i] = models.LeaderboardEntry{
				UserID:    r.UserID,
				Points:    r.Points,
				Rank:      r.Rank,
				UpdatedAt: updatedAt,
			}
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"points", "rank", "updated_at"}),
		}).CreateInBatches(&entries, e.batchSize).Error
		if err != nil {
			return err
		}

		processed = len(ranked)
		return nil
	})
	if err != nil {
		e.log.WithError(err).Error("leaderboard recompute rolled back")
		return Result{}, apperrors.Storage("leaderboard recompute", err)
	}

	metrics.LeaderboardUsers.Set(float64(processed))
	e.log.WithFields(logrus.Fields{
		"users_processed": processed,
		"took":            time.Since(started).String(),
	}).Info("leaderboard recomputed")

	return Result{UsersProcessed: processed}, nil
}

// Top returns the best ranked users still present, best rank first.
func (e *Engine) Top(ctx context.Context, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	standings := []Standing{}
	err := e.db.WithContext(ctx).
		Table("leaderboards").
		Select("leaderboards.user_id, users.name, users.email, leaderboards.points, leaderboards.rank, leaderboards.updated_at").
		Joins("JOIN users ON users.id = leaderboards.user_id AND users.deleted_at IS NULL").
		Order("leaderboards.rank ASC").
		Order("leaderboards.user_id ASC").
		Limit(limit).
		Scan(&standings).Error
	if err != nil {
		return nil, apperrors.Storage("leaderboard top", err)
	}
	return standings, nil
}

// ForUser returns the caller's entry, falling back to the live balance with a
// nil rank when no recompute has covered the user yet.
func (e *Engine) ForUser(ctx context.Context, userID uint) (UserStanding, error) {
	db := e.db.WithContext(ctx)

	var entry models.LeaderboardEntry
	err := db.Where("user_id = ?", userID).Limit(1).Find(&entry).Error
	if err != nil {
		return UserStanding{}, apperrors.Storage("leaderboard entry", err)
	}
	if entry.ID != 0 {
		rank := entry.Rank
		updatedAt := entry.UpdatedAt
		return UserStanding{UserID: userID, Points: entry.Points, Rank: &rank, UpdatedAt: &updatedAt}, nil
	}

	var user models.User
	if err := db.Select("id", "points_balance").First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return UserStanding{}, apperrors.NotFound("User")
		}
		return UserStanding{}, apperrors.Storage("leaderboard entry", err)
	}
	return UserStanding{UserID: userID, Points: user.PointsBalance}, nil
}

// Prune removes a user's entry. Recompute never deletes rows itself.
func (e *Engine) Prune(ctx context.Context, userID uint) error {
	err := e.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.LeaderboardEntry{}).Error
	if err != nil {
		return apperrors.Storage("leaderboard prune", err)
	}
	return nil
}
