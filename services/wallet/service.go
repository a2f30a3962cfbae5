// Package wallet owns every change to a user's wallet and points balance and
// the purchases paid from it.
package wallet

import (
	"context"
	"coursehub/apperrors"
	"coursehub/models"
	courseModels "coursehub/models/course"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var minDeposit = decimal.RequireFromString("0.01")

type Service struct {
	db  *gorm.DB
	log logrus.FieldLogger
	now func() time.Time
}

func NewService(db *gorm.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Purchase debits the course price and enrolls the user in one transaction.
func (s *Service) Purchase(ctx context.Context, userID, courseID uint) (courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course courseModels.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return notFoundOr(err, "Course")
		}

		var owned int64
		if err := tx.Model(&courseModels.Enrollment{}).Where("user_id = ? AND course_id = ?", userID, courseID).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return apperrors.Conflict("You have already purchased this course")
		}

		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND wallet_balance >= ?", userID, course.Price).
			Update("wallet_balance", gorm.Expr("wallet_balance - ?", course.Price))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Validation("Insufficient wallet balance", nil)
		}

		now := s.now()
		enrollment = courseModels.Enrollment{
			UserID:       userID,
			CourseID:     courseID,
			PurchaseDate: now,
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("You have already purchased this course")
			}
			return err
		}

		return tx.Create(&models.WalletTransaction{
			UserID:          userID,
			TransactionType: models.TransactionTypePurchase,
			Amount:          course.Price.Neg(),
			BalanceBefore:   user.WalletBalance,
			BalanceAfter:    user.WalletBalance.Sub(course.Price),
			Description:     "Course purchase",
			ReferenceType:   "COURSE",
			ReferenceID:     course.ID,
			ReferenceName:   course.Title,
			TransactionDate: now,
		}).Error
	})
	if err != nil {
		return courseModels.Enrollment{}, wrap("purchase course", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "course_id": courseID}).Info("course purchased")
	return enrollment, nil
}

// Deposit adds amount to the wallet atomically.
func (s *Service) Deposit(ctx context.Context, adminID, userID uint, amount decimal.Decimal) (models.User, error) {
	if amount.LessThan(minDeposit) {
		return models.User{}, apperrors.Validation("Validation failed", map[string]string{"amount": "Amount must be at least 0.01"})
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		err = tx.Model(&models.User{}).Where("id = ?", userID).
			Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount)).Error
		if err != nil {
			return err
		}
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		return tx.Create(&models.WalletTransaction{
			UserID:          userID,
			TransactionType: models.TransactionTypeDeposit,
			Amount:          amount,
			BalanceBefore:   before.WalletBalance,
			BalanceAfter:    user.WalletBalance,
			Description:     "Admin deposit",
			AdminID:         adminID,
			TransactionDate: s.now(),
		}).Error
	})
	if err != nil {
		return models.User{}, wrap("deposit wallet", err)
	}
	return user, nil
}

// SetWallet overwrites the wallet balance and records the difference.
func (s *Service) SetWallet(ctx context.Context, adminID, userID uint, balance decimal.Decimal) (models.User, error) {
	if balance.IsNegative() {
		return models.User{}, apperrors.Validation("Validation failed", map[string]string{"wallet_balance": "Wallet balance cannot be negative"})
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("wallet_balance", balance).Error; err != nil {
			return err
		}
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		return tx.Create(&models.WalletTransaction{
			UserID:          userID,
			TransactionType: models.TransactionTypeAdjustment,
			Amount:          balance.Sub(before.WalletBalance),
			BalanceBefore:   before.WalletBalance,
			BalanceAfter:    balance,
			Description:     "Admin wallet adjustment",
			AdminID:         adminID,
			TransactionDate: s.now(),
		}).Error
	})
	if err != nil {
		return models.User{}, wrap("adjust wallet", err)
	}
	return user, nil
}

// SetPoints overwrites the points balance. The leaderboard picks it up on the next recompute.
func (s *Service) SetPoints(ctx context.Context, userID uint, points int64) (models.User, error) {
	if points < 0 {
		return models.User{}, apperrors.Validation("Validation failed", map[string]string{"points_balance": "Points balance cannot be negative"})
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return models.User{}, wrap("adjust points", notFoundOr(err, "User"))
	}
	if err := db.Model(&user).Update("points_balance", points).Error; err != nil {
		return models.User{}, apperrors.Storage("adjust points", err)
	}
	user.PointsBalance = points
	return user, nil
}

// UpdateProgress records progress on a purchased course.
func (s *Service) UpdateProgress(ctx context.Context, userID, courseID uint, percentage float64) (courseModels.Enrollment, error) {
	if percentage < 0 || percentage > 100 {
		return courseModels.Enrollment{}, apperrors.Validation("Validation failed", map[string]string{"progress_percentage": "Progress must be between 0 and 100"})
	}

	db := s.db.WithContext(ctx)
	var course courseModels.Course
	if err := db.First(&course, courseID).Error; err != nil {
		return courseModels.Enrollment{}, wrap("update progress", notFoundOr(err, "Course"))
	}

	var enrollment courseModels.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return courseModels.Enrollment{}, apperrors.Forbidden("You have not purchased this course")
	}
	if err != nil {
		return courseModels.Enrollment{}, apperrors.Storage("update progress", err)
	}

	if err := db.Model(&enrollment).Update("progress_percentage", percentage).Error; err != nil {
		return courseModels.Enrollment{}, apperrors.Storage("update progress", err)
	}
	enrollment.ProgressPercentage = percentage
	return enrollment, nil
}

func (s *Service) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Storage("check enrollment", err)
	}
	return count > 0, nil
}

// History pages through the user's ledger, newest first.
func (s *Service) History(ctx context.Context, userID uint, txnType string, page, limit int) ([]models.WalletTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := s.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("user_id = ?", userID)
	if txnType != "" {
		query = query.Where("transaction_type = ?", txnType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage("wallet history", err)
	}

	transactions := []models.WalletTransaction{}
	err := query.
		Order("transaction_date DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, 0, apperrors.Storage("wallet history", err)
	}
	return transactions, total, nil
}

// lockUser reads the user row FOR UPDATE where the dialect supports it.
func lockUser(tx *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error
	if err != nil {
		return user, notFoundOr(err, "User")
	}
	return user, nil
}

func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return err
}

// wrap passes typed errors through and turns anything else into a StorageError.
func wrap(op string, err error) error {
	var (
		notFound   *apperrors.NotFoundError
		validation *apperrors.ValidationError
		conflict   *apperrors.ConflictError
		forbidden  *apperrors.ForbiddenError
	)
	if errors.As(err, &notFound) || errors.As(err, &validation) || errors.As(err, &conflict) || errors.As(err, &forbidden) {
		return err
	}
	return apperrors.Storage(op, err)
}
