package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name            string          `json:"name" gorm:"default:''"`
	Email           string          `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password        string          `json:"-" gorm:"not null"`
	IsAdmin         bool            `json:"isAdmin" gorm:"default:false"`
	PointsBalance   int64           `json:"points_balance" gorm:"default:0;index"`
	WalletBalance   decimal.Decimal `json:"wallet_balance" gorm:"type:numeric(12,2);default:0;not null"`
	EmailVerifiedAt *time.Time      `json:"email_verified_at"`
}

// UserSummary is the public projection returned by auth and profile endpoints.
type UserSummary struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	IsAdmin         bool            `json:"isAdmin"`
	PointsBalance   int64           `json:"points_balance"`
	WalletBalance   decimal.Decimal `json:"wallet_balance"`
	EmailVerifiedAt *time.Time      `json:"email_verified_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		IsAdmin:         u.IsAdmin,
		PointsBalance:   u.PointsBalance,
		WalletBalance:   u.WalletBalance,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
	}
}
