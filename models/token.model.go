package models

import "time"

// RevokedToken blacklists a JWT id after logout until the token would have expired anyway.
type RevokedToken struct {
	ID        uint      `gorm:"primarykey"`
	JTI       string    `gorm:"column:jti;uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// PasswordResetToken stores the sha256 of a single-use reset token.
type PasswordResetToken struct {
	ID        uint      `gorm:"primarykey"`
	Email     string    `gorm:"index;size:255;not null"`
	TokenHash string    `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// SchedulerLock is a lease row used when scheduled jobs are coordinated through the database.
type SchedulerLock struct {
	Name      string    `gorm:"column:lock_key;primaryKey;size:191"`
	Holder    string    `gorm:"size:191;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func (SchedulerLock) TableName() string {
	return "scheduler_locks"
}
