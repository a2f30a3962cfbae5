package models

import "time"

// LeaderboardEntry is derived from User.PointsBalance and written only by the
// ranking engine. The table has no created_at column.
type LeaderboardEntry struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Points    int64     `json:"points" gorm:"default:0;not null"`
	Rank      int       `json:"rank" gorm:"index;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboards"
}
