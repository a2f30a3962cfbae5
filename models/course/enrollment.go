package course

import "time"

// Enrollment marks a user's purchase of a course and their progress through it
type Enrollment struct {
	ID                 uint      `json:"id" gorm:"primarykey"`
	UserID             uint      `json:"user_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID           uint      `json:"course_id" gorm:"uniqueIndex:idx_user_course;index;not null"`
	PurchaseDate       time.Time `json:"purchase_date" gorm:"not null"`
	ProgressPercentage float64   `json:"progress_percentage" gorm:"default:0"` // Completion percentage (0-100)
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "user_courses"
}
