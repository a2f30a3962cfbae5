package course

import "gorm.io/gorm"

// Section groups a course's videos
type Section struct {
	gorm.Model
	CourseID   uint   `json:"course_id" gorm:"index;not null"`
	Title      string `json:"title" gorm:"size:255;not null"`
	OrderIndex int    `json:"order_index" gorm:"default:0"` // Section order in course
}

func (Section) TableName() string {
	return "course_sections"
}
