package models

import "gorm.io/gorm"

type Blog struct {
	gorm.Model
	Title    string  `json:"title" gorm:"size:255;not null"`
	Content  string  `json:"content" gorm:"type:text;not null"`
	ImageURL *string `json:"image_url"`
}
