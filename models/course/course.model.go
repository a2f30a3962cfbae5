package course

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Course represents a purchasable course. LibraryID and APIKey optionally
// point its videos at a dedicated video library.
type Course struct {
	gorm.Model
	Title         string          `json:"title" gorm:"size:255;not null"`
	Subtitle      *string         `json:"subtitle"`
	Description   *string         `json:"description" gorm:"type:text"`
	TotalDuration int64           `json:"total_duration" gorm:"default:0;not null"` // seconds, sum of video durations
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(10,2);default:0;not null"`
	Thumbnail     *string         `json:"thumbnail"`
	LibraryID     *string         `json:"library_id"`
	APIKey        *string         `json:"-" gorm:"column:api_key"`
}
