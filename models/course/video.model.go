package course

import (
	"time"

	"gorm.io/datatypes"
)

// VideoStatus is the lifecycle state of a video on the host
type VideoStatus string

const (
	VideoPending    VideoStatus = "pending"
	VideoUploading  VideoStatus = "uploading"
	VideoProcessing VideoStatus = "processing"
	VideoReady      VideoStatus = "ready"
	VideoFailed     VideoStatus = "failed"
)

// Video is a section's video. Rows are hard-deleted.
type Video struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	SectionID  uint           `json:"section_id" gorm:"column:course_section_id;index;not null"`
	Title      string         `json:"title" gorm:"size:255;not null"`
	BunnyGUID  *string        `json:"bunny_video_guid" gorm:"column:bunny_video_guid;uniqueIndex;size:64"`
	Status     VideoStatus    `json:"status" gorm:"type:varchar(20);default:'pending';not null"`
	Duration   *int64         `json:"duration"` // seconds
	OrderIndex int            `json:"order_index" gorm:"default:0"` // Order within section
	Meta       datatypes.JSON `json:"meta"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
