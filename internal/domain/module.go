package domain

import "time"

type Module struct {
	ID            string `gorm:"primaryKey" json:"id"`
	CourseID      string `gorm:"column:course_id;not null;index" json:"course_id"`
	Title         string `gorm:"column:title;not null" json:"title"`
	OriginalTitle string `gorm:"column:original_title" json:"original_title,omitempty"`
	SortIndex     int    `gorm:"column:sort_index;not null;default:0" json:"sort_index"`

	TotalDuration        float64 `gorm:"column:total_duration;not null;default:0" json:"total_duration"`
	TotalVideos          int     `gorm:"column:total_videos;not null;default:0" json:"total_videos"`
	CompletedVideos      int     `gorm:"column:completed_videos;not null;default:0" json:"completed_videos"`
	CompletionPercentage float64 `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`

	DateAdded time.Time `gorm:"column:date_added;not null" json:"date_added"`
}

func (Module) TableName() string { return "modules" }
