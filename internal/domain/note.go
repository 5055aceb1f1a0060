package domain

import "time"

// Note is a timestamped annotation on a video. CourseID is denormalized so
// per-course note queries skip the video lookup.
type Note struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	VideoID   string    `gorm:"column:video_id;not null;index" json:"video_id"`
	CourseID  string    `gorm:"column:course_id;not null;index" json:"course_id"`
	Timestamp float64   `gorm:"column:timestamp;not null;default:0" json:"timestamp"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Note) TableName() string { return "notes" }
