package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CourseSettings is per-course playback configuration, stored as a JSON blob.
type CourseSettings struct {
	Autoplay      bool    `json:"autoplay"`
	PlaybackSpeed float64 `json:"playback_speed"`
}

func DefaultCourseSettings() CourseSettings {
	return CourseSettings{Autoplay: false, PlaybackSpeed: 1.0}
}

// MaxCourseTags bounds the tag list on a course.
const MaxCourseTags = 10

type Course struct {
	ID            string                              `gorm:"primaryKey" json:"id"`
	Title         string                              `gorm:"column:title;not null" json:"title"`
	OriginalTitle string                              `gorm:"column:original_title" json:"original_title,omitempty"`
	Description   string                              `gorm:"column:description;type:text" json:"description,omitempty"`
	Instructor    string                              `gorm:"column:instructor" json:"instructor,omitempty"`
	Tags          datatypes.JSONSlice[string]         `gorm:"column:tags;type:text" json:"tags"`
	Thumbnail     *string                             `gorm:"column:thumbnail;type:text" json:"thumbnail,omitempty"`
	SortIndex     int                                 `gorm:"column:sort_index;not null;default:0" json:"sort_index"`
	Settings      datatypes.JSONType[CourseSettings]  `gorm:"column:settings;type:text" json:"settings"`

	// Derived aggregates, owned by the progress recalculation. Never computed
	// lazily at read time.
	TotalDuration        float64 `gorm:"column:total_duration;not null;default:0" json:"total_duration"`
	TotalVideos          int     `gorm:"column:total_videos;not null;default:0" json:"total_videos"`
	CompletedVideos      int     `gorm:"column:completed_videos;not null;default:0" json:"completed_videos"`
	CompletionPercentage float64 `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`

	DateAdded    time.Time  `gorm:"column:date_added;not null" json:"date_added"`
	DateModified time.Time  `gorm:"column:date_modified;not null" json:"date_modified"`
	LastAccessed *time.Time `gorm:"column:last_accessed" json:"last_accessed,omitempty"`
}

func (Course) TableName() string { return "courses" }
