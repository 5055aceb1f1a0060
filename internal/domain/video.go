package domain

import (
	"time"

	"gorm.io/datatypes"
)

// VideoSourceKind tags where a video's bytes live. Exactly one branch is
// populated per video; the kind + ref pair makes that structural.
type VideoSourceKind string

const (
	SourceLocalFile  VideoSourceKind = "local_file"
	SourceRemoteURL  VideoSourceKind = "remote_url"
	SourceExternalID VideoSourceKind = "external_id"
)

type VideoSource struct {
	Kind VideoSourceKind `gorm:"column:source_kind;not null" json:"kind"`
	Ref  string          `gorm:"column:source_ref;not null" json:"ref"`
}

type Video struct {
	ID            string      `gorm:"primaryKey" json:"id"`
	CourseID      string      `gorm:"column:course_id;not null;index" json:"course_id"`
	ModuleID      string      `gorm:"column:module_id;not null;index" json:"module_id"`
	Title         string      `gorm:"column:title;not null" json:"title"`
	OriginalTitle string      `gorm:"column:original_title" json:"original_title,omitempty"`
	FileName      string      `gorm:"column:file_name" json:"file_name,omitempty"`
	Source        VideoSource `gorm:"embedded" json:"source"`
	Duration      float64     `gorm:"column:duration;not null;default:0" json:"duration"`
	SortIndex     int         `gorm:"column:sort_index;not null;default:0" json:"sort_index"`
	IsRequired    bool        `gorm:"column:is_required;not null;default:true" json:"is_required"`

	// Invariant: IsCompleted implies WatchProgress == 1, and CompletedAt is
	// non-nil iff IsCompleted.
	IsCompleted         bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	WatchProgress       float64    `gorm:"column:watch_progress;not null;default:0" json:"watch_progress"`
	LastWatchedPosition float64    `gorm:"column:last_watched_position;not null;default:0" json:"last_watched_position"`
	LastWatchedAt       *time.Time `gorm:"column:last_watched_at" json:"last_watched_at,omitempty"`
	CompletedAt         *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	WatchCount          int        `gorm:"column:watch_count;not null;default:0" json:"watch_count"`
	IsFavorite          bool       `gorm:"column:is_favorite;not null;default:false" json:"is_favorite"`

	Transcript            *string                          `gorm:"column:transcript;type:text" json:"transcript,omitempty"`
	CaptionChunks         datatypes.JSONSlice[CaptionCue]  `gorm:"column:caption_chunks;type:text" json:"caption_chunks,omitempty"`
	Summary               *string                          `gorm:"column:summary;type:text" json:"summary,omitempty"`
	TranscriptGeneratedAt *time.Time                       `gorm:"column:transcript_generated_at" json:"transcript_generated_at,omitempty"`
	SummaryGeneratedAt    *time.Time                       `gorm:"column:summary_generated_at" json:"summary_generated_at,omitempty"`

	DateAdded time.Time `gorm:"column:date_added;not null" json:"date_added"`
}

func (Video) TableName() string { return "videos" }
