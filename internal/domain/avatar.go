package domain

import (
	"strings"
	"time"
)

// InstructorAvatar is keyed by a normalized instructor name. Avatars are
// shared across courses and are only removed explicitly, never by cascade.
type InstructorAvatar struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	Image     string    `gorm:"column:image;type:text;not null" json:"image"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (InstructorAvatar) TableName() string { return "instructor_avatars" }

// NormalizeInstructorName lowercases and collapses interior whitespace so
// "Jane  Doe " and "jane doe" share one avatar row.
func NormalizeInstructorName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
