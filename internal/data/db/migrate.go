package db

import (
	"gorm.io/gorm"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Course{},
		&types.Module{},
		&types.Video{},
		&types.Note{},
		&types.InstructorAvatar{},
	)
}
