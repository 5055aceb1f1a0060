package repos

import (
	"gorm.io/gorm"

	"github.com/courseatlas/courseatlas-backend/internal/data/repos/library"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type CourseRepo = library.CourseRepo
type ModuleRepo = library.ModuleRepo
type VideoRepo = library.VideoRepo
type NoteRepo = library.NoteRepo
type AvatarRepo = library.AvatarRepo

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return library.NewCourseRepo(db, baseLog)
}
func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return library.NewModuleRepo(db, baseLog)
}
func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return library.NewVideoRepo(db, baseLog)
}
func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return library.NewNoteRepo(db, baseLog)
}
func NewAvatarRepo(db *gorm.DB, baseLog *logger.Logger) AvatarRepo {
	return library.NewAvatarRepo(db, baseLog)
}
