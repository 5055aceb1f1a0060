package library

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type NoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notes []*types.Note) ([]*types.Note, error)
	Upsert(ctx context.Context, tx *gorm.DB, notes []*types.Note) error
	GetByIDs(ctx context.Context, tx *gorm.DB, noteIDs []string) ([]*types.Note, error)
	// GetByVideoIDs returns notes sorted ascending by their video timestamp.
	GetByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) ([]*types.Note, error)
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) ([]*types.Note, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, noteID string, fields map[string]any) (int64, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, noteIDs []string) error
	DeleteByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) error
	DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) error
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	repoLog := baseLog.With("repo", "NoteRepo")
	return &noteRepo{db: db, log: repoLog}
}

func (r *noteRepo) Create(ctx context.Context, tx *gorm.DB, notes []*types.Note) ([]*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(notes) == 0 {
		return []*types.Note{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepo) Upsert(ctx context.Context, tx *gorm.DB, notes []*types.Note) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(notes) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&notes).Error
}

func (r *noteRepo) GetByIDs(ctx context.Context, tx *gorm.DB, noteIDs []string) ([]*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Note
	if len(noteIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", noteIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *noteRepo) GetByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) ([]*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Note
	if len(videoIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("video_id IN ?", videoIDs).
		Order("timestamp ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *noteRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) ([]*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Note
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("timestamp ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *noteRepo) UpdateFields(ctx context.Context, tx *gorm.DB, noteID string, fields map[string]any) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Note{}).
		Where("id = ?", noteID).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *noteRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, noteIDs []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(noteIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", noteIDs).
		Delete(&types.Note{}).Error
}

func (r *noteRepo) DeleteByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(videoIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("video_id IN ?", videoIDs).
		Delete(&types.Note{}).Error
}

func (r *noteRepo) DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courseIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Delete(&types.Note{}).Error
}
