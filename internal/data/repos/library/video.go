package library

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type VideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, videos []*types.Video) ([]*types.Video, error)
	Upsert(ctx context.Context, tx *gorm.DB, videos []*types.Video) error
	GetByIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) ([]*types.Video, error)
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) ([]*types.Video, error)
	// GetByModuleIDs returns videos sorted ascending by sort_index.
	GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) ([]*types.Video, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, videoID string, fields map[string]any) (int64, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) error
	DeleteByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) error
	DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) error
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	repoLog := baseLog.With("repo", "VideoRepo")
	return &videoRepo{db: db, log: repoLog}
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, videos []*types.Video) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(videos) == 0 {
		return []*types.Video{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) Upsert(ctx context.Context, tx *gorm.DB, videos []*types.Video) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(videos) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&videos).Error
}

func (r *videoRepo) GetByIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Video
	if len(videoIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", videoIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *videoRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Video
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("sort_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *videoRepo) GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Video
	if len(moduleIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("module_id IN ?", moduleIDs).
		Order("sort_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *videoRepo) UpdateFields(ctx context.Context, tx *gorm.DB, videoID string, fields map[string]any) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Video{}).
		Where("id = ?", videoID).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *videoRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(videoIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", videoIDs).
		Delete(&types.Video{}).Error
}

func (r *videoRepo) DeleteByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(moduleIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("module_id IN ?", moduleIDs).
		Delete(&types.Video{}).Error
}

func (r *videoRepo) DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courseIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Delete(&types.Video{}).Error
}
