package library

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

type ModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, modules []*types.Module) ([]*types.Module, error)
	Upsert(ctx context.Context, tx *gorm.DB, modules []*types.Module) error
	GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) ([]*types.Module, error)
	// GetByCourseIDs returns modules sorted ascending by sort_index.
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) ([]*types.Module, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, moduleID string, fields map[string]any) (int64, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) error
	DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	repoLog := baseLog.With("repo", "ModuleRepo")
	return &moduleRepo{db: db, log: repoLog}
}

func (r *moduleRepo) Create(ctx context.Context, tx *gorm.DB, modules []*types.Module) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(modules) == 0 {
		return []*types.Module{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *moduleRepo) Upsert(ctx context.Context, tx *gorm.DB, modules []*types.Module) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(modules) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&modules).Error
}

func (r *moduleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Module
	if len(moduleIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", moduleIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Module
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

func (r *moduleRepo) UpdateFields(ctx context.Context, tx *gorm.DB, moduleID string, fields map[string]any) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Module{}).
		Where("id = ?", moduleID).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *moduleRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(moduleIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", moduleIDs).
		Delete(&types.Module{}).Error
}

func (r *moduleRepo) DeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courseIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Delete(&types.Module{}).Error
}
