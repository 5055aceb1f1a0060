package library

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

// AvatarRepo stores one avatar per normalized instructor name. Callers pass
// names already run through domain.NormalizeInstructorName.
type AvatarRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, avatar *types.InstructorAvatar) error
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.InstructorAvatar, error)
	DeleteByNames(ctx context.Context, tx *gorm.DB, names []string) error
}

type avatarRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAvatarRepo(db *gorm.DB, baseLog *logger.Logger) AvatarRepo {
	repoLog := baseLog.With("repo", "AvatarRepo")
	return &avatarRepo{db: db, log: repoLog}
}

func (r *avatarRepo) Upsert(ctx context.Context, tx *gorm.DB, avatar *types.InstructorAvatar) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if avatar == nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(avatar).Error
}

func (r *avatarRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.InstructorAvatar, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.InstructorAvatar
	if len(names) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("name IN ?", names).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *avatarRepo) DeleteByNames(ctx context.Context, tx *gorm.DB, names []string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(names) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("name IN ?", names).
		Delete(&types.InstructorAvatar{}).Error
}
