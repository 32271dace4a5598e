package learning

import (
	"context"

	"gorm.io/gorm"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type CourseModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, modules []*types.CourseModule) ([]*types.CourseModule, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) ([]*types.CourseModule, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.CourseModule, error)
	PositionTaken(ctx context.Context, tx *gorm.DB, courseID string, position int) (bool, error)
}

type courseModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	repoLog := baseLog.With("repo", "CourseModuleRepo")
	return &courseModuleRepo{db: db, log: repoLog}
}

func (cmr *courseModuleRepo) Create(ctx context.Context, tx *gorm.DB, modules []*types.CourseModule) ([]*types.CourseModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	if len(modules) == 0 {
		return []*types.CourseModule{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&modules).Error; err != nil {
		return nil, err
	}

	return modules, nil
}

func (cmr *courseModuleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, moduleIDs []string) ([]*types.CourseModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	var results []*types.CourseModule

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

func (cmr *courseModuleRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.CourseModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	var results []*types.CourseModule
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (cmr *courseModuleRepo) PositionTaken(ctx context.Context, tx *gorm.DB, courseID string, position int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CourseModule{}).
		Where("course_id = ? AND position = ?", courseID, position).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
