package learning

import (
	"context"

	"gorm.io/gorm"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*types.Lesson, error)
	GetByModuleID(ctx context.Context, tx *gorm.DB, moduleID string) ([]*types.Lesson, error)
	// GetByCourseID walks lesson -> course_module so callers never scan the
	// whole lesson table.
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.Lesson, error)
	CountByCourseID(ctx context.Context, tx *gorm.DB, courseID string) (int64, error)
	PositionTaken(ctx context.Context, tx *gorm.DB, moduleID string, position int) (bool, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	repoLog := baseLog.With("repo", "LessonRepo")
	return &lessonRepo{db: db, log: repoLog}
}

func (lr *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&lessons).Error; err != nil {
		return nil, err
	}

	return lessons, nil
}

func (lr *lessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []string) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Lesson

	if len(lessonIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", lessonIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (lr *lessonRepo) GetByModuleID(ctx context.Context, tx *gorm.DB, moduleID string) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Lesson
	if err := transaction.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (lr *lessonRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Lesson
	if err := transaction.WithContext(ctx).
		Joins("JOIN course_module ON course_module.id = lesson.module_id").
		Where("course_module.course_id = ?", courseID).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (lr *lessonRepo) CountByCourseID(ctx context.Context, tx *gorm.DB, courseID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Joins("JOIN course_module ON course_module.id = lesson.module_id").
		Where("course_module.course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (lr *lessonRepo) PositionTaken(ctx context.Context, tx *gorm.DB, moduleID string, position int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Where("module_id = ? AND position = ?", moduleID, position).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
