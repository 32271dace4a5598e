package learning

import (
	"context"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type LessonProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.LessonProgress) ([]*types.LessonProgress, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.LessonProgress, error)
	GetByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID string) ([]*types.LessonProgress, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id, status string, completedAt *time.Time) error
	CountByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID string) (total int64, completed int64, err error)
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	repoLog := baseLog.With("repo", "LessonProgressRepo")
	return &lessonProgressRepo{db: db, log: repoLog}
}

func (lpr *lessonProgressRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.LessonProgress) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	if len(rows) == 0 {
		return []*types.LessonProgress{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (lpr *lessonProgressRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	var results []*types.LessonProgress
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (lpr *lessonProgressRepo) GetByEnrollmentID(ctx context.Context, tx *gorm.DB, enrollmentID string) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	var results []*types.LessonProgress
	if err := transaction.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (lpr *lessonProgressRepo) SetStatus(ctx context.Context, tx *gorm.DB, id, status string, completedAt *time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.LessonProgress{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (lpr *lessonProgressRepo) CountByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID string) (int64, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.LessonProgress{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var completed int64
	if err := transaction.WithContext(ctx).
		Model(&types.LessonProgress{}).
		Where("enrollment_id = ? AND status = ?", enrollmentID, types.ProgressCompleted).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}

	return total, completed, nil
}
