package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []string) ([]*types.Enrollment, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.Enrollment, error)
	GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID string, userID uuid.UUID) (*types.Enrollment, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (er *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if len(enrollments) == 0 {
		return []*types.Enrollment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (er *enrollmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []string) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.Enrollment

	if len(enrollmentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", enrollmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (er *enrollmentRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.Enrollment
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (er *enrollmentRepo) GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID string, userID uuid.UUID) (*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.Enrollment
	if err := transaction.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (er *enrollmentRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
