package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

// ProviderUsage is one dashboard storage row: bytes attached under a course,
// grouped by storage provider.
type ProviderUsage struct {
	Provider   string `json:"provider"`
	FileCount  int64  `json:"fileCount"`
	TotalBytes int64  `json:"totalBytes"`
}

type LessonContentRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, content *types.LessonContent) error
	GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID string) (*types.LessonContent, error)
	// SumSizeByOwner totals attached bytes across every lesson under courses
	// the user created, walking content -> lesson -> module -> course.
	SumSizeByOwner(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	UsageByProviderForCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]ProviderUsage, error)
}

type lessonContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonContentRepo(db *gorm.DB, baseLog *logger.Logger) LessonContentRepo {
	repoLog := baseLog.With("repo", "LessonContentRepo")
	return &lessonContentRepo{db: db, log: repoLog}
}

func (lcr *lessonContentRepo) Upsert(ctx context.Context, tx *gorm.DB, content *types.LessonContent) error {
	transaction := tx
	if transaction == nil {
		transaction = lcr.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}},
			UpdateAll: true,
		}).
		Create(content).Error
}

func (lcr *lessonContentRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID string) (*types.LessonContent, error) {
	transaction := tx
	if transaction == nil {
		transaction = lcr.db
	}

	var results []*types.LessonContent
	if err := transaction.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (lcr *lessonContentRepo) SumSizeByOwner(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = lcr.db
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.LessonContent{}).
		Select("COALESCE(SUM(lesson_content.size), 0)").
		Joins("JOIN lesson ON lesson.id = lesson_content.lesson_id").
		Joins("JOIN course_module ON course_module.id = lesson.module_id").
		Joins("JOIN course ON course.id = course_module.course_id").
		Where("course.created_by = ?", userID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (lcr *lessonContentRepo) UsageByProviderForCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]ProviderUsage, error) {
	transaction := tx
	if transaction == nil {
		transaction = lcr.db
	}

	var rows []ProviderUsage
	if err := transaction.WithContext(ctx).
		Model(&types.LessonContent{}).
		Select("lesson_content.provider AS provider, COUNT(*) AS file_count, COALESCE(SUM(lesson_content.size), 0) AS total_bytes").
		Joins("JOIN lesson ON lesson.id = lesson_content.lesson_id").
		Joins("JOIN course_module ON course_module.id = lesson.module_id").
		Where("course_module.course_id = ?", courseID).
		Group("lesson_content.provider").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
