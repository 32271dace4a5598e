package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	authrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/auth"
	learningrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/learning"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type CreateCourseInput struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
}

type CreateModuleInput struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type CreateLessonInput struct {
	ID       string         `json:"id"`
	ModuleID string         `json:"moduleId"`
	Title    string         `json:"title"`
	Position int            `json:"position"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
}

type CreateEnrollmentInput struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
}

type UpdateProgressInput struct {
	EnrollmentID string `json:"enrollmentId"`
	LessonID     string `json:"lessonId"`
	Status       string `json:"status"`
}

type CompletionResult struct {
	EnrollmentID string `json:"enrollmentId"`
	TotalLessons int64  `json:"totalLessons"`
	Completed    int64  `json:"completed"`
	Percent      int    `json:"percent"`
}

// LearningService owns the course graph and its write-path invariants:
// referential checks before insert, positional uniqueness, and progress
// fan-out inside the same transaction as the triggering insert.
type LearningService interface {
	CreateCourse(ctx context.Context, principal *ctxutil.RequestData, input CreateCourseInput) (*types.Course, error)
	CreateModule(ctx context.Context, principal *ctxutil.RequestData, input CreateModuleInput) (*types.CourseModule, error)
	CreateLesson(ctx context.Context, principal *ctxutil.RequestData, input CreateLessonInput) (*types.Lesson, error)
	CreateEnrollment(ctx context.Context, principal *ctxutil.RequestData, input CreateEnrollmentInput) (*types.Enrollment, error)
	UpdateProgress(ctx context.Context, principal *ctxutil.RequestData, input UpdateProgressInput, now time.Time) (*types.LessonProgress, error)
	Completion(ctx context.Context, principal *ctxutil.RequestData, enrollmentID string) (*CompletionResult, error)

	// Lookups shared with the content and dashboard services.
	GetCourse(ctx context.Context, courseID string) (*types.Course, error)
	CourseForLesson(ctx context.Context, lessonID string) (*types.Lesson, *types.Course, error)
	EnrollmentFor(ctx context.Context, courseID string, userID uuid.UUID) (*types.Enrollment, error)
}

type learningService struct {
	log         *logger.Logger
	db          *gorm.DB
	access      AccessService
	users       authrepos.UserRepo
	courses     learningrepos.CourseRepo
	modules     learningrepos.CourseModuleRepo
	lessons     learningrepos.LessonRepo
	enrollments learningrepos.EnrollmentRepo
	progress    learningrepos.LessonProgressRepo
}

func NewLearningService(
	log *logger.Logger,
	db *gorm.DB,
	access AccessService,
	users authrepos.UserRepo,
	courses learningrepos.CourseRepo,
	modules learningrepos.CourseModuleRepo,
	lessons learningrepos.LessonRepo,
	enrollments learningrepos.EnrollmentRepo,
	progress learningrepos.LessonProgressRepo,
) LearningService {
	return &learningService{
		log:         log.With("service", "LearningService"),
		db:          db,
		access:      access,
		users:       users,
		courses:     courses,
		modules:     modules,
		lessons:     lessons,
		enrollments: enrollments,
		progress:    progress,
	}
}

func (ls *learningService) CreateCourse(ctx context.Context, principal *ctxutil.RequestData, input CreateCourseInput) (*types.Course, error) {
	if err := ls.access.Require(principal, OpCourseCreate); err != nil {
		return nil, err
	}
	if input.ID == "" || input.Title == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("id and title are required"))
	}

	existing, err := ls.courses.GetByIDs(ctx, nil, []string{input.ID})
	if err != nil {
		return nil, fmt.Errorf("lookup course: %w", err)
	}
	if len(existing) > 0 {
		return nil, apierr.Duplicate(fmt.Errorf("course %s already exists", input.ID))
	}

	course := &types.Course{
		ID:        input.ID,
		Title:     input.Title,
		CreatedBy: principal.UserID,
		Metadata:  input.Metadata,
	}
	if _, err := ls.courses.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, translateWriteErr(err, "course", input.ID)
	}
	return course, nil
}

func (ls *learningService) CreateModule(ctx context.Context, principal *ctxutil.RequestData, input CreateModuleInput) (*types.CourseModule, error) {
	if err := ls.access.Require(principal, OpModuleCreate); err != nil {
		return nil, err
	}
	if input.ID == "" || input.CourseID == "" || input.Title == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("id, courseId and title are required"))
	}
	if input.Position <= 0 {
		return nil, apierr.InvalidInput(fmt.Errorf("position must be positive"))
	}

	course, err := ls.GetCourse(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	if err := ls.access.RequireCourseOwner(principal, course); err != nil {
		return nil, err
	}

	existing, err := ls.modules.GetByIDs(ctx, nil, []string{input.ID})
	if err != nil {
		return nil, fmt.Errorf("lookup module: %w", err)
	}
	if len(existing) > 0 {
		return nil, apierr.Duplicate(fmt.Errorf("module %s already exists", input.ID))
	}
	taken, err := ls.modules.PositionTaken(ctx, nil, input.CourseID, input.Position)
	if err != nil {
		return nil, fmt.Errorf("check module position: %w", err)
	}
	if taken {
		return nil, apierr.Duplicate(fmt.Errorf("position %d already used in course %s", input.Position, input.CourseID))
	}

	module := &types.CourseModule{
		ID:       input.ID,
		CourseID: input.CourseID,
		Title:    input.Title,
		Position: input.Position,
	}
	if _, err := ls.modules.Create(ctx, nil, []*types.CourseModule{module}); err != nil {
		return nil, translateWriteErr(err, "module", input.ID)
	}
	return module, nil
}

// CreateLesson inserts the lesson and fans a not_started progress row
// out to every existing enrollment in its course, in one transaction.
func (ls *learningService) CreateLesson(ctx context.Context, principal *ctxutil.RequestData, input CreateLessonInput) (*types.Lesson, error) {
	if err := ls.access.Require(principal, OpLessonCreate); err != nil {
		return nil, err
	}
	if input.ID == "" || input.ModuleID == "" || input.Title == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("id, moduleId and title are required"))
	}
	if input.Position <= 0 {
		return nil, apierr.InvalidInput(fmt.Errorf("position must be positive"))
	}

	modules, err := ls.modules.GetByIDs(ctx, nil, []string{input.ModuleID})
	if err != nil {
		return nil, fmt.Errorf("lookup module: %w", err)
	}
	if len(modules) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("module %s not found", input.ModuleID))
	}
	module := modules[0]

	course, err := ls.GetCourse(ctx, module.CourseID)
	if err != nil {
		return nil, err
	}
	if err := ls.access.RequireCourseOwner(principal, course); err != nil {
		return nil, err
	}

	existing, err := ls.lessons.GetByIDs(ctx, nil, []string{input.ID})
	if err != nil {
		return nil, fmt.Errorf("lookup lesson: %w", err)
	}
	if len(existing) > 0 {
		return nil, apierr.Duplicate(fmt.Errorf("lesson %s already exists", input.ID))
	}
	taken, err := ls.lessons.PositionTaken(ctx, nil, input.ModuleID, input.Position)
	if err != nil {
		return nil, fmt.Errorf("check lesson position: %w", err)
	}
	if taken {
		return nil, apierr.Duplicate(fmt.Errorf("position %d already used in module %s", input.Position, input.ModuleID))
	}

	lesson := &types.Lesson{
		ID:       input.ID,
		ModuleID: input.ModuleID,
		Title:    input.Title,
		Position: input.Position,
		Metadata: input.Metadata,
	}
	txErr := ls.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ls.lessons.Create(ctx, tx, []*types.Lesson{lesson}); err != nil {
			return translateWriteErr(err, "lesson", input.ID)
		}
		enrollments, err := ls.enrollments.GetByCourseID(ctx, tx, course.ID)
		if err != nil {
			return fmt.Errorf("list enrollments: %w", err)
		}
		rows := make([]*types.LessonProgress, 0, len(enrollments))
		for _, enrollment := range enrollments {
			rows = append(rows, &types.LessonProgress{
				ID:           types.ProgressID(enrollment.ID, lesson.ID),
				EnrollmentID: enrollment.ID,
				LessonID:     lesson.ID,
				Status:       types.ProgressNotStarted,
			})
		}
		if _, err := ls.progress.Create(ctx, tx, rows); err != nil {
			return fmt.Errorf("fan out progress: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return lesson, nil
}

// CreateEnrollment mirrors CreateLesson's fan-out: one not_started
// progress row per lesson already in the course.
func (ls *learningService) CreateEnrollment(ctx context.Context, principal *ctxutil.RequestData, input CreateEnrollmentInput) (*types.Enrollment, error) {
	if err := ls.access.Require(principal, OpEnrollmentCreate); err != nil {
		return nil, err
	}
	if input.ID == "" || input.CourseID == "" || input.UserID == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("id, courseId and userId are required"))
	}
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return nil, apierr.InvalidInput(fmt.Errorf("userId must be a valid id"))
	}
	if err := ls.access.RequireSelf(principal, userID); err != nil {
		return nil, err
	}

	if _, err := ls.GetCourse(ctx, input.CourseID); err != nil {
		return nil, err
	}
	users, err := ls.users.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("user %s not found", userID))
	}

	existing, err := ls.enrollments.GetByIDs(ctx, nil, []string{input.ID})
	if err != nil {
		return nil, fmt.Errorf("lookup enrollment: %w", err)
	}
	if len(existing) > 0 {
		return nil, apierr.Duplicate(fmt.Errorf("enrollment %s already exists", input.ID))
	}
	pair, err := ls.enrollments.GetByCourseAndUser(ctx, nil, input.CourseID, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup enrollment pair: %w", err)
	}
	if pair != nil {
		return nil, apierr.Duplicate(fmt.Errorf("user %s already enrolled in course %s", userID, input.CourseID))
	}

	enrollment := &types.Enrollment{
		ID:         input.ID,
		CourseID:   input.CourseID,
		UserID:     userID,
		EnrolledAt: time.Now().UTC(),
	}
	txErr := ls.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ls.enrollments.Create(ctx, tx, []*types.Enrollment{enrollment}); err != nil {
			return translateWriteErr(err, "enrollment", input.ID)
		}
		lessons, err := ls.lessons.GetByCourseID(ctx, tx, input.CourseID)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		rows := make([]*types.LessonProgress, 0, len(lessons))
		for _, lesson := range lessons {
			rows = append(rows, &types.LessonProgress{
				ID:           types.ProgressID(enrollment.ID, lesson.ID),
				EnrollmentID: enrollment.ID,
				LessonID:     lesson.ID,
				Status:       types.ProgressNotStarted,
			})
		}
		if _, err := ls.progress.Create(ctx, tx, rows); err != nil {
			return fmt.Errorf("fan out progress: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return enrollment, nil
}

// UpdateProgress mutates an existing fan-out row. A missing row means
// the lesson is outside the enrollment's course; it is never created
// here.
func (ls *learningService) UpdateProgress(ctx context.Context, principal *ctxutil.RequestData, input UpdateProgressInput, now time.Time) (*types.LessonProgress, error) {
	if err := ls.access.Require(principal, OpProgressWrite); err != nil {
		return nil, err
	}
	if input.EnrollmentID == "" || input.LessonID == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("enrollmentId and lessonId are required"))
	}
	if !types.ValidProgressStatus(input.Status) {
		return nil, apierr.InvalidInput(fmt.Errorf("unknown status %q", input.Status))
	}

	enrollments, err := ls.enrollments.GetByIDs(ctx, nil, []string{input.EnrollmentID})
	if err != nil {
		return nil, fmt.Errorf("lookup enrollment: %w", err)
	}
	if len(enrollments) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("enrollment %s not found", input.EnrollmentID))
	}
	if err := ls.access.RequireEnrollmentOwner(principal, enrollments[0]); err != nil {
		return nil, err
	}

	progressID := types.ProgressID(input.EnrollmentID, input.LessonID)
	row, err := ls.progress.GetByID(ctx, nil, progressID)
	if err != nil {
		return nil, fmt.Errorf("lookup progress: %w", err)
	}
	if row == nil {
		return nil, apierr.InvalidRelation(fmt.Errorf("lesson %s is not part of enrollment %s", input.LessonID, input.EnrollmentID))
	}

	var completedAt *time.Time
	if input.Status == types.ProgressCompleted {
		completedAt = &now
	}
	if err := ls.progress.SetStatus(ctx, nil, progressID, input.Status, completedAt); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}

	row.Status = input.Status
	row.CompletedAt = completedAt
	return row, nil
}

func (ls *learningService) Completion(ctx context.Context, principal *ctxutil.RequestData, enrollmentID string) (*CompletionResult, error) {
	if err := ls.access.Require(principal, OpCompletionRead); err != nil {
		return nil, err
	}

	enrollments, err := ls.enrollments.GetByIDs(ctx, nil, []string{enrollmentID})
	if err != nil {
		return nil, fmt.Errorf("lookup enrollment: %w", err)
	}
	if len(enrollments) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("enrollment %s not found", enrollmentID))
	}
	enrollment := enrollments[0]

	switch principal.Role {
	case types.RoleAdmin:
	case types.RoleInstructor:
		course, err := ls.GetCourse(ctx, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		if err := ls.access.RequireCourseOwner(principal, course); err != nil {
			return nil, err
		}
	default:
		if err := ls.access.RequireEnrollmentOwner(principal, enrollment); err != nil {
			return nil, err
		}
	}

	total, completed, err := ls.progress.CountByEnrollment(ctx, nil, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("count progress: %w", err)
	}
	return &CompletionResult{
		EnrollmentID: enrollmentID,
		TotalLessons: total,
		Completed:    completed,
		Percent:      completionPercent(completed, total),
	}, nil
}

func completionPercent(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

func (ls *learningService) GetCourse(ctx context.Context, courseID string) (*types.Course, error) {
	courses, err := ls.courses.GetByIDs(ctx, nil, []string{courseID})
	if err != nil {
		return nil, fmt.Errorf("lookup course: %w", err)
	}
	if len(courses) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("course %s not found", courseID))
	}
	return courses[0], nil
}

// CourseForLesson walks lesson -> module -> course; ownership checks on
// lessons all go through here.
func (ls *learningService) CourseForLesson(ctx context.Context, lessonID string) (*types.Lesson, *types.Course, error) {
	lessons, err := ls.lessons.GetByIDs(ctx, nil, []string{lessonID})
	if err != nil {
		return nil, nil, fmt.Errorf("lookup lesson: %w", err)
	}
	if len(lessons) == 0 {
		return nil, nil, apierr.NotFound(fmt.Errorf("lesson %s not found", lessonID))
	}
	lesson := lessons[0]

	modules, err := ls.modules.GetByIDs(ctx, nil, []string{lesson.ModuleID})
	if err != nil {
		return nil, nil, fmt.Errorf("lookup module: %w", err)
	}
	if len(modules) == 0 {
		return nil, nil, apierr.NotFound(fmt.Errorf("module %s not found", lesson.ModuleID))
	}
	course, err := ls.GetCourse(ctx, modules[0].CourseID)
	if err != nil {
		return nil, nil, err
	}
	return lesson, course, nil
}

func (ls *learningService) EnrollmentFor(ctx context.Context, courseID string, userID uuid.UUID) (*types.Enrollment, error) {
	return ls.enrollments.GetByCourseAndUser(ctx, nil, courseID, userID)
}

// translateWriteErr turns the unique-index backstop into the same
// conflict error the pre-insert checks produce, so concurrent writers
// racing past those checks still see a clean conflict.
func translateWriteErr(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierr.Duplicate(fmt.Errorf("%s %s already exists", entity, id))
	}
	return fmt.Errorf("create %s: %w", entity, err)
}
