package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	authrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/auth"
	learningrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/learning"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type ModuleSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Position    int    `json:"position"`
	LessonCount int    `json:"lessonCount"`
}

type StudentCompletion struct {
	EnrollmentID string `json:"enrollmentId"`
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Completed    int64  `json:"completed"`
	TotalLessons int64  `json:"totalLessons"`
	Percent      int    `json:"percent"`
}

type ProviderStorage struct {
	Provider   string `json:"provider"`
	FileCount  int64  `json:"fileCount"`
	TotalBytes int64  `json:"totalBytes"`
}

type DashboardView struct {
	CourseID    string              `json:"courseId"`
	Title       string              `json:"title"`
	Modules     []ModuleSummary     `json:"modules"`
	Students    []StudentCompletion `json:"students"`
	Storage     []ProviderStorage   `json:"storage"`
	Enrollments int                 `json:"enrollments"`
}

// DashboardService builds the instructor's aggregated course view. Every
// read goes through a course- or enrollment-scoped index; nothing here
// scans a whole table.
type DashboardService interface {
	Dashboard(ctx context.Context, principal *ctxutil.RequestData, courseID string) (*DashboardView, error)
}

type dashboardService struct {
	log         *logger.Logger
	access      AccessService
	learning    LearningService
	users       authrepos.UserRepo
	modules     learningrepos.CourseModuleRepo
	lessons     learningrepos.LessonRepo
	enrollments learningrepos.EnrollmentRepo
	progress    learningrepos.LessonProgressRepo
	content     learningrepos.LessonContentRepo
}

func NewDashboardService(
	log *logger.Logger,
	access AccessService,
	learning LearningService,
	users authrepos.UserRepo,
	modules learningrepos.CourseModuleRepo,
	lessons learningrepos.LessonRepo,
	enrollments learningrepos.EnrollmentRepo,
	progress learningrepos.LessonProgressRepo,
	content learningrepos.LessonContentRepo,
) DashboardService {
	return &dashboardService{
		log:         log.With("service", "DashboardService"),
		access:      access,
		learning:    learning,
		users:       users,
		modules:     modules,
		lessons:     lessons,
		enrollments: enrollments,
		progress:    progress,
		content:     content,
	}
}

func (ds *dashboardService) Dashboard(ctx context.Context, principal *ctxutil.RequestData, courseID string) (*DashboardView, error) {
	if err := ds.access.Require(principal, OpDashboardRead); err != nil {
		return nil, err
	}
	course, err := ds.learning.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := ds.access.RequireCourseOwner(principal, course); err != nil {
		return nil, err
	}

	modules, err := ds.modules.GetByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	moduleSummaries := make([]ModuleSummary, 0, len(modules))
	for _, module := range modules {
		lessons, err := ds.lessons.GetByModuleID(ctx, nil, module.ID)
		if err != nil {
			return nil, fmt.Errorf("list lessons: %w", err)
		}
		moduleSummaries = append(moduleSummaries, ModuleSummary{
			ID:          module.ID,
			Title:       module.Title,
			Position:    module.Position,
			LessonCount: len(lessons),
		})
	}

	enrollments, err := ds.enrollments.GetByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	userIDs := make([]uuid.UUID, 0, len(enrollments))
	for _, enrollment := range enrollments {
		userIDs = append(userIDs, enrollment.UserID)
	}
	students, err := ds.users.GetByIDs(ctx, nil, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	emailByID := make(map[uuid.UUID]string, len(students))
	for _, student := range students {
		emailByID[student.ID] = student.Email
	}

	completions := make([]StudentCompletion, 0, len(enrollments))
	for _, enrollment := range enrollments {
		total, completed, err := ds.progress.CountByEnrollment(ctx, nil, enrollment.ID)
		if err != nil {
			return nil, fmt.Errorf("count progress: %w", err)
		}
		completions = append(completions, StudentCompletion{
			EnrollmentID: enrollment.ID,
			UserID:       enrollment.UserID.String(),
			Email:        emailByID[enrollment.UserID],
			Completed:    completed,
			TotalLessons: total,
			Percent:      completionPercent(completed, total),
		})
	}

	usage, err := ds.content.UsageByProviderForCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("storage usage: %w", err)
	}
	providerStorage := make([]ProviderStorage, 0, len(usage))
	for _, u := range usage {
		providerStorage = append(providerStorage, ProviderStorage{
			Provider:   u.Provider,
			FileCount:  u.FileCount,
			TotalBytes: u.TotalBytes,
		})
	}

	return &DashboardView{
		CourseID:    course.ID,
		Title:       course.Title,
		Modules:     moduleSummaries,
		Students:    completions,
		Storage:     providerStorage,
		Enrollments: len(enrollments),
	}, nil
}
