package app

import (
	"gorm.io/gorm"

	authrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/auth"
	billingrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/billing"
	learningrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/learning"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type Repos struct {
	Users           authrepos.UserRepo
	RefreshSessions authrepos.RefreshSessionRepo
	OAuthStates     authrepos.OAuthStateRepo

	Courses       learningrepos.CourseRepo
	Modules       learningrepos.CourseModuleRepo
	Lessons       learningrepos.LessonRepo
	Enrollments   learningrepos.EnrollmentRepo
	Progress      learningrepos.LessonProgressRepo
	LessonContent learningrepos.LessonContentRepo

	Subscriptions billingrepos.SubscriptionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Users:           authrepos.NewUserRepo(db, log),
		RefreshSessions: authrepos.NewRefreshSessionRepo(db, log),
		OAuthStates:     authrepos.NewOAuthStateRepo(db, log),

		Courses:       learningrepos.NewCourseRepo(db, log),
		Modules:       learningrepos.NewCourseModuleRepo(db, log),
		Lessons:       learningrepos.NewLessonRepo(db, log),
		Enrollments:   learningrepos.NewEnrollmentRepo(db, log),
		Progress:      learningrepos.NewLessonProgressRepo(db, log),
		LessonContent: learningrepos.NewLessonContentRepo(db, log),

		Subscriptions: billingrepos.NewSubscriptionRepo(db, log),
	}
}
