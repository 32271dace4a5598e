package domain

import (
	"github.com/yungbote/learnbridge-backend/internal/domain/auth"
	"github.com/yungbote/learnbridge-backend/internal/domain/billing"
	"github.com/yungbote/learnbridge-backend/internal/domain/learning"
	"github.com/yungbote/learnbridge-backend/internal/domain/user"
)

type (
	User           = user.User
	OAuthState     = auth.OAuthState
	RefreshSession = auth.RefreshSession
	Course         = learning.Course
	CourseModule   = learning.CourseModule
	Lesson         = learning.Lesson
	Enrollment     = learning.Enrollment
	LessonProgress = learning.LessonProgress
	LessonContent  = learning.LessonContent
	Subscription   = billing.Subscription
	PlanLimits     = billing.PlanLimits
)

const (
	RoleAdmin      = user.RoleAdmin
	RoleInstructor = user.RoleInstructor
	RoleStudent    = user.RoleStudent

	ProgressNotStarted = learning.ProgressNotStarted
	ProgressInProgress = learning.ProgressInProgress
	ProgressCompleted  = learning.ProgressCompleted

	PlanFree       = billing.PlanFree
	PlanPro        = billing.PlanPro
	PlanEnterprise = billing.PlanEnterprise
)

var (
	ValidRole           = user.ValidRole
	ValidProgressStatus = learning.ValidProgressStatus
	ValidPlan           = billing.ValidPlan
	LimitsFor           = billing.LimitsFor
	ProgressID          = learning.ProgressID
)
