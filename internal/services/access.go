package services

import (
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
)

// Operation names a guarded action. Handlers and services use these,
// never raw role strings.
type Operation string

const (
	OpCourseCreate     Operation = "course.create"
	OpModuleCreate     Operation = "module.create"
	OpLessonCreate     Operation = "lesson.create"
	OpEnrollmentCreate Operation = "enrollment.create"
	OpProgressWrite    Operation = "progress.write"
	OpCompletionRead   Operation = "completion.read"
	OpContentWrite     Operation = "content.write"
	OpContentURLRead   Operation = "content_url.read"
	OpContentVerify    Operation = "content_url.verify"
	OpDashboardRead    Operation = "dashboard.read"
	OpSubscriptionRead Operation = "subscription.read"
	OpPlanChange       Operation = "plan.change"
)

// permissions is the static operation -> allowed-roles table. Ownership
// is layered on top by the predicate methods below.
var permissions = map[Operation][]string{
	OpCourseCreate:     {types.RoleAdmin, types.RoleInstructor},
	OpModuleCreate:     {types.RoleAdmin, types.RoleInstructor},
	OpLessonCreate:     {types.RoleAdmin, types.RoleInstructor},
	OpEnrollmentCreate: {types.RoleAdmin, types.RoleInstructor, types.RoleStudent},
	OpProgressWrite:    {types.RoleStudent},
	OpCompletionRead:   {types.RoleAdmin, types.RoleInstructor, types.RoleStudent},
	OpContentWrite:     {types.RoleAdmin, types.RoleInstructor},
	OpContentURLRead:   {types.RoleAdmin, types.RoleInstructor, types.RoleStudent},
	OpContentVerify:    {types.RoleAdmin, types.RoleInstructor, types.RoleStudent},
	OpDashboardRead:    {types.RoleAdmin, types.RoleInstructor},
	OpSubscriptionRead: {types.RoleAdmin, types.RoleInstructor, types.RoleStudent},
	OpPlanChange:       {types.RoleAdmin},
}

// AccessService decides allow/deny. It never touches the database:
// callers load the entities the predicates need.
type AccessService interface {
	Require(principal *ctxutil.RequestData, op Operation) error
	// RequireCourseOwner passes admins through and requires
	// course.CreatedBy == principal for instructors.
	RequireCourseOwner(principal *ctxutil.RequestData, course *types.Course) error
	// RequireSelf rejects a student acting on another user's behalf.
	// Admins and instructors pass.
	RequireSelf(principal *ctxutil.RequestData, userID uuid.UUID) error
	// RequireEnrollmentOwner admits the enrolled student; everyone else
	// is denied.
	RequireEnrollmentOwner(principal *ctxutil.RequestData, enrollment *types.Enrollment) error
}

type accessService struct{}

func NewAccessService() AccessService {
	return &accessService{}
}

func (s *accessService) Require(principal *ctxutil.RequestData, op Operation) error {
	if principal == nil {
		return apierr.Unauthenticated(fmt.Errorf("no principal"))
	}
	allowed, ok := permissions[op]
	if !ok {
		return apierr.AccessDenied(fmt.Errorf("unknown operation %q", op))
	}
	for _, role := range allowed {
		if role == principal.Role {
			return nil
		}
	}
	return apierr.AccessDenied(fmt.Errorf("role %s may not %s", principal.Role, op))
}

func (s *accessService) RequireCourseOwner(principal *ctxutil.RequestData, course *types.Course) error {
	if principal == nil {
		return apierr.Unauthenticated(fmt.Errorf("no principal"))
	}
	if principal.Role == types.RoleAdmin {
		return nil
	}
	if course == nil {
		return apierr.NotFound(fmt.Errorf("course not found"))
	}
	if course.CreatedBy != principal.UserID {
		return apierr.AccessDenied(fmt.Errorf("course %s is not owned by principal", course.ID))
	}
	return nil
}

func (s *accessService) RequireSelf(principal *ctxutil.RequestData, userID uuid.UUID) error {
	if principal == nil {
		return apierr.Unauthenticated(fmt.Errorf("no principal"))
	}
	if principal.Role == types.RoleAdmin || principal.Role == types.RoleInstructor {
		return nil
	}
	if principal.UserID != userID {
		return apierr.AccessDenied(fmt.Errorf("students may only act on their own behalf"))
	}
	return nil
}

func (s *accessService) RequireEnrollmentOwner(principal *ctxutil.RequestData, enrollment *types.Enrollment) error {
	if principal == nil {
		return apierr.Unauthenticated(fmt.Errorf("no principal"))
	}
	if enrollment == nil {
		return apierr.NotFound(fmt.Errorf("enrollment not found"))
	}
	if enrollment.UserID != principal.UserID {
		return apierr.AccessDenied(fmt.Errorf("enrollment %s is not owned by principal", enrollment.ID))
	}
	return nil
}
