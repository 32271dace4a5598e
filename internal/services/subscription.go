package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	authrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/auth"
	billingrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/billing"
	learningrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/learning"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

// LimitStatus reports one quota dimension. ExceededBy is zero while the
// user is under the limit.
type LimitStatus struct {
	Used       int64 `json:"used"`
	Limit      int64 `json:"limit"`
	ExceededBy int64 `json:"exceededBy"`
}

type SubscriptionStatus struct {
	Plan              string      `json:"plan"`
	CreatedCourses    LimitStatus `json:"createdCourses"`
	ActiveEnrollments LimitStatus `json:"activeEnrollments"`
	StorageBytes      LimitStatus `json:"storageBytes"`
	SoftLimitExceeded bool        `json:"softLimitExceeded"`
}

// SubscriptionService derives usage live from the domain store on every
// call. Limits are soft: nothing here ever blocks a write.
type SubscriptionService interface {
	Status(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error)
	SetPlan(ctx context.Context, principal *ctxutil.RequestData, userID uuid.UUID, plan string) (*types.Subscription, error)
}

type subscriptionService struct {
	log           *logger.Logger
	access        AccessService
	users         authrepos.UserRepo
	subscriptions billingrepos.SubscriptionRepo
	courses       learningrepos.CourseRepo
	enrollments   learningrepos.EnrollmentRepo
	content       learningrepos.LessonContentRepo
}

func NewSubscriptionService(
	log *logger.Logger,
	access AccessService,
	users authrepos.UserRepo,
	subscriptions billingrepos.SubscriptionRepo,
	courses learningrepos.CourseRepo,
	enrollments learningrepos.EnrollmentRepo,
	content learningrepos.LessonContentRepo,
) SubscriptionService {
	return &subscriptionService{
		log:           log.With("service", "SubscriptionService"),
		access:        access,
		users:         users,
		subscriptions: subscriptions,
		courses:       courses,
		enrollments:   enrollments,
		content:       content,
	}
}

func (ss *subscriptionService) Status(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error) {
	record, err := ss.subscriptions.GetOrCreate(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	limits := types.LimitsFor(record.Plan)

	createdCourses, err := ss.courses.CountByCreator(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	activeEnrollments, err := ss.enrollments.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	storageBytes, err := ss.content.SumSizeByOwner(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("sum storage: %w", err)
	}

	status := &SubscriptionStatus{
		Plan:              record.Plan,
		CreatedCourses:    limitStatus(createdCourses, limits.CreatedCourses),
		ActiveEnrollments: limitStatus(activeEnrollments, limits.ActiveEnrollments),
		StorageBytes:      limitStatus(storageBytes, limits.StorageBytes),
	}
	status.SoftLimitExceeded = status.CreatedCourses.ExceededBy > 0 ||
		status.ActiveEnrollments.ExceededBy > 0 ||
		status.StorageBytes.ExceededBy > 0
	return status, nil
}

func limitStatus(used, limit int64) LimitStatus {
	exceeded := used - limit
	if exceeded < 0 {
		exceeded = 0
	}
	return LimitStatus{Used: used, Limit: limit, ExceededBy: exceeded}
}

// SetPlan changes another user's plan. The role check ignores the
// payload entirely; a non-admin principal is rejected no matter whose
// id the body carries.
func (ss *subscriptionService) SetPlan(ctx context.Context, principal *ctxutil.RequestData, userID uuid.UUID, plan string) (*types.Subscription, error) {
	if err := ss.access.Require(principal, OpPlanChange); err != nil {
		return nil, err
	}
	if !types.ValidPlan(plan) {
		return nil, apierr.InvalidInput(fmt.Errorf("unknown plan %q", plan))
	}

	users, err := ss.users.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("user %s not found", userID))
	}

	record, err := ss.subscriptions.SetPlan(ctx, nil, userID, plan)
	if err != nil {
		return nil, fmt.Errorf("set plan: %w", err)
	}
	ss.log.Info("plan changed", "user_id", userID, "plan", plan, "by", principal.UserID)
	return record, nil
}
