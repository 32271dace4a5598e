package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
)

func TestSubscriptionStatusDefaults(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	student := seedPrincipal(t, stack, "ss-student@example.com", types.RoleStudent)

	status, err := stack.subscriptions.Status(ctx, student.UserID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Plan != types.PlanFree {
		t.Fatalf("Status: expected free plan, got %q", status.Plan)
	}
	if status.SoftLimitExceeded {
		t.Fatalf("fresh user should not exceed limits: %+v", status)
	}
	free := types.LimitsFor(types.PlanFree)
	if status.CreatedCourses.Limit != free.CreatedCourses || status.StorageBytes.Limit != free.StorageBytes {
		t.Fatalf("Status limits: got %+v", status)
	}
}

func TestSubscriptionSoftLimitExceeded(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	instructor := seedPrincipal(t, stack, "sl-instructor@example.com", types.RoleInstructor)

	// The free plan allows two created courses; a third still succeeds
	// and flips the soft-limit signal instead of failing.
	mustCourse(t, stack, instructor, "c1")
	mustCourse(t, stack, instructor, "c2")
	mustCourse(t, stack, instructor, "c3")

	status, err := stack.subscriptions.Status(ctx, instructor.UserID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.SoftLimitExceeded {
		t.Fatalf("expected soft limit exceeded: %+v", status)
	}
	if status.CreatedCourses.Used != 3 || status.CreatedCourses.ExceededBy != 1 {
		t.Fatalf("createdCourses: %+v", status.CreatedCourses)
	}
}

func TestSubscriptionUsageFollowsUpgrade(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	admin := seedPrincipal(t, stack, "su-admin@example.com", types.RoleAdmin)
	instructor := seedPrincipal(t, stack, "su-instructor@example.com", types.RoleInstructor)

	mustCourse(t, stack, instructor, "c1")
	mustCourse(t, stack, instructor, "c2")
	mustCourse(t, stack, instructor, "c3")

	if _, err := stack.subscriptions.SetPlan(ctx, admin, instructor.UserID, types.PlanPro); err != nil {
		t.Fatalf("SetPlan: %v", err)
	}

	status, err := stack.subscriptions.Status(ctx, instructor.UserID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Plan != types.PlanPro || status.SoftLimitExceeded {
		t.Fatalf("after upgrade: %+v", status)
	}
}

func TestSetPlanRequiresAdmin(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	admin := seedPrincipal(t, stack, "sp-admin@example.com", types.RoleAdmin)
	student := seedPrincipal(t, stack, "sp-student@example.com", types.RoleStudent)

	// A non-admin cannot change any plan, including their own, no
	// matter what the payload says.
	_, err := stack.subscriptions.SetPlan(ctx, student, student.UserID, types.PlanEnterprise)
	if !apierr.HasCode(err, apierr.CodeAccessDenied) {
		t.Fatalf("student SetPlan: expected access_denied, got %v", err)
	}

	_, err = stack.subscriptions.SetPlan(ctx, admin, student.UserID, "platinum")
	if !apierr.HasCode(err, apierr.CodeInvalidInput) {
		t.Fatalf("unknown plan: expected invalid_input, got %v", err)
	}

	_, err = stack.subscriptions.SetPlan(ctx, admin, uuid.New(), types.PlanPro)
	if !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("unknown user: expected not_found, got %v", err)
	}

	record, err := stack.subscriptions.SetPlan(ctx, admin, student.UserID, types.PlanEnterprise)
	if err != nil {
		t.Fatalf("admin SetPlan: %v", err)
	}
	if record.Plan != types.PlanEnterprise {
		t.Fatalf("SetPlan: got %+v", record)
	}
}
