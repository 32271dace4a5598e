package billing

import (
	"context"
	"testing"

	"github.com/yungbote/learnbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
)

func TestSubscriptionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSubscriptionRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "billing@example.com", types.RoleStudent)

	record, err := repo.GetOrCreate(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if record.Plan != types.PlanFree {
		t.Fatalf("GetOrCreate: expected free default, got %q", record.Plan)
	}

	// Second call finds the same row rather than inserting.
	again, err := repo.GetOrCreate(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if again.UserID != record.UserID || again.Plan != types.PlanFree {
		t.Fatalf("GetOrCreate again: got %+v", again)
	}

	updated, err := repo.SetPlan(ctx, tx, user.ID, types.PlanPro)
	if err != nil {
		t.Fatalf("SetPlan: %v", err)
	}
	if updated.Plan != types.PlanPro {
		t.Fatalf("SetPlan: expected pro, got %q", updated.Plan)
	}

	reloaded, err := repo.GetOrCreate(ctx, tx, user.ID)
	if err != nil || reloaded.Plan != types.PlanPro {
		t.Fatalf("GetOrCreate after SetPlan: err=%v plan=%q", err, reloaded.Plan)
	}
}
