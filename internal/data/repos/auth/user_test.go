package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/learnbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))

	alice := &types.User{
		ID:          uuid.New(),
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Role:        types.RoleInstructor,
	}
	bob := &types.User{
		ID:          uuid.New(),
		Email:       "bob@example.com",
		DisplayName: "Bob",
		Role:        types.RoleStudent,
	}

	created, err := repo.Create(ctx, tx, []*types.User{alice, bob})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Create: expected 2, got %d", len(created))
	}

	byEmail, err := repo.GetByEmails(ctx, tx, []string{"alice@example.com"})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(byEmail) != 1 || byEmail[0].ID != alice.ID {
		t.Fatalf("GetByEmails: expected alice, got %+v", byEmail)
	}

	byID, err := repo.GetByIDs(ctx, tx, []uuid.UUID{bob.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(byID) != 1 || byID[0].Email != "bob@example.com" {
		t.Fatalf("GetByIDs: expected bob, got %+v", byID)
	}

	if err := repo.BumpTokenVersion(ctx, tx, alice.ID); err != nil {
		t.Fatalf("BumpTokenVersion: %v", err)
	}
	bumped, err := repo.GetByIDs(ctx, tx, []uuid.UUID{alice.ID})
	if err != nil || len(bumped) != 1 {
		t.Fatalf("GetByIDs after bump: err=%v len=%d", err, len(bumped))
	}
	if bumped[0].TokenVersion != alice.TokenVersion+1 {
		t.Fatalf("BumpTokenVersion: expected %d, got %d", alice.TokenVersion+1, bumped[0].TokenVersion)
	}

	if dup, err := repo.Create(ctx, tx, []*types.User{{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Role:  types.RoleStudent,
	}}); err == nil {
		t.Fatalf("Create duplicate email: expected error, got %+v", dup)
	}
}
