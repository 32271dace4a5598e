package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
)

func TestRefreshSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewRefreshSessionRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "sessions@example.com", types.RoleStudent)

	now := time.Now().UTC()
	first := &types.RefreshSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "hash-one",
		ExpiresAt: now.Add(24 * time.Hour),
	}
	second := &types.RefreshSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "hash-two",
		ExpiresAt: now.Add(24 * time.Hour),
	}
	if _, err := repo.Create(ctx, tx, []*types.RefreshSession{first, second}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	loaded, err := repo.GetByID(ctx, tx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if loaded == nil || loaded.TokenHash != "hash-one" {
		t.Fatalf("GetByID: got %+v", loaded)
	}
	if loaded.RevokedAt != nil {
		t.Fatalf("GetByID: fresh session should not be revoked")
	}

	if missing, err := repo.GetByID(ctx, tx, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v session=%+v", err, missing)
	}

	won, err := repo.CompareAndRevoke(ctx, tx, first.ID, now)
	if err != nil {
		t.Fatalf("CompareAndRevoke: %v", err)
	}
	if !won {
		t.Fatalf("CompareAndRevoke: first call should win")
	}
	wonAgain, err := repo.CompareAndRevoke(ctx, tx, first.ID, now)
	if err != nil {
		t.Fatalf("CompareAndRevoke second: %v", err)
	}
	if wonAgain {
		t.Fatalf("CompareAndRevoke: second call must lose")
	}

	if err := repo.RevokeByUserID(ctx, tx, user.ID, now); err != nil {
		t.Fatalf("RevokeByUserID: %v", err)
	}
	remaining, err := repo.GetByID(ctx, tx, second.ID)
	if err != nil {
		t.Fatalf("GetByID after revoke-all: %v", err)
	}
	if remaining.RevokedAt == nil {
		t.Fatalf("RevokeByUserID: second session should be revoked")
	}
	if remaining.Active(now) {
		t.Fatalf("Active: revoked session must not be active")
	}
}

func TestRefreshSessionConcurrentRotation(t *testing.T) {
	db := testutil.DB(t)

	ctx := context.Background()
	repo := NewRefreshSessionRepo(db, testutil.Logger(t))

	// The rotation sequence (row lock, liveness check, compare-and-revoke)
	// needs real concurrent transactions, so this test writes through the
	// pool and cleans up after itself.
	user := testutil.SeedUser(t, ctx, db, "rotation-race-"+uuid.NewString()+"@example.com", types.RoleStudent)
	session := &types.RefreshSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "hash-race",
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}
	if _, err := repo.Create(ctx, db, []*types.RefreshSession{session}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		db.WithContext(ctx).Where("id = ?", session.ID).Delete(&types.RefreshSession{})
		db.WithContext(ctx).Where("id = ?", user.ID).Delete(&types.User{})
	})

	errAlreadyRotated := errors.New("already rotated")
	rotate := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			locked, err := repo.GetByIDForUpdate(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			if locked == nil || locked.RevokedAt != nil {
				return errAlreadyRotated
			}
			won, err := repo.CompareAndRevoke(ctx, tx, session.ID, time.Now().UTC())
			if err != nil {
				return err
			}
			if !won {
				return errAlreadyRotated
			}
			return nil
		})
	}

	const rotators = 4
	var won int64
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < rotators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			switch err := rotate(); {
			case err == nil:
				atomic.AddInt64(&won, 1)
			case errors.Is(err, errAlreadyRotated):
			default:
				t.Errorf("rotate: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if won != 1 {
		t.Fatalf("concurrent rotation: %d winners, want exactly 1", won)
	}
}

func TestRefreshSessionActive(t *testing.T) {
	now := time.Now().UTC()
	revoked := now.Add(-time.Minute)

	cases := []struct {
		name    string
		session types.RefreshSession
		want    bool
	}{
		{"live", types.RefreshSession{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", types.RefreshSession{ExpiresAt: now.Add(-time.Hour)}, false},
		{"revoked", types.RefreshSession{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}, false},
	}
	for _, tc := range cases {
		if got := tc.session.Active(now); got != tc.want {
			t.Errorf("%s: Active=%v, want %v", tc.name, got, tc.want)
		}
	}
}
