package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type RefreshSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.RefreshSession) ([]*types.RefreshSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.RefreshSession, error)
	// GetByIDForUpdate locks the session row for the rest of the enclosing
	// transaction so rotation is serialized per session id.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.RefreshSession, error)
	// CompareAndRevoke marks the session revoked only if it is not already.
	// Returns true when this call won the revocation.
	CompareAndRevoke(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, now time.Time) (bool, error)
	RevokeByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) error
}

type refreshSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRefreshSessionRepo(db *gorm.DB, baseLog *logger.Logger) RefreshSessionRepo {
	repoLog := baseLog.With("repo", "RefreshSessionRepo")
	return &refreshSessionRepo{db: db, log: repoLog}
}

func (rsr *refreshSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.RefreshSession) ([]*types.RefreshSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = rsr.db
	}

	if len(sessions) == 0 {
		return []*types.RefreshSession{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

func (rsr *refreshSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.RefreshSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = rsr.db
	}

	var results []*types.RefreshSession
	if err := transaction.WithContext(ctx).
		Where("id = ?", sessionID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (rsr *refreshSessionRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.RefreshSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = rsr.db
	}

	var results []*types.RefreshSession
	if err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", sessionID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (rsr *refreshSessionRepo) CompareAndRevoke(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, now time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = rsr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.RefreshSession{}).
		Where("id = ? AND revoked_at IS NULL", sessionID).
		UpdateColumn("revoked_at", now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (rsr *refreshSessionRepo) RevokeByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = rsr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.RefreshSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		UpdateColumn("revoked_at", now).Error
}
