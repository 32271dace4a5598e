package auth

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type OAuthStateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, state *types.OAuthState) error
	// Take removes the state and returns it. States are single-use: the
	// delete happens whether or not the caller then accepts the state.
	Take(ctx context.Context, tx *gorm.DB, state string) (*types.OAuthState, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) error
}

type oauthStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOAuthStateRepo(db *gorm.DB, baseLog *logger.Logger) OAuthStateRepo {
	repoLog := baseLog.With("repo", "OAuthStateRepo")
	return &oauthStateRepo{db: db, log: repoLog}
}

func (osr *oauthStateRepo) Create(ctx context.Context, tx *gorm.DB, state *types.OAuthState) error {
	transaction := tx
	if transaction == nil {
		transaction = osr.db
	}

	return transaction.WithContext(ctx).Create(state).Error
}

func (osr *oauthStateRepo) Take(ctx context.Context, tx *gorm.DB, state string) (*types.OAuthState, error) {
	transaction := tx
	if transaction == nil {
		transaction = osr.db
	}

	// Single DELETE ... RETURNING, so concurrent takers of the same state
	// race on the row delete itself and exactly one sees the record.
	var deleted []*types.OAuthState
	res := transaction.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("state = ?", state).
		Delete(&deleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || len(deleted) == 0 {
		return nil, nil
	}
	return deleted[0], nil
}

func (osr *oauthStateRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = osr.db
	}

	return transaction.WithContext(ctx).
		Where("issued_at < ?", cutoff).
		Delete(&types.OAuthState{}).Error
}
