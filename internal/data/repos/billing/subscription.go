package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type SubscriptionRepo interface {
	// GetOrCreate returns the user's record, creating the free-plan default
	// on first access.
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Subscription, error)
	SetPlan(ctx context.Context, tx *gorm.DB, userID uuid.UUID, plan string) (*types.Subscription, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	repoLog := baseLog.With("repo", "SubscriptionRepo")
	return &subscriptionRepo{db: db, log: repoLog}
}

func (sr *subscriptionRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	sub := &types.Subscription{
		UserID:    userID,
		Plan:      types.PlanFree,
		UpdatedAt: time.Now().UTC(),
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(sub).Error; err != nil {
		return nil, err
	}

	var results []*types.Subscription
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return sub, nil
	}
	return results[0], nil
}

func (sr *subscriptionRepo) SetPlan(ctx context.Context, tx *gorm.DB, userID uuid.UUID, plan string) (*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	sub := &types.Subscription{
		UserID:    userID,
		Plan:      plan,
		UpdatedAt: time.Now().UTC(),
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "updated_at"}),
		}).
		Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}
