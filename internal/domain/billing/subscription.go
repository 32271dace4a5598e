package billing

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Subscription is created lazily with the free plan on first access and
// mutated only by admins.
type Subscription struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Plan      string    `gorm:"not null;default:'free';column:plan" json:"plan"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscription" }

// PlanLimits are soft limits: exceeding them annotates responses, it never
// rejects writes.
type PlanLimits struct {
	CreatedCourses    int64 `json:"createdCourses"`
	ActiveEnrollments int64 `json:"activeEnrollments"`
	StorageBytes      int64 `json:"storageBytes"`
}

var planTable = map[string]PlanLimits{
	PlanFree: {
		CreatedCourses:    2,
		ActiveEnrollments: 3,
		StorageBytes:      100 * 1024 * 1024,
	},
	PlanPro: {
		CreatedCourses:    20,
		ActiveEnrollments: 50,
		StorageBytes:      10 * 1024 * 1024 * 1024,
	},
	PlanEnterprise: {
		CreatedCourses:    math.MaxInt64,
		ActiveEnrollments: math.MaxInt64,
		StorageBytes:      math.MaxInt64,
	},
}

func ValidPlan(plan string) bool {
	_, ok := planTable[plan]
	return ok
}

func LimitsFor(plan string) PlanLimits {
	if l, ok := planTable[plan]; ok {
		return l
	}
	return planTable[PlanFree]
}
