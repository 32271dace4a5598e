package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/learnbridge-backend/internal/domain/user"
)

// RefreshSession backs one refresh token. The raw token is never stored; the
// presented token must hash-match TokenHash. Rotation, logout and replay
// detection all end a session by setting RevokedAt.
type RefreshSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TokenHash string     `gorm:"not null;column:token_hash" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;column:expires_at" json:"expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (RefreshSession) TableName() string { return "refresh_session" }

func (s *RefreshSession) Active(now time.Time) bool {
	return s != nil && s.RevokedAt == nil && s.ExpiresAt.After(now)
}
