package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// User is created on first successful identity exchange. Role is assigned
// once, from the allow-list membership at that moment. TokenVersion is bumped
// to invalidate every outstanding token for the user.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	DisplayName  string    `gorm:"not null;column:display_name" json:"display_name"`
	Role         string    `gorm:"not null;column:role" json:"role"`
	TokenVersion int       `gorm:"not null;default:0;column:token_version" json:"-"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}
