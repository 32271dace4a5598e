package learning

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/learnbridge-backend/internal/domain/user"
	"gorm.io/datatypes"
)

// Course ids are client-chosen opaque strings; uniqueness is the only
// constraint. Courses are never mutated after creation.
type Course struct {
	ID        string         `gorm:"primaryKey;column:id" json:"id"`
	Title     string         `gorm:"not null;column:title" json:"title"`
	CreatedBy uuid.UUID      `gorm:"type:uuid;not null;index" json:"created_by"`
	Creator   *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:CreatedBy;references:ID" json:"creator,omitempty"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Course) TableName() string { return "course" }
