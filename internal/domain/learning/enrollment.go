package learning

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/learnbridge-backend/internal/domain/user"
)

type Enrollment struct {
	ID         string     `gorm:"primaryKey;column:id" json:"id"`
	CourseID   string     `gorm:"not null;index;uniqueIndex:idx_course_user" json:"course_id"`
	Course     *Course    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_course_user" json:"user_id"`
	Student    *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"student,omitempty"`
	EnrolledAt time.Time  `gorm:"not null;column:enrolled_at" json:"enrolled_at"`
}

func (Enrollment) TableName() string { return "enrollment" }
