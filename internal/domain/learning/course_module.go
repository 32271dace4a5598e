package learning

import (
	"time"
)

type CourseModule struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	CourseID  string    `gorm:"not null;index;uniqueIndex:idx_course_position" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title     string    `gorm:"not null;column:title" json:"title"`
	Position  int       `gorm:"not null;column:position;uniqueIndex:idx_course_position" json:"position"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CourseModule) TableName() string { return "course_module" }
