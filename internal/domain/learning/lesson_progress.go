package learning

import (
	"time"
)

const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// LessonProgress rows exist only via fan-out: inserting a lesson creates one
// per enrollment in its course, inserting an enrollment creates one per
// lesson. A mutation against a missing row is a cross-course write, never an
// implicit create. CompletedAt is set iff Status is completed.
type LessonProgress struct {
	ID           string      `gorm:"primaryKey;column:id" json:"id"` // enrollmentID:lessonID
	EnrollmentID string      `gorm:"not null;index;uniqueIndex:idx_enrollment_lesson" json:"enrollment_id"`
	Enrollment   *Enrollment `gorm:"constraint:OnDelete:CASCADE;foreignKey:EnrollmentID;references:ID" json:"enrollment,omitempty"`
	LessonID     string      `gorm:"not null;index;uniqueIndex:idx_enrollment_lesson" json:"lesson_id"`
	Lesson       *Lesson     `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	Status       string      `gorm:"not null;default:'not_started';column:status" json:"status"`
	CompletedAt  *time.Time  `gorm:"column:completed_at" json:"completed_at,omitempty"`
	UpdatedAt    time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }

func ProgressID(enrollmentID, lessonID string) string {
	return enrollmentID + ":" + lessonID
}

func ValidProgressStatus(status string) bool {
	switch status {
	case ProgressNotStarted, ProgressInProgress, ProgressCompleted:
		return true
	}
	return false
}
