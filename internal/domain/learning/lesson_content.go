package learning

import (
	"time"
)

// LessonContent is metadata only; bytes live with the storage provider.
// One record per lesson, overwritten on re-attach.
type LessonContent struct {
	LessonID    string    `gorm:"primaryKey;column:lesson_id" json:"lesson_id"`
	Lesson      *Lesson   `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	Provider    string    `gorm:"not null;column:provider" json:"provider"`
	Key         string    `gorm:"not null;column:key" json:"key"`
	FileID      string    `gorm:"not null;column:file_id" json:"file_id"`
	ContentType string    `gorm:"not null;column:content_type" json:"content_type"`
	Size        int64     `gorm:"not null;column:size" json:"size"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LessonContent) TableName() string { return "lesson_content" }
