package learning

import (
	"time"

	"gorm.io/datatypes"
)

type Lesson struct {
	ID        string         `gorm:"primaryKey;column:id" json:"id"`
	ModuleID  string         `gorm:"not null;index;uniqueIndex:idx_module_position" json:"module_id"`
	Module    *CourseModule  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Title     string         `gorm:"not null;column:title" json:"title"`
	Position  int            `gorm:"not null;column:position;uniqueIndex:idx_module_position" json:"position"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Lesson) TableName() string { return "lesson" }
