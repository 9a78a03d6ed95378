package models

import (
	"time"

	"gorm.io/gorm"
)

type Roadmap struct {
	gorm.Model
	UserID               uint   `gorm:"index;not null"`
	Role                 string `gorm:"index;not null"`
	TargetDurationWeeks  int    `gorm:"not null"`
	StartDate            time.Time
	TargetCompletionDate time.Time
	// CurrentStreak and LongestStreak are kept for schema compatibility only.
	// The streak shown to users lives in the progress document.
	CurrentStreak    int `gorm:"default:0"`
	LongestStreak    int `gorm:"default:0"`
	LastActivityDate *time.Time
	Items            []RoadmapItem `gorm:"constraint:OnDelete:CASCADE"`
}

type RoadmapItem struct {
	gorm.Model
	RoadmapID     uint   `gorm:"not null;uniqueIndex:idx_roadmap_step_code;uniqueIndex:idx_roadmap_sequence"`
	Title         string `gorm:"not null"`
	Description   string
	DurationDays  int    `gorm:"not null"`
	SequenceOrder int    `gorm:"not null;uniqueIndex:idx_roadmap_sequence"`
	ModuleName    string
	StepCode      string `gorm:"size:50;uniqueIndex:idx_roadmap_step_code"`
	IsCompleted   bool   `gorm:"default:false"`
	CompletedDate *time.Time
}

func (i RoadmapItem) Completed() bool {
	return i.IsCompleted
}
