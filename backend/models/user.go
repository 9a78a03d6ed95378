package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username      string `gorm:"unique;not null"`
	Email         string `gorm:"unique;not null"`
	PasswordHash  string `gorm:"not null"`
	LastLogin     *time.Time
	LoginCount    int  `gorm:"default:0"`
	PhoneNumber   string
	ProfileImage  string
	Notifications bool `gorm:"default:true"`
	Roadmaps      []Roadmap
	Sessions      []Session
}

// Session spans one login. EndTime stays nil until logout.
type Session struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null"`
	StartTime time.Time `gorm:"not null"`
	EndTime   *time.Time
}

func (s Session) IsOpen() bool {
	return s.EndTime == nil
}
