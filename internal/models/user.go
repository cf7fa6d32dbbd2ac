// Package models defines domain models for the citizen hub.
package models

import (
	"time"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered citizen.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PublicID     string     `gorm:"uniqueIndex;not null;size:36" json:"public_id"`
	Name         string     `gorm:"not null;size:100" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null;size:120" json:"email"`
	PasswordHash string     `gorm:"not null;size:255" json:"-"`
	City         string     `gorm:"size:100" json:"city"`
	Role         string     `gorm:"not null;size:20" json:"role"`
	Points       int        `gorm:"not null" json:"points"`
	Streak       int        `gorm:"not null" json:"streak"`
	Level        int        `gorm:"not null" json:"level"`
	LastActivity *time.Time `json:"last_activity"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"-"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may manage the catalog and city data.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Progress returns the counters badge criteria are evaluated against.
func (u *User) Progress(completedChallenges int) Progress {
	return Progress{Points: u.Points, Streak: u.Streak, Challenges: completedChallenges}
}
