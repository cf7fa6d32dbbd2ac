package models

import "time"

// Activity types written for point-earning actions.
const (
	ActivityWasteIdentification = "waste_identification"
	ActivityChallengeCompleted  = "challenge_completed"
	ActivityCleanlinessReport   = "cleanliness_report"
)

// ActivityLog is an append-only record of a point-earning action.
type ActivityLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	ActivityType string    `gorm:"not null;size:50" json:"activity_type"`
	Description  string    `gorm:"type:text" json:"description"`
	Points       int       `gorm:"not null" json:"points"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for ActivityLog model.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
