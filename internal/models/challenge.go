package models

import "time"

// Frequency controls how often a challenge may be completed.
type Frequency string

// Challenge frequencies.
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Challenge is a recurring civic task worth points.
type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Points      int       `gorm:"not null" json:"points"`
	Frequency   Frequency `gorm:"not null;size:20" json:"frequency"`
	Category    string    `gorm:"size:50" json:"category"`
	Active      bool      `gorm:"not null;index" json:"active"`
	CreatedAt   time.Time `json:"-"`
}

// TableName specifies the table name for Challenge model.
func (Challenge) TableName() string {
	return "challenges"
}

// UserChallenge records one completion of a challenge.
// PeriodKey is set when the challenge's frequency allows a single completion per period
// and is nil otherwise, so the unique index only constrains limited completions.
type UserChallenge struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index;uniqueIndex:idx_user_challenge_period" json:"user_id"`
	ChallengeID  uint      `gorm:"not null;uniqueIndex:idx_user_challenge_period" json:"challenge_id"`
	Challenge    Challenge `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
	PeriodKey    *string   `gorm:"size:20;uniqueIndex:idx_user_challenge_period" json:"-"`
	CompletedAt  time.Time `gorm:"not null" json:"completed_at"`
	PointsEarned int       `gorm:"not null" json:"points_earned"`
}

// TableName specifies the table name for UserChallenge model.
func (UserChallenge) TableName() string {
	return "user_challenges"
}
