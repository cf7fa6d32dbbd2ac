package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CriterionKind names the counter a badge criterion is checked against.
type CriterionKind string

// Criterion kinds.
const (
	CriterionPoints     CriterionKind = "points"
	CriterionStreak     CriterionKind = "streak"
	CriterionChallenges CriterionKind = "challenges"
)

// Progress is the snapshot of user counters that badge criteria are evaluated on.
type Progress struct {
	Points     int
	Streak     int
	Challenges int
}

// BadgeCriterion is a parsed "kind:threshold" award rule such as "points:500".
// It is stored as its string form and parsed once when the row is scanned.
type BadgeCriterion struct {
	Kind      CriterionKind
	Threshold int
}

// ParseBadgeCriterion parses the "kind:threshold" form.
func ParseBadgeCriterion(s string) (BadgeCriterion, error) {
	kind, rawThreshold, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return BadgeCriterion{}, fmt.Errorf("invalid badge criterion %q: expected kind:threshold", s)
	}

	c := BadgeCriterion{Kind: CriterionKind(strings.ToLower(strings.TrimSpace(kind)))}
	switch c.Kind {
	case CriterionPoints, CriterionStreak, CriterionChallenges:
	default:
		return BadgeCriterion{}, fmt.Errorf("invalid badge criterion %q: unknown kind %q", s, kind)
	}

	threshold, err := strconv.Atoi(strings.TrimSpace(rawThreshold))
	if err != nil || threshold < 0 {
		return BadgeCriterion{}, fmt.Errorf("invalid badge criterion %q: threshold must be a non-negative integer", s)
	}
	c.Threshold = threshold

	return c, nil
}

// String returns the stored form.
func (c BadgeCriterion) String() string {
	return fmt.Sprintf("%s:%d", c.Kind, c.Threshold)
}

// Met reports whether p satisfies the criterion.
func (c BadgeCriterion) Met(p Progress) bool {
	switch c.Kind {
	case CriterionPoints:
		return p.Points >= c.Threshold
	case CriterionStreak:
		return p.Streak >= c.Threshold
	case CriterionChallenges:
		return p.Challenges >= c.Threshold
	}
	return false
}

// Scan implements sql.Scanner.
func (c *BadgeCriterion) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return fmt.Errorf("badge criterion cannot be null")
	default:
		return fmt.Errorf("unsupported badge criterion type %T", value)
	}

	parsed, err := ParseBadgeCriterion(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c BadgeCriterion) Value() (driver.Value, error) {
	return c.String(), nil
}

// MarshalJSON encodes the criterion in its string form.
func (c BadgeCriterion) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes the string form.
func (c *BadgeCriterion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBadgeCriterion(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Badge represents a badge that can be earned by users.
type Badge struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Icon           string         `gorm:"size:50" json:"icon"`
	Criteria       BadgeCriterion `gorm:"type:varchar(50);not null" json:"criteria"`
	PointsRequired int            `gorm:"not null" json:"points_required"`
	CreatedAt      time.Time      `json:"-"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}

// UserBadge represents a badge earned by a user. A user holds each badge at most once.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	Badge    Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for UserBadge model.
func (UserBadge) TableName() string {
	return "user_badges"
}
