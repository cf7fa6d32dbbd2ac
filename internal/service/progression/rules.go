package progression

import (
	"fmt"
	"time"

	"github.com/aimd54/swachhta-hub/internal/config"
	"github.com/aimd54/swachhta-hub/internal/models"
)

// Level rules.
const (
	PointsPerLevel = 100
	MaxLevel       = 50
)

// Level returns the level for a points total: min(50, points/100 + 1).
func Level(points int) int {
	if points < 0 {
		points = 0
	}
	return min(MaxLevel, points/PointsPerLevel+1)
}

// civilDay returns t's calendar date in loc as midnight UTC, so dates can be subtracted safely
// across DST changes.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextStreak returns the streak after activity at now.
// Same calendar day keeps the streak, the following day extends it, anything else
// (including the first ever activity) restarts it at 1.
func NextStreak(current int, lastActivity *time.Time, now time.Time, loc *time.Location) int {
	if lastActivity == nil {
		return 1
	}

	days := int(civilDay(now, loc).Sub(civilDay(*lastActivity, loc)).Hours() / 24)
	switch days {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// Policy decides which challenge frequencies allow only one completion per period.
type Policy struct {
	limited map[models.Frequency]bool
}

// DefaultPolicy limits daily challenges to one completion per day and leaves the rest unlimited.
func DefaultPolicy() Policy {
	return Policy{limited: map[models.Frequency]bool{models.FrequencyDaily: true}}
}

// NewPolicy builds a policy from frequency -> limit settings. Frequencies not mentioned
// keep their default.
func NewPolicy(limits map[string]string) (Policy, error) {
	p := DefaultPolicy()
	for freq, limit := range limits {
		f := models.Frequency(freq)
		if !f.Valid() {
			return Policy{}, fmt.Errorf("unknown challenge frequency %q", freq)
		}
		switch limit {
		case config.LimitOncePerPeriod:
			p.limited[f] = true
		case config.LimitUnlimited:
			p.limited[f] = false
		default:
			return Policy{}, fmt.Errorf("unknown completion limit %q for %q", limit, freq)
		}
	}
	return p, nil
}

// Limited reports whether f allows a single completion per period.
func (p Policy) Limited(f models.Frequency) bool {
	return p.limited[f]
}

// PeriodKey identifies the period containing t: "2006-01-02" for daily,
// ISO week "2006-W01" for weekly and "2006-01" for monthly.
func PeriodKey(f models.Frequency, t time.Time, loc *time.Location) string {
	local := t.In(loc)
	switch f {
	case models.FrequencyWeekly:
		year, week := local.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case models.FrequencyMonthly:
		return local.Format("2006-01")
	default:
		return local.Format("2006-01-02")
	}
}

func periodName(f models.Frequency) string {
	switch f {
	case models.FrequencyWeekly:
		return "this week"
	case models.FrequencyMonthly:
		return "this month"
	default:
		return "today"
	}
}
