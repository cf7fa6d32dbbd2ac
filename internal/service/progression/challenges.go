package progression

import (
	"context"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/models"
)

// ChallengeStatus is an active challenge with the user's completion state.
// For frequencies limited to one completion per period, Completed refers to the current
// period; otherwise it reports whether the user ever completed the challenge.
type ChallengeStatus struct {
	models.Challenge
	Completed bool `json:"completed"`
}

// ListChallenges returns the active challenges annotated for userID.
func (e *Engine) ListChallenges(ctx context.Context, userID uint) ([]ChallengeStatus, error) {
	repos := e.repos.WithContext(ctx)

	challenges, err := repos.Challenges.GetActive()
	if err != nil {
		return nil, apperr.Internal(err, "failed to load challenges")
	}

	completions, err := repos.Challenges.GetCompletions(userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load challenge completions")
	}

	now := e.now()
	ever := make(map[uint]bool, len(completions))
	inPeriod := make(map[uint]map[string]bool)
	for _, c := range completions {
		ever[c.ChallengeID] = true
		if c.PeriodKey != nil {
			if inPeriod[c.ChallengeID] == nil {
				inPeriod[c.ChallengeID] = make(map[string]bool)
			}
			inPeriod[c.ChallengeID][*c.PeriodKey] = true
		}
	}

	out := make([]ChallengeStatus, 0, len(challenges))
	for _, ch := range challenges {
		status := ChallengeStatus{Challenge: ch}
		if e.policy.Limited(ch.Frequency) {
			status.Completed = inPeriod[ch.ID][PeriodKey(ch.Frequency, now, e.loc)]
		} else {
			status.Completed = ever[ch.ID]
		}
		out = append(out, status)
	}
	return out, nil
}
