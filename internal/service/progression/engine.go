// Package progression implements the points, level, streak and badge rules that run
// whenever a user earns points or logs in.
package progression

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	prommetrics "github.com/aimd54/swachhta-hub/internal/metrics"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/repository"
	"github.com/aimd54/swachhta-hub/internal/service/badges"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// ReportDescription is the activity description written for cleanliness reports.
const ReportDescription = "Reported cleanliness issue"

// CertificateNotifier announces users crossing the certificate threshold.
type CertificateNotifier interface {
	NotifyCertificateUnlocked(ctx context.Context, user *models.User) error
}

// StandingsInvalidator drops cached rankings after a user's points or streak change.
type StandingsInvalidator interface {
	InvalidateUsers(ctx context.Context)
}

// Options tune the engine.
type Options struct {
	Location          *time.Location
	Policy            Policy
	ReportPoints      int
	CertificatePoints int
	Notifier          CertificateNotifier
	Standings         StandingsInvalidator
	Now               func() time.Time
}

// Engine applies point-earning actions. Each operation runs in one transaction.
type Engine struct {
	repos    *repository.Repositories
	badges   *badges.Service
	loc      *time.Location
	policy   Policy
	report   int
	certAt   int
	notifier CertificateNotifier
	ranks    StandingsInvalidator
	now      func() time.Time
	log      *logger.Logger
}

// NewEngine creates a progression engine.
func NewEngine(repos *repository.Repositories, badgeService *badges.Service, opts Options, log *logger.Logger) *Engine {
	e := &Engine{
		repos:    repos,
		badges:   badgeService,
		loc:      opts.Location,
		policy:   opts.Policy,
		report:   opts.ReportPoints,
		certAt:   opts.CertificatePoints,
		notifier: opts.Notifier,
		ranks:    opts.Standings,
		now:      opts.Now,
		log:      log,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.policy.limited == nil {
		e.policy = DefaultPolicy()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Outcome describes the result of a point-earning action.
type Outcome struct {
	User         *models.User
	PointsEarned int
	NewBadges    []models.Badge
}

// ApplyPoints adds amount to the user's points, recomputes the level, logs the activity and
// evaluates badges, all in one transaction.
func (e *Engine) ApplyPoints(ctx context.Context, userID uint, amount int, activityType, description string) (*Outcome, error) {
	var out *Outcome
	before := 0
	err := e.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		before = user.Points

		out, err = e.applyPoints(ctx, tx, userID, amount, activityType, description, e.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	e.afterCommit(ctx, before, activityType, out)
	return out, nil
}

// applyPoints must run inside tx.
func (e *Engine) applyPoints(
	ctx context.Context,
	tx *repository.Repositories,
	userID uint,
	amount int,
	activityType, description string,
	now time.Time,
) (*Outcome, error) {
	if amount < 0 {
		return nil, apperr.Validation("points must not be negative")
	}

	if err := tx.Users.AddPoints(userID, amount); err != nil {
		return nil, userError(err)
	}

	user, err := loadUser(tx, userID)
	if err != nil {
		return nil, err
	}

	if level := Level(user.Points); level != user.Level {
		if err := tx.Users.SetLevel(user.ID, level); err != nil {
			return nil, apperr.Internal(err, "failed to update level")
		}
		user.Level = level
	}

	entry := &models.ActivityLog{
		UserID:       user.ID,
		ActivityType: activityType,
		Description:  description,
		Points:       amount,
		CreatedAt:    now,
	}
	if err := tx.Activities.Create(entry); err != nil {
		return nil, apperr.Internal(err, "failed to record activity")
	}

	awarded, err := e.badges.Bind(tx.Badges, tx.Challenges).EvaluateUserBadges(ctx, user, now)
	if err != nil {
		return nil, apperr.Internal(err, "failed to evaluate badges")
	}

	return &Outcome{User: user, PointsEarned: amount, NewBadges: awarded}, nil
}

// RecordLogin updates the user's streak for a login at the current time and re-evaluates badges.
func (e *Engine) RecordLogin(ctx context.Context, userID uint) (*Outcome, error) {
	now := e.now()

	var out *Outcome
	err := e.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}

		streak := NextStreak(user.Streak, user.LastActivity, now, e.loc)
		if err := tx.Users.UpdateStreak(user.ID, streak, now); err != nil {
			return apperr.Internal(err, "failed to update streak")
		}
		user.Streak = streak
		user.LastActivity = &now

		awarded, err := e.badges.Bind(tx.Badges, tx.Challenges).EvaluateUserBadges(ctx, user, now)
		if err != nil {
			return apperr.Internal(err, "failed to evaluate badges")
		}

		out = &Outcome{User: user, NewBadges: awarded}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Debug().
		Uint("user_id", userID).
		Int("streak", out.User.Streak).
		Msg("Login recorded")

	e.invalidateStandings(ctx)
	e.badges.Announce(ctx, out.User, out.NewBadges)
	return out, nil
}

// CompleteChallenge records a challenge completion and awards its points.
// Frequencies limited by the policy fail with a conflict on a second completion in the same period.
func (e *Engine) CompleteChallenge(ctx context.Context, userID, challengeID uint) (*Outcome, error) {
	now := e.now()

	var (
		out       *Outcome
		before    int
		frequency models.Frequency
	)
	err := e.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		before = user.Points

		challenge, err := tx.Challenges.GetByID(challengeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Challenge not found")
			}
			return apperr.Internal(err, "failed to load challenge")
		}
		if !challenge.Active {
			return apperr.Validation("Challenge is not active")
		}
		frequency = challenge.Frequency

		completion := &models.UserChallenge{
			UserID:       user.ID,
			ChallengeID:  challenge.ID,
			CompletedAt:  now,
			PointsEarned: challenge.Points,
		}

		if e.policy.Limited(challenge.Frequency) {
			key := PeriodKey(challenge.Frequency, now, e.loc)
			done, err := tx.Challenges.HasCompletionInPeriod(user.ID, challenge.ID, key)
			if err != nil {
				return apperr.Internal(err, "failed to check challenge completion")
			}
			if done {
				return duplicateCompletion(challenge.Frequency)
			}
			completion.PeriodKey = &key
		}

		if err := tx.Challenges.RecordCompletion(completion); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicateCompletion(challenge.Frequency)
			}
			return apperr.Internal(err, "failed to record challenge completion")
		}

		out, err = e.applyPoints(ctx, tx, user.ID, challenge.Points, models.ActivityChallengeCompleted,
			"Completed challenge: "+challenge.Name, now)
		return err
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			prommetrics.RecordChallengeCompletion(string(frequency), "duplicate")
		}
		return nil, err
	}

	prommetrics.RecordChallengeCompletion(string(frequency), "completed")
	e.afterCommit(ctx, before, models.ActivityChallengeCompleted, out)
	return out, nil
}

// IdentifyWaste looks up the first catalog item whose name contains query and awards its points.
func (e *Engine) IdentifyWaste(ctx context.Context, userID uint, query string) (*models.WasteItem, *Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, apperr.Validation("Query parameter required")
	}

	now := e.now()

	var (
		item    *models.WasteItem
		out     *Outcome
		before  int
		noMatch bool
	)
	err := e.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		before = user.Points

		item, err = tx.Waste.FindByName(query)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				noMatch = true
				return apperr.NotFound("Item not found in database")
			}
			return apperr.Internal(err, "failed to search waste items")
		}

		out, err = e.applyPoints(ctx, tx, user.ID, item.PointsValue, models.ActivityWasteIdentification,
			"Identified "+item.Name, now)
		return err
	})
	if err != nil {
		if noMatch {
			prommetrics.RecordWasteIdentification("not_found")
		}
		return nil, nil, err
	}

	prommetrics.RecordWasteIdentification("matched")
	e.afterCommit(ctx, before, models.ActivityWasteIdentification, out)
	return item, out, nil
}

// SubmitReport stores a cleanliness report for the user and awards the report points.
// report.ID is set on success.
func (e *Engine) SubmitReport(ctx context.Context, userID uint, report *models.CleanlinessReport) (*Outcome, error) {
	if math.IsNaN(report.Latitude) || report.Latitude < -90 || report.Latitude > 90 {
		return nil, apperr.Validation("latitude must be between -90 and 90")
	}
	if math.IsNaN(report.Longitude) || report.Longitude < -180 || report.Longitude > 180 {
		return nil, apperr.Validation("longitude must be between -180 and 180")
	}
	if strings.TrimSpace(report.Category) == "" {
		report.Category = "other"
	}

	now := e.now()

	var (
		out    *Outcome
		before int
	)
	err := e.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		before = user.Points

		report.UserID = user.ID
		report.Status = models.ReportStatusReported
		report.CreatedAt = now
		if err := tx.Reports.Create(report); err != nil {
			return apperr.Internal(err, "failed to create report")
		}

		out, err = e.applyPoints(ctx, tx, user.ID, e.report, models.ActivityCleanlinessReport, ReportDescription, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	prommetrics.RecordReportSubmitted(report.Category)
	e.afterCommit(ctx, before, models.ActivityCleanlinessReport, out)
	return out, nil
}

// EvaluateBadges re-evaluates every badge for the user and returns the newly awarded ones.
func (e *Engine) EvaluateBadges(ctx context.Context, userID uint) ([]models.Badge, error) {
	var (
		user    *models.User
		awarded []models.Badge
	)
	err := e.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		user, err = loadUser(tx, userID)
		if err != nil {
			return err
		}

		awarded, err = e.badges.Bind(tx.Badges, tx.Challenges).EvaluateUserBadges(ctx, user, e.now())
		if err != nil {
			return apperr.Internal(err, "failed to evaluate badges")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.badges.Announce(ctx, user, awarded)
	return awarded, nil
}

// afterCommit publishes metrics and notifications for a committed point change.
func (e *Engine) afterCommit(ctx context.Context, before int, activityType string, out *Outcome) {
	prommetrics.RecordPointsAwarded(activityType, out.PointsEarned)

	e.log.Info().
		Uint("user_id", out.User.ID).
		Str("activity_type", activityType).
		Int("points_earned", out.PointsEarned).
		Int("total_points", out.User.Points).
		Int("level", out.User.Level).
		Msg("Points awarded")

	e.invalidateStandings(ctx)
	e.badges.Announce(ctx, out.User, out.NewBadges)

	if e.certAt > 0 && before < e.certAt && out.User.Points >= e.certAt {
		prommetrics.RecordCertificateUnlocked()
		if e.notifier != nil {
			if err := e.notifier.NotifyCertificateUnlocked(ctx, out.User); err != nil {
				e.log.Warn().Err(err).Uint("user_id", out.User.ID).Msg("Failed to announce certificate")
			}
		}
	}
}

func (e *Engine) invalidateStandings(ctx context.Context) {
	if e.ranks != nil {
		e.ranks.InvalidateUsers(ctx)
	}
}

func loadUser(tx *repository.Repositories, userID uint) (*models.User, error) {
	user, err := tx.Users.GetByID(userID)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

func userError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("User not found")
	}
	return apperr.Internal(err, "failed to load user")
}

func duplicateCompletion(f models.Frequency) error {
	return apperr.Conflict("Challenge already completed %s", periodName(f))
}
