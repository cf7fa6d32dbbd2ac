// Package badges provides badge evaluation and management services.
package badges

import (
	"context"
	"fmt"
	"time"

	prommetrics "github.com/aimd54/swachhta-hub/internal/metrics"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/repository"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// BadgeRepository interface for badge operations.
type BadgeRepository interface {
	GetAll() ([]models.Badge, error)
	AwardBadge(userID, badgeID uint, earnedAt time.Time) (bool, error)
	GetEarnedBadgeIDs(userID uint) (map[uint]bool, error)
	GetUserBadges(userID uint) ([]models.UserBadge, error)
	GetBadgeHoldersCount(badgeID uint) (int64, error)
}

// ChallengeRepository interface for challenge completion counts.
type ChallengeRepository interface {
	CountCompletions(userID uint) (int64, error)
}

// Notifier announces earned badges.
type Notifier interface {
	NotifyBadgeEarned(ctx context.Context, user *models.User, badge *models.Badge) error
}

// Service handles badge evaluation and awarding.
type Service struct {
	badgeRepo     BadgeRepository
	challengeRepo ChallengeRepository
	notifier      Notifier
	log           *logger.Logger
}

// NewService creates a new badge service.
func NewService(
	badgeRepo *repository.BadgeRepository,
	challengeRepo *repository.ChallengeRepository,
	notifier Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo:     badgeRepo,
		challengeRepo: challengeRepo,
		notifier:      notifier,
		log:           log,
	}
}

// NewServiceWithInterfaces creates a new badge service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	badgeRepo BadgeRepository,
	challengeRepo ChallengeRepository,
	notifier Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo:     badgeRepo,
		challengeRepo: challengeRepo,
		notifier:      notifier,
		log:           log,
	}
}

// Bind returns a copy of the service that reads and writes through the given repositories,
// typically ones bound to an open transaction.
func (s *Service) Bind(badgeRepo BadgeRepository, challengeRepo ChallengeRepository) *Service {
	return &Service{
		badgeRepo:     badgeRepo,
		challengeRepo: challengeRepo,
		notifier:      s.notifier,
		log:           s.log,
	}
}

// EvaluateUserBadges awards every badge whose criterion the user now meets and returns the
// newly earned ones. Earned badges are never revoked, so only missing badges are checked.
func (s *Service) EvaluateUserBadges(ctx context.Context, user *models.User, now time.Time) ([]models.Badge, error) {
	s.log.Debug().Uint("user_id", user.ID).Msg("Evaluating badges for user")

	catalog, err := s.badgeRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get badges: %w", err)
	}

	earned, err := s.badgeRepo.GetEarnedBadgeIDs(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get earned badges: %w", err)
	}

	completed, err := s.challengeRepo.CountCompletions(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count challenge completions: %w", err)
	}

	pending := Qualifying(catalog, earned, user.Progress(int(completed)))

	var newlyEarned []models.Badge
	for i := range pending {
		awarded, err := s.AwardBadge(ctx, user.ID, &pending[i], now)
		if err != nil {
			return nil, err
		}
		if awarded {
			newlyEarned = append(newlyEarned, pending[i])
		}
	}

	return newlyEarned, nil
}

// AwardBadge awards a badge to a user. It reports false when the user already held it.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) AwardBadge(ctx context.Context, userID uint, badge *models.Badge, now time.Time) (bool, error) {
	awarded, err := s.badgeRepo.AwardBadge(userID, badge.ID, now)
	if err != nil {
		return false, fmt.Errorf("failed to award badge %q: %w", badge.Name, err)
	}

	if awarded {
		s.log.Info().
			Uint("user_id", userID).
			Str("badge", badge.Name).
			Str("criteria", badge.Criteria.String()).
			Msg("Badge awarded")
	}

	return awarded, nil
}

// Announce records metrics for committed awards and notifies the webhook.
// Notification failures are logged and never fail the caller.
func (s *Service) Announce(ctx context.Context, user *models.User, awarded []models.Badge) {
	for i := range awarded {
		badge := &awarded[i]

		prommetrics.RecordBadgeAwarded(badge.Name)
		if count, err := s.badgeRepo.GetBadgeHoldersCount(badge.ID); err == nil {
			prommetrics.SetActiveBadgeHolders(badge.Name, int(count))
		}

		if s.notifier == nil {
			continue
		}
		if err := s.notifier.NotifyBadgeEarned(ctx, user, badge); err != nil {
			s.log.Warn().
				Err(err).
				Uint("user_id", user.ID).
				Str("badge", badge.Name).
				Msg("Failed to announce badge")
		}
	}
}

// CatalogEntry is a badge together with the requesting user's earned flag.
type CatalogEntry struct {
	models.Badge
	Earned bool `json:"earned"`
}

// GetBadgeCatalog retrieves all available badges flagged with whether userID earned them.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBadgeCatalog(ctx context.Context, userID uint) ([]CatalogEntry, error) {
	catalog, err := s.badgeRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get badges: %w", err)
	}

	earned, err := s.badgeRepo.GetEarnedBadgeIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get earned badges: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(catalog))
	for _, badge := range catalog {
		entries = append(entries, CatalogEntry{Badge: badge, Earned: earned[badge.ID]})
	}
	return entries, nil
}

// GetUserBadges retrieves all badges earned by a user.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	return s.badgeRepo.GetUserBadges(userID)
}
