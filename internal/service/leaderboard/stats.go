package leaderboard

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/models"
)

// DefaultActivityLimit is the number of entries the activity feed returns.
const DefaultActivityLimit = 20

// ChallengeRepository interface for challenge operations.
type ChallengeRepository interface {
	CountCompletions(userID uint) (int64, error)
}

// BadgeRepository interface for badge operations.
type BadgeRepository interface {
	GetUserBadgeCount(userID uint) (int64, error)
}

// ReportRepository interface for report operations.
type ReportRepository interface {
	CountByUser(userID uint) (int64, error)
}

// ActivityRepository interface for activity operations.
type ActivityRepository interface {
	GetRecent(userID uint, limit int) ([]models.ActivityLog, error)
}

// UserStats counts a user's contributions.
type UserStats struct {
	CompletedChallenges int64 `json:"completed_challenges"`
	EarnedBadges        int64 `json:"earned_badges"`
	ReportsSubmitted    int64 `json:"reports_submitted"`
}

// Profile is a user together with their statistics.
type Profile struct {
	User  *models.User
	Stats UserStats
}

// GetProfile returns the user and their contribution counts.
func (s *Service) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err, "failed to load user")
	}

	stats, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Stats: *stats}, nil
}

// GetUserStats returns the contribution counts for a user.
//
//nolint:revive // ctx kept for parity with the other service methods
func (s *Service) GetUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	completed, err := s.challengeRepo.CountCompletions(userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to count completed challenges")
	}

	badges, err := s.badgeRepo.GetUserBadgeCount(userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to count badges")
	}

	reports, err := s.reportRepo.CountByUser(userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to count reports")
	}

	return &UserStats{
		CompletedChallenges: completed,
		EarnedBadges:        badges,
		ReportsSubmitted:    reports,
	}, nil
}

// RecentActivities returns the user's latest activity entries, newest first.
//
//nolint:revive // ctx kept for parity with the other service methods
func (s *Service) RecentActivities(ctx context.Context, userID uint) ([]models.ActivityLog, error) {
	entries, err := s.activityRepo.GetRecent(userID, DefaultActivityLimit)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load activities")
	}
	return entries, nil
}
