package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/aimd54/swachhta-hub/internal/models"
)

// BadgeRepository handles badge-related database operations.
type BadgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Create creates a new badge in the database.
func (r *BadgeRepository) Create(badge *models.Badge) error {
	if err := r.db.Create(badge).Error; err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}
	return nil
}

// GetByID retrieves a badge by its ID.
func (r *BadgeRepository) GetByID(id uint) (*models.Badge, error) {
	var badge models.Badge
	if err := r.db.First(&badge, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get badge %d: %w", id, err)
	}
	return &badge, nil
}

// GetByName retrieves a badge by its name.
func (r *BadgeRepository) GetByName(name string) (*models.Badge, error) {
	var badge models.Badge
	if err := r.db.Where("name = ?", name).First(&badge).Error; err != nil {
		return nil, fmt.Errorf("failed to get badge %q: %w", name, err)
	}
	return &badge, nil
}

// GetAll retrieves all badges ordered by ID. Criteria are parsed while scanning.
func (r *BadgeRepository) GetAll() ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.Order("id ASC").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

// Count returns the number of badges.
func (r *BadgeRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Badge{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count badges: %w", err)
	}
	return count, nil
}

// AwardBadge awards a badge to a user.
// Returns true when a new row was written and false when the user already held the badge.
func (r *BadgeRepository) AwardBadge(userID, badgeID uint, earnedAt time.Time) (bool, error) {
	userBadge := &models.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: earnedAt,
	}

	// Idempotent: the (user_id, badge_id) unique index turns a repeat award into a no-op
	result := r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Badge").
		Create(userBadge)
	if result.Error != nil {
		return false, fmt.Errorf("failed to award badge %d to user %d: %w", badgeID, userID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// HasUserEarnedBadge checks if a user has earned a specific badge.
func (r *BadgeRepository) HasUserEarnedBadge(userID, badgeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check badge ownership: %w", err)
	}
	return count > 0, nil
}

// GetUserBadges retrieves all badges earned by a user with badge details preloaded.
func (r *BadgeRepository) GetUserBadges(userID uint) ([]models.UserBadge, error) {
	var userBadges []models.UserBadge
	err := r.db.
		Where("user_id = ?", userID).
		Preload("Badge").
		Order("earned_at DESC").
		Find(&userBadges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}
	return userBadges, nil
}

// GetEarnedBadgeIDs returns the set of badge IDs the user holds.
func (r *BadgeRepository) GetEarnedBadgeIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get earned badge ids: %w", err)
	}

	earned := make(map[uint]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

// GetUserBadgeCount returns the total number of badges a user has earned.
func (r *BadgeRepository) GetUserBadgeCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count user badges: %w", err)
	}
	return count, nil
}

// GetBadgeHoldersCount returns the number of users who have earned a specific badge.
func (r *BadgeRepository) GetBadgeHoldersCount(badgeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserBadge{}).
		Where("badge_id = ?", badgeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count badge holders: %w", err)
	}
	return count, nil
}
