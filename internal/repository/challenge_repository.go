package repository

import (
	"fmt"

	"github.com/aimd54/swachhta-hub/internal/models"
)

// ChallengeRepository handles challenges and their completions.
type ChallengeRepository struct {
	db *DB
}

// NewChallengeRepository creates a new challenge repository.
func NewChallengeRepository(db *DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create creates a new challenge.
func (r *ChallengeRepository) Create(challenge *models.Challenge) error {
	if err := r.db.Create(challenge).Error; err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// GetByID retrieves a challenge by ID.
func (r *ChallengeRepository) GetByID(id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.First(&challenge, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get challenge %d: %w", id, err)
	}
	return &challenge, nil
}

// GetActive returns all active challenges ordered by ID.
func (r *ChallengeRepository) GetActive() ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := r.db.Where("active = ?", true).Order("id ASC").Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("failed to list active challenges: %w", err)
	}
	return challenges, nil
}

// Count returns the number of challenges.
func (r *ChallengeRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Challenge{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count challenges: %w", err)
	}
	return count, nil
}

// RecordCompletion inserts a completion row. A second limited completion in the same
// period violates idx_user_challenge_period.
func (r *ChallengeRepository) RecordCompletion(completion *models.UserChallenge) error {
	if err := r.db.Omit("Challenge").Create(completion).Error; err != nil {
		return fmt.Errorf("failed to record challenge completion: %w", err)
	}
	return nil
}

// HasCompletionInPeriod checks whether the user already completed the challenge in the period.
func (r *ChallengeRepository) HasCompletionInPeriod(userID, challengeID uint, periodKey string) (bool, error) {
	var count int64
	err := r.db.Model(&models.UserChallenge{}).
		Where("user_id = ? AND challenge_id = ? AND period_key = ?", userID, challengeID, periodKey).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check challenge completion: %w", err)
	}
	return count > 0, nil
}

// CountCompletions returns how many challenge completions the user has.
func (r *ChallengeRepository) CountCompletions(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.UserChallenge{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count challenge completions: %w", err)
	}
	return count, nil
}

// GetCompletions returns every completion of the user, newest first.
func (r *ChallengeRepository) GetCompletions(userID uint) ([]models.UserChallenge, error) {
	var completions []models.UserChallenge
	err := r.db.
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&completions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list challenge completions: %w", err)
	}
	return completions, nil
}
