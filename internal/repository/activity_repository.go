package repository

import (
	"fmt"

	"github.com/aimd54/swachhta-hub/internal/models"
)

// ActivityRepository handles the append-only activity log.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an activity entry.
func (r *ActivityRepository) Create(entry *models.ActivityLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// GetRecent returns the user's latest entries, newest first.
func (r *ActivityRepository) GetRecent(userID uint, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent activities: %w", err)
	}
	return entries, nil
}

// CountByUser returns how many activity entries the user has.
func (r *ActivityRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.ActivityLog{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}
