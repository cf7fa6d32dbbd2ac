package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/swachhta-hub/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByPublicID retrieves a user by the public identifier carried in access tokens.
func (r *UserRepository) GetByPublicID(publicID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("public_id = ?", publicID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by public_id: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// AddPoints increments a user's points in a single UPDATE statement.
func (r *UserRepository) AddPoints(id uint, amount int) error {
	result := r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("points", gorm.Expr("points + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to add points to user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to add points to user %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// SetLevel stores a recomputed level.
func (r *UserRepository) SetLevel(id uint, level int) error {
	if err := r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("level", level).Error; err != nil {
		return fmt.Errorf("failed to set level for user %d: %w", id, err)
	}
	return nil
}

// UpdateStreak stores the streak counter and last activity timestamp.
func (r *UserRepository) UpdateStreak(id uint, streak int, lastActivity time.Time) error {
	err := r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"streak":        streak,
			"last_activity": lastActivity,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update streak for user %d: %w", id, err)
	}
	return nil
}

// GetTopByPoints returns users ordered by points, highest first. Ties keep registration order.
func (r *UserRepository) GetTopByPoints(limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Order("points DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return users, nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
