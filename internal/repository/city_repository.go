package repository

import (
	"fmt"

	"github.com/aimd54/swachhta-hub/internal/models"
)

// CityRepository handles city aggregates.
type CityRepository struct {
	db *DB
}

// NewCityRepository creates a new city repository.
func NewCityRepository(db *DB) *CityRepository {
	return &CityRepository{db: db}
}

// Create creates a city row.
func (r *CityRepository) Create(city *models.CityData) error {
	if err := r.db.Create(city).Error; err != nil {
		return fmt.Errorf("failed to create city: %w", err)
	}
	return nil
}

// GetByName retrieves a city by its exact name.
func (r *CityRepository) GetByName(name string) (*models.CityData, error) {
	var city models.CityData
	if err := r.db.Where("name = ?", name).First(&city).Error; err != nil {
		return nil, fmt.Errorf("failed to get city %q: %w", name, err)
	}
	return &city, nil
}

// GetAll returns all cities ordered by ID.
func (r *CityRepository) GetAll() ([]models.CityData, error) {
	var cities []models.CityData
	if err := r.db.Order("id ASC").Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

// GetTopByScore returns cities ordered by cleanliness score, highest first.
func (r *CityRepository) GetTopByScore(limit int) ([]models.CityData, error) {
	var cities []models.CityData
	err := r.db.
		Order("cleanliness_score DESC").
		Order("id ASC").
		Limit(limit).
		Find(&cities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top cities: %w", err)
	}
	return cities, nil
}

// Update saves the aggregate columns of a city.
func (r *CityRepository) Update(city *models.CityData) error {
	if err := r.db.Save(city).Error; err != nil {
		return fmt.Errorf("failed to update city: %w", err)
	}
	return nil
}

// Count returns the number of cities.
func (r *CityRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.CityData{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count cities: %w", err)
	}
	return count, nil
}
