// Package catalog manages the waste catalog and city aggregates.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/repository"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// DefaultItemPoints is the value of a catalog item added without points.
const DefaultItemPoints = 5

var validCategories = map[string]bool{
	models.WasteCategoryWet:       true,
	models.WasteCategoryDry:       true,
	models.WasteCategoryHazardous: true,
	models.WasteCategoryEWaste:    true,
}

// WasteRepository interface for waste catalog operations.
type WasteRepository interface {
	Create(item *models.WasteItem) error
	GetAll() ([]models.WasteItem, error)
}

// CityRepository interface for city operations.
type CityRepository interface {
	GetByName(name string) (*models.CityData, error)
	Update(city *models.CityData) error
}

// CityInvalidator drops cached city rankings.
type CityInvalidator interface {
	InvalidateCities(ctx context.Context)
}

// Service handles catalog reads and admin updates.
type Service struct {
	wasteRepo WasteRepository
	cityRepo  CityRepository
	cities    CityInvalidator
	now       func() time.Time
	log       *logger.Logger
}

// NewService creates a new catalog service with concrete repository types.
func NewService(repos *repository.Repositories, cities CityInvalidator, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repos.Waste, repos.Cities, cities, time.Now, log)
}

// NewServiceWithInterfaces creates a new catalog service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	wasteRepo WasteRepository,
	cityRepo CityRepository,
	cities CityInvalidator,
	now func() time.Time,
	log *logger.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		wasteRepo: wasteRepo,
		cityRepo:  cityRepo,
		cities:    cities,
		now:       now,
		log:       log,
	}
}

// ListWaste returns the whole waste catalog.
//
//nolint:revive // ctx kept for parity with the other service methods
func (s *Service) ListWaste(ctx context.Context) ([]models.WasteItem, error) {
	items, err := s.wasteRepo.GetAll()
	if err != nil {
		return nil, apperr.Internal(err, "failed to load waste items")
	}
	return items, nil
}

// WasteInput describes a new catalog item. A nil Points defaults to DefaultItemPoints.
type WasteInput struct {
	Name     string
	Category string
	Tip      string
	Warning  string
	Points   *int
}

// AddWaste adds an item to the catalog. Names are stored lowercase so lookups stay case-insensitive.
//
//nolint:revive // ctx kept for parity with the other service methods
func (s *Service) AddWaste(ctx context.Context, in WasteInput) (*models.WasteItem, error) {
	item := &models.WasteItem{
		Name:        strings.ToLower(strings.TrimSpace(in.Name)),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		DisposalTip: strings.TrimSpace(in.Tip),
		Warning:     strings.TrimSpace(in.Warning),
		PointsValue: DefaultItemPoints,
	}
	if in.Points != nil {
		item.PointsValue = *in.Points
	}

	switch {
	case item.Name == "":
		return nil, apperr.Validation("name is required")
	case item.DisposalTip == "":
		return nil, apperr.Validation("tip is required")
	case !validCategories[item.Category]:
		return nil, apperr.Validation("Invalid category %q", in.Category)
	case item.PointsValue < 0:
		return nil, apperr.Validation("points must not be negative")
	}

	if err := s.wasteRepo.Create(item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Waste item already exists")
		}
		return nil, apperr.Internal(err, "failed to add waste item")
	}

	s.log.Info().
		Uint("item_id", item.ID).
		Str("name", item.Name).
		Str("category", item.Category).
		Msg("Waste item added")

	return item, nil
}

// CityInput carries new aggregates for a city.
type CityInput struct {
	Name    string
	Score   int
	Users   int
	Reports int
}

// UpdateCity replaces a city's aggregates and drops the cached city rankings.
func (s *Service) UpdateCity(ctx context.Context, in CityInput) (*models.CityData, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Score < 0 || in.Score > 100 {
		return nil, apperr.Validation("score must be between 0 and 100")
	}
	if in.Users < 0 || in.Reports < 0 {
		return nil, apperr.Validation("users and reports must not be negative")
	}

	city, err := s.cityRepo.GetByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("City not found")
		}
		return nil, apperr.Internal(err, "failed to load city")
	}

	city.CleanlinessScore = in.Score
	city.ActiveUsers = in.Users
	city.TotalReports = in.Reports
	city.LastUpdated = s.now()

	if err := s.cityRepo.Update(city); err != nil {
		return nil, apperr.Internal(err, "failed to update city")
	}

	if s.cities != nil {
		s.cities.InvalidateCities(ctx)
	}

	s.log.Info().
		Str("city", city.Name).
		Int("score", city.CleanlinessScore).
		Msg("City data updated")

	return city, nil
}
