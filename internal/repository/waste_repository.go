package repository

import (
	"fmt"
	"strings"

	"github.com/aimd54/swachhta-hub/internal/models"
)

// WasteRepository handles waste catalog operations.
type WasteRepository struct {
	db *DB
}

// NewWasteRepository creates a new waste repository.
func NewWasteRepository(db *DB) *WasteRepository {
	return &WasteRepository{db: db}
}

// Create adds an item to the catalog.
func (r *WasteRepository) Create(item *models.WasteItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create waste item: %w", err)
	}
	return nil
}

// GetAll returns the whole catalog ordered by ID.
func (r *WasteRepository) GetAll() ([]models.WasteItem, error) {
	var items []models.WasteItem
	if err := r.db.Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list waste items: %w", err)
	}
	return items, nil
}

// FindByName returns the lowest-ID item whose name contains query, ignoring case.
func (r *WasteRepository) FindByName(query string) (*models.WasteItem, error) {
	var item models.WasteItem
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := r.db.
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find waste item %q: %w", query, err)
	}
	return &item, nil
}

// Count returns the catalog size.
func (r *WasteRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.WasteItem{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count waste items: %w", err)
	}
	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
