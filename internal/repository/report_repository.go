package repository

import (
	"fmt"

	"github.com/aimd54/swachhta-hub/internal/models"
)

// ReportRepository handles cleanliness reports.
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create stores a report.
func (r *ReportRepository) Create(report *models.CleanlinessReport) error {
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// CountByUser returns how many reports the user submitted.
func (r *ReportRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CleanlinessReport{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}
