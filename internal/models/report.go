package models

import "time"

// ReportStatusReported is the initial status of every cleanliness report.
const ReportStatusReported = "reported"

// CleanlinessReport is a geo-tagged report of an unclean spot.
type CleanlinessReport struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Latitude    float64   `gorm:"not null" json:"latitude"`
	Longitude   float64   `gorm:"not null" json:"longitude"`
	Category    string    `gorm:"size:50" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	ImagePath   string    `gorm:"size:255" json:"image_path"`
	Status      string    `gorm:"not null;size:20" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for CleanlinessReport model.
func (CleanlinessReport) TableName() string {
	return "cleanliness_reports"
}

// CityData holds externally maintained cleanliness aggregates for a city.
type CityData struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	State            string    `gorm:"size:100" json:"state"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	CleanlinessScore int       `gorm:"not null;index" json:"cleanliness_score"`
	ActiveUsers      int       `gorm:"not null" json:"active_users"`
	TotalReports     int       `gorm:"not null" json:"total_reports"`
	LastUpdated      time.Time `json:"last_updated"`
}

// TableName specifies the table name for CityData model.
func (CityData) TableName() string {
	return "city_data"
}
