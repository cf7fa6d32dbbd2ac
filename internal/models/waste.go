package models

import "time"

// Waste categories.
const (
	WasteCategoryWet       = "wet"
	WasteCategoryDry       = "dry"
	WasteCategoryHazardous = "hazardous"
	WasteCategoryEWaste    = "e-waste"
)

// WasteItem is a catalog entry describing how to dispose of an item.
type WasteItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Category    string    `gorm:"not null;size:50" json:"category"`
	DisposalTip string    `gorm:"type:text;not null" json:"disposal_tip"`
	Warning     string    `gorm:"type:text" json:"warning"`
	PointsValue int       `gorm:"not null" json:"points_value"`
	CreatedAt   time.Time `json:"-"`
}

// TableName specifies the table name for WasteItem model.
func (WasteItem) TableName() string {
	return "waste_items"
}
