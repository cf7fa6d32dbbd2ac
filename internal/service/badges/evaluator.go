package badges

import (
	"github.com/aimd54/swachhta-hub/internal/models"
)

// Qualifying returns the badges from catalog that are not yet earned and whose
// criterion is met by progress, in catalog order.
func Qualifying(catalog []models.Badge, earned map[uint]bool, progress models.Progress) []models.Badge {
	var pending []models.Badge
	for _, badge := range catalog {
		if earned[badge.ID] {
			continue
		}
		if badge.Criteria.Met(progress) {
			pending = append(pending, badge)
		}
	}
	return pending
}
