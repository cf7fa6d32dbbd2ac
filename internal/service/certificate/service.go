// Package certificate decides certificate eligibility and builds the certificate payload.
package certificate

import (
	"fmt"
	"time"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/models"
)

// DefaultThreshold is the Green Points needed for a certificate.
const DefaultThreshold = 1000

// Certificate is the payload handed to clients or a renderer.
type Certificate struct {
	Name          string    `json:"name"`
	City          string    `json:"city"`
	Points        int       `json:"points"`
	Level         int       `json:"level"`
	IssueDate     time.Time `json:"issue_date"`
	CertificateID string    `json:"certificate_id"`
}

// Service issues certificates.
type Service struct {
	threshold int
	now       func() time.Time
}

// NewService creates a certificate service. A non-positive threshold uses DefaultThreshold.
func NewService(threshold int, now func() time.Time) *Service {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if now == nil {
		now = time.Now
	}
	return &Service{threshold: threshold, now: now}
}

// Threshold returns the points required.
func (s *Service) Threshold() int {
	return s.threshold
}

// Eligible reports whether points unlock the certificate.
func (s *Service) Eligible(points int) bool {
	return points >= s.threshold
}

// Issue builds the certificate for user or fails with a validation error below the threshold.
func (s *Service) Issue(user *models.User) (*Certificate, error) {
	if !s.Eligible(user.Points) {
		return nil, apperr.Validation("Need %d points to unlock certificate", s.threshold).
			WithDetails(map[string]int{"points": user.Points, "required": s.threshold})
	}

	issued := s.now().UTC()
	return &Certificate{
		Name:          user.Name,
		City:          user.City,
		Points:        user.Points,
		Level:         user.Level,
		IssueDate:     issued,
		CertificateID: fmt.Sprintf("SWACHHTA-%s-%d", user.PublicID, issued.Unix()),
	}, nil
}
