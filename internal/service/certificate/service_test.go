package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/models"
)

func TestEligible(t *testing.T) {
	svc := NewService(0, nil)

	assert.Equal(t, DefaultThreshold, svc.Threshold())
	assert.False(t, svc.Eligible(999))
	assert.True(t, svc.Eligible(1000))
	assert.True(t, svc.Eligible(1500))
}

func TestIssue(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	svc := NewService(1000, func() time.Time { return at })

	user := &models.User{PublicID: "abc-123", Name: "Asha", City: "Pune", Points: 1000, Level: 11}
	cert, err := svc.Issue(user)
	require.NoError(t, err)

	assert.Equal(t, "Asha", cert.Name)
	assert.Equal(t, "Pune", cert.City)
	assert.Equal(t, 1000, cert.Points)
	assert.Equal(t, 11, cert.Level)
	assert.Equal(t, at, cert.IssueDate)
	assert.Equal(t, "SWACHHTA-abc-123-1792314000", cert.CertificateID)
}

func TestIssue_BelowThreshold(t *testing.T) {
	svc := NewService(1000, nil)

	_, err := svc.Issue(&models.User{Points: 999})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Need 1000 points to unlock certificate", apperr.PublicMessage(err))
	assert.Equal(t, map[string]int{"points": 999, "required": 1000}, apperr.PublicDetails(err))
}
