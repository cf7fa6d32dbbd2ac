package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/swachhta-hub/internal/config"
)

func newTestManager(now func() time.Time) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   30 * 24 * time.Hour,
		BcryptCost: 4,
	}).WithClock(now)
}

func TestGenerateAndParseToken(t *testing.T) {
	issued := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	now := issued
	m := newTestManager(func() time.Time { return now })

	token, expiresAt, err := m.GenerateToken("public-123")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(30*24*time.Hour), expiresAt)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "public-123", claims.PublicID)

	now = issued.Add(29 * 24 * time.Hour)
	_, err = m.ParseToken(token)
	assert.NoError(t, err)

	now = issued.Add(31 * 24 * time.Hour)
	_, err = m.ParseToken(token)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseToken_Rejects(t *testing.T) {
	m := newTestManager(time.Now)

	other := NewManager(&config.AuthConfig{JWTSecret: "other-secret", TokenTTL: time.Hour})
	foreign, _, err := other.GenerateToken("public-123")
	require.NoError(t, err)

	_, err = m.ParseToken(foreign)
	assert.Error(t, err)

	_, err = m.ParseToken("not-a-token")
	assert.Error(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{PublicID: "x"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseToken(raw)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	m := newTestManager(time.Now)

	hash, err := m.HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, m.ComparePassword(hash, "s3cret!"))
	assert.Error(t, m.ComparePassword(hash, "wrong"))
}

func TestTokenFromRequest(t *testing.T) {
	m := newTestManager(time.Now)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
		wantErr bool
	}{
		{name: "custom header", headers: map[string]string{"X-Access-Token": "abc"}, want: "abc"},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer def"}, want: "def"},
		{name: "bearer lowercase", headers: map[string]string{"Authorization": "bearer ghi"}, want: "ghi"},
		{name: "custom header wins", headers: map[string]string{"X-Access-Token": "abc", "Authorization": "Bearer def"}, want: "abc"},
		{name: "basic auth", headers: map[string]string{"Authorization": "Basic xyz"}, wantErr: true},
		{name: "empty bearer", headers: map[string]string{"Authorization": "Bearer "}, wantErr: true},
		{name: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			got, err := m.TokenFromRequest(req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
