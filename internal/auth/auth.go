// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aimd54/swachhta-hub/internal/config"
)

// DefaultHeader is the request header carrying the access token.
const DefaultHeader = "X-Access-Token"

// ErrMissingToken is returned when a request carries no token.
var ErrMissingToken = errors.New("token is missing")

// Claims are the access token claims. PublicID identifies the user.
type Claims struct {
	PublicID string `json:"public_id"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens and hashes passwords.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	header     string
	bcryptCost int
	now        func() time.Time
}

// NewManager creates a manager from the auth configuration.
func NewManager(cfg *config.AuthConfig) *Manager {
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		ttl:        cfg.TokenTTL,
		header:     header,
		bcryptCost: cost,
		now:        time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// HashPassword returns the bcrypt hash of password.
func (m *Manager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword returns nil when password matches hash.
func (m *Manager) ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken issues a signed HS256 token for the user's public ID.
func (m *Manager) GenerateToken(publicID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		PublicID: publicID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies the token signature and expiry and returns its claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.PublicID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// TokenFromRequest extracts the token from the configured header or,
// failing that, from an "Authorization: Bearer" header.
func (m *Manager) TokenFromRequest(r *http.Request) (string, error) {
	if token := strings.TrimSpace(r.Header.Get(m.header)); token != "" {
		return token, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
