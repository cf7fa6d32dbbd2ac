// Package account handles citizen registration and login.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/auth"
	prommetrics "github.com/aimd54/swachhta-hub/internal/metrics"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/repository"
	"github.com/aimd54/swachhta-hub/internal/service/progression"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// UserRepository interface for user persistence.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
}

// Credentials hashes passwords and issues tokens.
type Credentials interface {
	HashPassword(password string) (string, error)
	ComparePassword(hash, password string) error
	GenerateToken(publicID string) (string, time.Time, error)
}

// LoginRecorder updates progression state on login.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, userID uint) (*progression.Outcome, error)
}

// StandingsInvalidator drops cached user rankings when a user joins.
type StandingsInvalidator interface {
	InvalidateUsers(ctx context.Context)
}

// Service handles registration and login.
type Service struct {
	users       UserRepository
	credentials Credentials
	logins      LoginRecorder
	standings   StandingsInvalidator
	log         *logger.Logger
}

// NewService creates a new account service.
func NewService(
	users *repository.UserRepository,
	credentials *auth.Manager,
	engine *progression.Engine,
	log *logger.Logger,
) *Service {
	return &Service{users: users, credentials: credentials, logins: engine, log: log}
}

// NewServiceWithInterfaces creates a new account service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(users UserRepository, credentials Credentials, logins LoginRecorder, log *logger.Logger) *Service {
	return &Service{users: users, credentials: credentials, logins: logins, log: log}
}

// WithStandings makes Register invalidate the cached user leaderboard.
func (s *Service) WithStandings(standings StandingsInvalidator) *Service {
	s.standings = standings
	return s
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	City     string
}

// Session is an authenticated user with a fresh access token.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a user with zero points, no streak and level 1, and returns a session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.City = strings.TrimSpace(in.City)

	for _, field := range []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"password", in.Password},
		{"city", in.City},
	} {
		if field.value == "" {
			return nil, apperr.Validation("%s is required", field.name)
		}
	}

	hash, err := s.credentials.HashPassword(in.Password)
	if err != nil {
		prommetrics.RecordRegistration("failure")
		return nil, apperr.Internal(err, "Registration failed")
	}

	user := &models.User{
		PublicID:     uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		City:         in.City,
		Role:         models.RoleUser,
		Points:       0,
		Streak:       0,
		Level:        progression.Level(0),
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			prommetrics.RecordRegistration("duplicate")
			return nil, apperr.Conflict("Email already registered")
		}
		prommetrics.RecordRegistration("failure")
		return nil, apperr.Internal(err, "Registration failed")
	}

	session, err := s.session(user)
	if err != nil {
		return nil, err
	}

	prommetrics.RecordRegistration("success")
	if s.standings != nil {
		s.standings.InvalidateUsers(ctx)
	}
	s.log.Info().
		Uint("user_id", user.ID).
		Str("city", user.City).
		Msg("User registered")

	return session, nil
}

// Login verifies credentials, updates the login streak and returns a session.
// Unknown emails and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password required")
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			prommetrics.RecordLogin("failure")
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, apperr.Internal(err, "Login failed")
	}

	if err := s.credentials.ComparePassword(user.PasswordHash, password); err != nil {
		prommetrics.RecordLogin("failure")
		s.log.Debug().Uint("user_id", user.ID).Msg("Login rejected: password mismatch")
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	out, err := s.logins.RecordLogin(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	prommetrics.RecordLogin("success")
	return s.session(out.User)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, expiresAt, err := s.credentials.GenerateToken(user.PublicID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to issue token")
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
