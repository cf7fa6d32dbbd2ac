package account

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/service/progression"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

type mockUserRepository struct {
	byEmail   map[string]*models.User
	createErr error
	nextID    uint
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{byEmail: make(map[string]*models.User), nextID: 1}
}

func (m *mockUserRepository) Create(user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return fmt.Errorf("failed to create user: %w", gorm.ErrDuplicatedKey)
	}
	user.ID = m.nextID
	m.nextID++
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserRepository) GetByEmail(email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("failed to get user by email: %w", gorm.ErrRecordNotFound)
}

type mockCredentials struct{}

func (mockCredentials) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (mockCredentials) ComparePassword(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func (mockCredentials) GenerateToken(publicID string) (string, time.Time, error) {
	return "token-" + publicID, time.Date(2026, 11, 17, 0, 0, 0, 0, time.UTC), nil
}

type mockLoginRecorder struct {
	calls []uint
	users *mockUserRepository
}

func (m *mockLoginRecorder) RecordLogin(_ context.Context, userID uint) (*progression.Outcome, error) {
	m.calls = append(m.calls, userID)
	for _, u := range m.users.byEmail {
		if u.ID == userID {
			updated := *u
			updated.Streak++
			return &progression.Outcome{User: &updated}, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func newTestService() (*Service, *mockUserRepository, *mockLoginRecorder) {
	users := newMockUserRepository()
	logins := &mockLoginRecorder{users: users}
	return NewServiceWithInterfaces(users, mockCredentials{}, logins, logger.Nop()), users, logins
}

func TestRegister(t *testing.T) {
	svc, users, _ := newTestService()

	session, err := svc.Register(context.Background(), RegisterInput{
		Name: " Asha ", Email: "Asha@Example.com ", Password: "pw", City: "Pune",
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha", session.User.Name)
	assert.Equal(t, "asha@example.com", session.User.Email)
	assert.Equal(t, 0, session.User.Points)
	assert.Equal(t, 0, session.User.Streak)
	assert.Equal(t, 1, session.User.Level)
	assert.Nil(t, session.User.LastActivity)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.Len(t, session.User.PublicID, 36)
	assert.Equal(t, "token-"+session.User.PublicID, session.Token)
	assert.Equal(t, "hashed:pw", users.byEmail["asha@example.com"].PasswordHash)
}

type countingStandings struct {
	users int
}

func (c *countingStandings) InvalidateUsers(context.Context) { c.users++ }

func TestRegister_InvalidatesStandings(t *testing.T) {
	svc, _, _ := newTestService()
	standings := &countingStandings{}
	svc.WithStandings(standings)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.c", Password: "pw", City: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, 1, standings.users)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.c", Password: "pw", City: "Pune"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 1, standings.users)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "pw", City: "Pune"}, "name is required"},
		{"missing email", RegisterInput{Name: "A", Password: "pw", City: "Pune"}, "email is required"},
		{"missing password", RegisterInput{Name: "A", Email: "a@b.c", City: "Pune"}, "password is required"},
		{"blank city", RegisterInput{Name: "A", Email: "a@b.c", Password: "pw", City: "  "}, "city is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.field, apperr.PublicMessage(err))
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	in := RegisterInput{Name: "A", Email: "a@example.com", Password: "pw", City: "Pune"}

	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	in.Email = "A@EXAMPLE.COM"
	_, err = svc.Register(context.Background(), in)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Email already registered", apperr.PublicMessage(err))
}

func TestRegister_StoreFailureIsInternal(t *testing.T) {
	svc, users, _ := newTestService()
	users.createErr = errors.New("disk full")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "pw", City: "Pune"})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.NotContains(t, apperr.PublicMessage(err), "disk full")
}

func TestLogin(t *testing.T) {
	svc, _, logins := newTestService()
	reg, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "pw", City: "Pune"})
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), " A@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, session.User.Streak)
	assert.Equal(t, []uint{reg.User.ID}, logins.calls)
	assert.NotEmpty(t, session.Token)
}

func TestLogin_Failures(t *testing.T) {
	svc, _, logins := newTestService()
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "pw", City: "Pune"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "", "pw")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Login(context.Background(), "nobody@example.com", "pw")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Login(context.Background(), "a@example.com", "wrong")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	assert.Empty(t, logins.calls)
}
