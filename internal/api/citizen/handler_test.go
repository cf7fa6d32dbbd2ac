//nolint:noctx // Test file uses http.NewRequest for simplicity
package citizen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/auth"
	"github.com/aimd54/swachhta-hub/internal/config"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/service/account"
	"github.com/aimd54/swachhta-hub/internal/service/badges"
	"github.com/aimd54/swachhta-hub/internal/service/catalog"
	"github.com/aimd54/swachhta-hub/internal/service/certificate"
	"github.com/aimd54/swachhta-hub/internal/service/leaderboard"
	"github.com/aimd54/swachhta-hub/internal/service/progression"
	"github.com/aimd54/swachhta-hub/internal/storage"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// Mock Account Service
type mockAccountService struct {
	registerFunc func(in account.RegisterInput) (*account.Session, error)
	loginFunc    func(email, password string) (*account.Session, error)
}

func (m *mockAccountService) Register(_ context.Context, in account.RegisterInput) (*account.Session, error) {
	return m.registerFunc(in)
}

func (m *mockAccountService) Login(_ context.Context, email, password string) (*account.Session, error) {
	return m.loginFunc(email, password)
}

// Mock Progression Service
type mockProgressionService struct {
	identifyFunc func(userID uint, query string) (*models.WasteItem, *progression.Outcome, error)
	completeFunc func(userID, challengeID uint) (*progression.Outcome, error)
	reportFunc   func(userID uint, report *models.CleanlinessReport) (*progression.Outcome, error)
	challenges   []progression.ChallengeStatus
}

func (m *mockProgressionService) IdentifyWaste(_ context.Context, userID uint, query string) (*models.WasteItem, *progression.Outcome, error) {
	return m.identifyFunc(userID, query)
}

func (m *mockProgressionService) ListChallenges(_ context.Context, _ uint) ([]progression.ChallengeStatus, error) {
	return m.challenges, nil
}

func (m *mockProgressionService) CompleteChallenge(_ context.Context, userID, challengeID uint) (*progression.Outcome, error) {
	return m.completeFunc(userID, challengeID)
}

func (m *mockProgressionService) SubmitReport(_ context.Context, userID uint, report *models.CleanlinessReport) (*progression.Outcome, error) {
	return m.reportFunc(userID, report)
}

// Mock Badge Service
type mockBadgeService struct {
	entries []badges.CatalogEntry
}

func (m *mockBadgeService) GetBadgeCatalog(_ context.Context, _ uint) ([]badges.CatalogEntry, error) {
	return m.entries, nil
}

// Mock Leaderboard Service
type mockLeaderboardService struct {
	cities     []leaderboard.CityEntry
	users      []leaderboard.UserEntry
	heat       []leaderboard.HeatPoint
	stats      leaderboard.UserStats
	activities []models.ActivityLog
	err        error
}

func (m *mockLeaderboardService) CityLeaderboard(context.Context) ([]leaderboard.CityEntry, error) {
	return m.cities, m.err
}

func (m *mockLeaderboardService) UserLeaderboard(context.Context) ([]leaderboard.UserEntry, error) {
	return m.users, m.err
}

func (m *mockLeaderboardService) Heatmap(context.Context) ([]leaderboard.HeatPoint, error) {
	return m.heat, m.err
}

func (m *mockLeaderboardService) GetProfile(_ context.Context, userID uint) (*leaderboard.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &leaderboard.Profile{User: testUsers[userID], Stats: m.stats}, nil
}

func (m *mockLeaderboardService) RecentActivities(_ context.Context, userID uint) ([]models.ActivityLog, error) {
	return m.activities, m.err
}

// Mock Catalog Service
type mockCatalogService struct {
	items []models.WasteItem
	added []catalog.WasteInput
	city  catalog.CityInput
}

func (m *mockCatalogService) ListWaste(context.Context) ([]models.WasteItem, error) {
	return m.items, nil
}

func (m *mockCatalogService) AddWaste(_ context.Context, in catalog.WasteInput) (*models.WasteItem, error) {
	m.added = append(m.added, in)
	points := catalog.DefaultItemPoints
	if in.Points != nil {
		points = *in.Points
	}
	return &models.WasteItem{Name: in.Name, Category: in.Category, DisposalTip: in.Tip, PointsValue: points}, nil
}

func (m *mockCatalogService) UpdateCity(_ context.Context, in catalog.CityInput) (*models.CityData, error) {
	if in.Name != "Pune" {
		return nil, apperr.NotFound("City not found")
	}
	m.city = in
	return &models.CityData{Name: in.Name, CleanlinessScore: in.Score}, nil
}

// Mock Upload Store
type mockUploadStore struct {
	saved   []string
	removed []string
}

func (m *mockUploadStore) Save(fh *multipart.FileHeader) (string, error) {
	if !strings.HasSuffix(fh.Filename, ".jpg") {
		return "", apperr.Validation("File type not allowed")
	}
	name := "abc_" + fh.Filename
	m.saved = append(m.saved, name)
	return name, nil
}

func (m *mockUploadStore) Remove(stored string) {
	m.removed = append(m.removed, stored)
}

// Mock User Lookup
type mockUserLookup struct {
	err error
}

func (m *mockUserLookup) GetByPublicID(publicID string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range testUsers {
		if u.PublicID == publicID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("failed to get user: %w", gorm.ErrRecordNotFound)
}

type stubHealth struct {
	err error
}

func (s stubHealth) Health(context.Context) error { return s.err }

var testUsers = map[uint]*models.User{
	1: {ID: 1, PublicID: "pub-citizen", Name: "Asha", Email: "asha@example.com", City: "Pune", Role: models.RoleUser, Points: 120, Streak: 2, Level: 2},
	2: {ID: 2, PublicID: "pub-admin", Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, Points: 1500, Level: 16},
}

// Test Setup
type testEnv struct {
	router      *gin.Engine
	tokens      *auth.Manager
	now         time.Time
	accounts    *mockAccountService
	progression *mockProgressionService
	badges      *mockBadgeService
	leaderboard *mockLeaderboardService
	catalog     *mockCatalogService
	uploads     *mockUploadStore
	users       *mockUserLookup
	health      map[string]HealthChecker
}

func setupTestEnv(t *testing.T, opts RouterOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		now:         time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		accounts:    &mockAccountService{},
		progression: &mockProgressionService{},
		badges:      &mockBadgeService{},
		leaderboard: &mockLeaderboardService{},
		catalog:     &mockCatalogService{},
		uploads:     &mockUploadStore{},
		users:       &mockUserLookup{},
		health:      map[string]HealthChecker{"database": stubHealth{}},
	}
	env.tokens = auth.NewManager(&config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   30 * 24 * time.Hour,
		BcryptCost: 4,
	}).WithClock(func() time.Time { return env.now })

	handler := NewHandler(Deps{
		Accounts:     env.accounts,
		Progression:  env.progression,
		Badges:       env.badges,
		Leaderboard:  env.leaderboard,
		Catalog:      env.catalog,
		Certificates: certificate.NewService(1000, func() time.Time { return env.now }),
		Uploads:      env.uploads,
		Tokens:       env.tokens,
		Users:        env.users,
		Health:       env.health,
	}, logger.Nop())

	env.router = NewRouter(handler, opts, logger.Nop())
	return env
}

func (e *testEnv) token(t *testing.T, userID uint) string {
	t.Helper()
	token, _, err := e.tokens.GenerateToken(testUsers[userID].PublicID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.DefaultHeader, token)
	}
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestRegister(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	env.accounts.registerFunc = func(in account.RegisterInput) (*account.Session, error) {
		if in.Email == "taken@example.com" {
			return nil, apperr.Conflict("Email already registered")
		}
		return &account.Session{User: testUsers[1], Token: "tok", ExpiresAt: env.now.Add(time.Hour)}, nil
	}

	w, body := env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name": "Asha", "email": "asha@example.com", "password": "secret", "city": "Pune",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "tok", body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "pub-citizen", user["public_id"])
	assert.Equal(t, float64(2), user["level"])
	assert.NotContains(t, user, "password_hash")

	w, body = env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name": "B", "email": "taken@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", body["error"])

	w, body = env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name": "B", "email": "not-an-email", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email must be a valid email address", body["error"])
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	env.accounts.loginFunc = func(email, password string) (*account.Session, error) {
		if password != "secret" {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return &account.Session{User: testUsers[1], Token: "tok"}, nil
	}

	w, body := env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "asha@example.com", "password": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", body["token"])

	w, body = env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "asha@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["error"])
}

func TestAuthenticate(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	env.progression.challenges = []progression.ChallengeStatus{}

	w, body := env.do(t, http.MethodGet, "/api/challenges", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is missing", body["error"])

	w, body = env.do(t, http.MethodGet, "/api/challenges", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is invalid", body["error"])

	token := env.token(t, 1)

	req, err := http.NewRequest(http.MethodGet, "/api/challenges", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w, _ = env.serve(t, req)
	assert.Equal(t, http.StatusOK, w.Code)

	env.now = env.now.Add(31 * 24 * time.Hour)
	w, body = env.do(t, http.MethodGet, "/api/challenges", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has expired", body["error"])
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})

	token, _, err := env.tokens.GenerateToken("deleted-user")
	require.NoError(t, err)

	w, _ := env.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.users.err = errors.New("connection refused")
	w, body := env.do(t, http.MethodGet, "/api/profile", env.token(t, 1), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, body["error"], "connection refused")
}

func TestIdentifyWaste(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	env.progression.identifyFunc = func(userID uint, query string) (*models.WasteItem, *progression.Outcome, error) {
		if query != "plastic bottle" {
			return nil, nil, apperr.NotFound("Item not found in database")
		}
		user := *testUsers[userID]
		user.Points += 10
		return &models.WasteItem{Name: "plastic bottle", Category: "dry", DisposalTip: "Rinse", Warning: "Remove caps", PointsValue: 10},
			&progression.Outcome{User: &user, PointsEarned: 10}, nil
	}
	token := env.token(t, 1)

	w, body := env.do(t, http.MethodPost, "/api/waste/identify", token, gin.H{"query": "plastic bottle"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(10), body["points_earned"])
	item := body["item"].(map[string]any)
	assert.Equal(t, "dry", item["category"])
	assert.Equal(t, "Remove caps", item["warning"])
	assert.Equal(t, float64(10), item["points"])

	w, body = env.do(t, http.MethodPost, "/api/waste/identify", token, gin.H{"query": "laptop"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Item not found in database", body["error"])
}

func TestListWasteItems(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	env.catalog.items = []models.WasteItem{{Name: "battery", Category: "hazardous", PointsValue: 15}}

	w, body := env.do(t, http.MethodGet, "/api/waste/items", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "battery", items[0].(map[string]any)["name"])
}

func TestChallenges(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	env.progression.challenges = []progression.ChallengeStatus{
		{Challenge: models.Challenge{ID: 1, Name: "Plastic-Free Day", Points: 50, Frequency: models.FrequencyDaily}, Completed: true},
	}
	completed := map[uint]bool{}
	env.progression.completeFunc = func(userID, challengeID uint) (*progression.Outcome, error) {
		if completed[challengeID] {
			return nil, apperr.Conflict("Challenge already completed today")
		}
		completed[challengeID] = true
		user := *testUsers[userID]
		user.Points += 50
		return &progression.Outcome{User: &user, PointsEarned: 50, NewBadges: []models.Badge{{Name: "Green Beginner"}}}, nil
	}
	token := env.token(t, 1)

	w, body := env.do(t, http.MethodGet, "/api/challenges", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	list := body["challenges"].([]any)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, true, first["completed"])
	assert.Equal(t, "daily", first["frequency"])

	w, body = env.do(t, http.MethodPost, "/api/challenges/complete", token, gin.H{"challenge_id": 1})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(50), body["points_earned"])
	assert.Equal(t, float64(170), body["total_points"])
	assert.Equal(t, []any{"Green Beginner"}, body["new_badges"])

	w, body = env.do(t, http.MethodPost, "/api/challenges/complete", token, gin.H{"challenge_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Challenge already completed today", body["error"])

	w, body = env.do(t, http.MethodPost, "/api/challenges/complete", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "challenge_id is required", body["error"])
}

func TestListBadges(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	criterion, err := models.ParseBadgeCriterion("points:500")
	require.NoError(t, err)
	env.badges.entries = []badges.CatalogEntry{
		{Badge: models.Badge{ID: 1, Name: "Waste Warrior", Criteria: criterion}, Earned: false},
	}

	w, body := env.do(t, http.MethodGet, "/api/badges", env.token(t, 1), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	list := body["badges"].([]any)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, "Waste Warrior", entry["name"])
	assert.Equal(t, false, entry["earned"])
	assert.Equal(t, "points:500", entry["criteria"])
}

func multipartReport(t *testing.T, fields map[string]string, filename string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/reports", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSubmitReport(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{MaxUploadBytes: 1 << 20})
	var got *models.CleanlinessReport
	env.progression.reportFunc = func(userID uint, report *models.CleanlinessReport) (*progression.Outcome, error) {
		if report.Latitude > 90 {
			return nil, apperr.Validation("latitude must be between -90 and 90")
		}
		report.ID = 42
		got = report
		return &progression.Outcome{User: testUsers[userID], PointsEarned: 15}, nil
	}
	token := env.token(t, 1)

	req := multipartReport(t, map[string]string{
		"latitude": "18.52", "longitude": "73.85", "category": "garbage", "description": "Overflowing bin",
	}, "bin.jpg")
	req.Header.Set(auth.DefaultHeader, token)
	w, body := env.serve(t, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(42), body["report_id"])
	assert.Equal(t, float64(15), body["points_earned"])
	require.NotNil(t, got)
	assert.Equal(t, storage.URL("abc_bin.jpg"), got.ImagePath)
	assert.Equal(t, "garbage", got.Category)

	// the stored image is removed when the report is rejected
	req = multipartReport(t, map[string]string{"latitude": "120", "longitude": "73.85"}, "bin.jpg")
	req.Header.Set(auth.DefaultHeader, token)
	w, _ = env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"abc_bin.jpg"}, env.uploads.removed)

	req = multipartReport(t, map[string]string{"latitude": "north", "longitude": "73.85"}, "")
	req.Header.Set(auth.DefaultHeader, token)
	w, body = env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "latitude must be a number", body["error"])

	req = multipartReport(t, map[string]string{"longitude": "73.85"}, "")
	req.Header.Set(auth.DefaultHeader, token)
	w, body = env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "latitude is required", body["error"])

	req = multipartReport(t, map[string]string{"latitude": "18.52", "longitude": "73.85"}, "payload.exe")
	req.Header.Set(auth.DefaultHeader, token)
	w, body = env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File type not allowed", body["error"])
}

func TestSubmitReport_BodyTooLarge(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{MaxUploadBytes: 16})
	env.progression.reportFunc = func(uint, *models.CleanlinessReport) (*progression.Outcome, error) {
		t.Fatal("report must not be submitted")
		return nil, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("latitude", "18.52"))
	require.NoError(t, mw.WriteField("longitude", "73.85"))
	part, err := mw.CreateFormFile("image", "huge.jpg")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 2<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/reports", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(auth.DefaultHeader, env.token(t, 1))

	w, body := env.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File too large", body["error"])
}

func TestLeaderboardsAndHeatmap(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	env.leaderboard.cities = []leaderboard.CityEntry{{Rank: 1, Name: "Pune", State: "Maharashtra", CleanlinessScore: 92}}
	env.leaderboard.users = []leaderboard.UserEntry{{Rank: 1, Name: "Asha", City: "Pune", Points: 120}}
	env.leaderboard.heat = []leaderboard.HeatPoint{{Lat: 18.52, Lon: 73.85, Weight: 0.92, Name: "Pune", Score: 92}}

	w, body := env.do(t, http.MethodGet, "/api/leaderboard/cities", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	city := body["leaderboard"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(1), city["rank"])
	assert.Equal(t, float64(92), city["cleanliness_score"])

	w, body = env.do(t, http.MethodGet, "/api/leaderboard/users", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", body["leaderboard"].([]any)[0].(map[string]any)["name"])

	w, body = env.do(t, http.MethodGet, "/api/heatmap", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	point := body["heatmap_data"].([]any)[0].(map[string]any)
	assert.Equal(t, 0.92, point["weight"])
	assert.Equal(t, 73.85, point["lon"])

	env.leaderboard.err = apperr.Internal(errors.New("pq: relation does not exist"), "failed to load heatmap")
	w, body = env.do(t, http.MethodGet, "/api/heatmap", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, body["error"], "pq:")
}

func TestProfileAndActivities(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})
	env.leaderboard.stats = leaderboard.UserStats{CompletedChallenges: 3, EarnedBadges: 1, ReportsSubmitted: 2}
	env.leaderboard.activities = []models.ActivityLog{
		{ID: 9, ActivityType: models.ActivityCleanlinessReport, Description: "Reported cleanliness issue", Points: 15, CreatedAt: env.now},
	}
	token := env.token(t, 1)

	w, body := env.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	profile := body["profile"].(map[string]any)
	assert.Equal(t, "Asha", profile["name"])
	assert.Equal(t, "pub-citizen", profile["public_id"])
	stats := profile["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["completed_challenges"])
	assert.Equal(t, float64(2), stats["reports_submitted"])

	w, body = env.do(t, http.MethodGet, "/api/activities", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	entry := body["activities"].([]any)[0].(map[string]any)
	assert.Equal(t, models.ActivityCleanlinessReport, entry["type"])
	assert.Equal(t, float64(15), entry["points"])
}

func TestCertificate(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})

	w, body := env.do(t, http.MethodGet, "/api/certificate", env.token(t, 1), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Need 1000 points to unlock certificate", body["error"])
	details := body["details"].(map[string]any)
	assert.Equal(t, float64(120), details["points"])

	w, body = env.do(t, http.MethodGet, "/api/certificate", env.token(t, 2), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	cert := body["certificate"].(map[string]any)
	assert.Equal(t, fmt.Sprintf("SWACHHTA-pub-admin-%d", env.now.Unix()), cert["certificate_id"])
}

func TestAdminRoutes(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})

	w, body := env.do(t, http.MethodPost, "/api/waste/add", env.token(t, 1), gin.H{"name": "can", "category": "dry", "tip": "Recycle"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", body["error"])

	admin := env.token(t, 2)
	w, body = env.do(t, http.MethodPost, "/api/waste/add", admin, gin.H{"name": "can", "category": "dry", "tip": "Recycle"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(catalog.DefaultItemPoints), body["item"].(map[string]any)["points"])
	require.Len(t, env.catalog.added, 1)
	assert.Nil(t, env.catalog.added[0].Points)

	w, body = env.do(t, http.MethodPost, "/api/waste/add", admin, gin.H{"name": "can", "category": "dry"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "tip is required", body["error"])

	w, _ = env.do(t, http.MethodPost, "/api/cities/update", admin, gin.H{"name": "Pune", "score": 95, "users": 10, "reports": 3})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, catalog.CityInput{Name: "Pune", Score: 95, Users: 10, Reports: 3}, env.catalog.city)

	w, body = env.do(t, http.MethodPost, "/api/cities/update", admin, gin.H{"name": "Pune"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "score is required", body["error"])

	w, body = env.do(t, http.MethodPost, "/api/cities/update", admin, gin.H{"name": "Pune", "score": 140})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "score must be at most 100", body["error"])

	w, _ = env.do(t, http.MethodPost, "/api/cities/update", admin, gin.H{"name": "Atlantis", "score": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t, RouterOptions{})

	w, body := env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["checks"].(map[string]any)["database"])

	env.health["cache"] = stubHealth{err: errors.New("dial tcp: refused")}
	w, body = env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body["checks"].(map[string]any)["cache"])
}

func TestRouter_UploadsAndMetrics(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(dir, "abc_bin.jpg"), "image-bytes"))
	env := setupTestEnv(t, RouterOptions{UploadsDir: dir, MetricsPath: "/metrics"})

	w, _ := env.do(t, http.MethodGet, "/uploads/abc_bin.jpg", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image-bytes", w.Body.String())

	_, _ = env.do(t, http.MethodGet, "/api/waste/items", "", nil)
	w, _ = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swachhta_http_request_duration_seconds")
}
