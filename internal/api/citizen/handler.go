// Package citizen provides the REST API used by the citizen web client.
// It exposes registration, waste identification, challenges, badges, reports,
// leaderboards, the heatmap, profiles and certificates.
package citizen

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/auth"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/service/account"
	"github.com/aimd54/swachhta-hub/internal/service/badges"
	"github.com/aimd54/swachhta-hub/internal/service/catalog"
	"github.com/aimd54/swachhta-hub/internal/service/certificate"
	"github.com/aimd54/swachhta-hub/internal/service/leaderboard"
	"github.com/aimd54/swachhta-hub/internal/service/progression"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// AccountService interface for registration and login.
type AccountService interface {
	Register(ctx context.Context, in account.RegisterInput) (*account.Session, error)
	Login(ctx context.Context, email, password string) (*account.Session, error)
}

// ProgressionService interface for point-earning actions.
type ProgressionService interface {
	IdentifyWaste(ctx context.Context, userID uint, query string) (*models.WasteItem, *progression.Outcome, error)
	ListChallenges(ctx context.Context, userID uint) ([]progression.ChallengeStatus, error)
	CompleteChallenge(ctx context.Context, userID, challengeID uint) (*progression.Outcome, error)
	SubmitReport(ctx context.Context, userID uint, report *models.CleanlinessReport) (*progression.Outcome, error)
}

// BadgeService interface for badge operations.
type BadgeService interface {
	GetBadgeCatalog(ctx context.Context, userID uint) ([]badges.CatalogEntry, error)
}

// LeaderboardService interface for rankings and profile statistics.
type LeaderboardService interface {
	CityLeaderboard(ctx context.Context) ([]leaderboard.CityEntry, error)
	UserLeaderboard(ctx context.Context) ([]leaderboard.UserEntry, error)
	Heatmap(ctx context.Context) ([]leaderboard.HeatPoint, error)
	GetProfile(ctx context.Context, userID uint) (*leaderboard.Profile, error)
	RecentActivities(ctx context.Context, userID uint) ([]models.ActivityLog, error)
}

// CatalogService interface for the waste catalog and city data.
type CatalogService interface {
	ListWaste(ctx context.Context) ([]models.WasteItem, error)
	AddWaste(ctx context.Context, in catalog.WasteInput) (*models.WasteItem, error)
	UpdateCity(ctx context.Context, in catalog.CityInput) (*models.CityData, error)
}

// CertificateService interface for certificate issuing.
type CertificateService interface {
	Issue(user *models.User) (*certificate.Certificate, error)
}

// UploadStore interface for report image storage.
type UploadStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(stored string)
}

// TokenVerifier interface for access token checks.
type TokenVerifier interface {
	TokenFromRequest(r *http.Request) (string, error)
	ParseToken(token string) (*auth.Claims, error)
}

// UserLookup resolves token subjects to users.
type UserLookup interface {
	GetByPublicID(publicID string) (*models.User, error)
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps are the services the handler delegates to.
type Deps struct {
	Accounts     AccountService
	Progression  ProgressionService
	Badges       BadgeService
	Leaderboard  LeaderboardService
	Catalog      CatalogService
	Certificates CertificateService
	Uploads      UploadStore
	Tokens       TokenVerifier
	Users        UserLookup
	Health       map[string]HealthChecker
}

// Handler handles citizen API requests.
type Handler struct {
	Deps
	log *logger.Logger
}

// NewHandler creates a new citizen API handler.
func NewHandler(deps Deps, log *logger.Logger) *Handler {
	return &Handler{Deps: deps, log: log}
}

// errorResponse writes err as {"success": false, "error": msg, "details"?}.
// Internal errors are logged with their cause and answered with a generic message.
func (h *Handler) errorResponse(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg("Request failed")
	}

	body := gin.H{
		"success": false,
		"error":   apperr.PublicMessage(err),
	}
	if details := apperr.PublicDetails(err); details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body into dst and reports binding failures as validation errors.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.errorResponse(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperr.Validation("%s is required", fe.Field())
		case "email":
			return apperr.Validation("%s must be a valid email address", fe.Field())
		case "min", "gte":
			return apperr.Validation("%s must be at least %s", fe.Field(), fe.Param())
		case "max", "lte":
			return apperr.Validation("%s must be at most %s", fe.Field(), fe.Param())
		default:
			return apperr.Validation("%s is invalid", fe.Field())
		}
	}
	return apperr.Validation("Invalid request body")
}

var validatorNamesOnce sync.Once

// registerValidatorNames makes validation errors use the JSON field names.
func registerValidatorNames() {
	validatorNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// Health reports the status of the database and, when configured, the cache.
// GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(gin.H, len(h.Deps.Health))
	for name, checker := range h.Deps.Health {
		if err := checker.Health(ctx); err != nil {
			h.log.Warn().Err(err).Str("component", name).Msg("Health check failed")
			checks[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	c.JSON(status, gin.H{
		"success": status == http.StatusOK,
		"checks":  checks,
		"time":    time.Now().UTC(),
	})
}

// userView is the public shape of a user in auth responses.
type userView struct {
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	City     string `json:"city"`
	Points   int    `json:"points"`
	Streak   int    `json:"streak"`
	Level    int    `json:"level"`
}

func newUserView(u *models.User) userView {
	return userView{
		PublicID: u.PublicID,
		Name:     u.Name,
		Email:    u.Email,
		City:     u.City,
		Points:   u.Points,
		Streak:   u.Streak,
		Level:    u.Level,
	}
}
