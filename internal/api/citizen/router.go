package citizen

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aimd54/swachhta-hub/internal/storage"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// formOverhead is the room left for form fields next to an upload of the maximum size.
const formOverhead = 1 << 20

// RouterOptions configure the HTTP surface around the handlers.
type RouterOptions struct {
	CORSOrigins []string
	// RateLimiter guards register and login; nil disables limiting.
	RateLimiter *RateLimiter
	// UploadsDir is served read-only under /uploads; empty disables serving.
	UploadsDir     string
	MaxUploadBytes int64
	// MetricsPath exposes Prometheus metrics; empty disables the endpoint.
	MetricsPath string
}

// NewRouter builds the gin engine with every API route mounted under /api.
func NewRouter(h *Handler, opts RouterOptions, log *logger.Logger) *gin.Engine {
	registerValidatorNames()

	router := gin.New()
	router.MaxMultipartMemory = multipartMemory
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log), Metrics(), CORS(opts.CORSOrigins))

	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
	if opts.UploadsDir != "" {
		router.Static(storage.URLPrefix, opts.UploadsDir)
	}

	api := router.Group("/api")
	api.GET("/health", h.Health)

	credentials := api.Group("")
	if opts.RateLimiter != nil {
		credentials.Use(opts.RateLimiter.Handler())
	}
	credentials.POST("/register", h.Register)
	credentials.POST("/login", h.Login)

	api.GET("/waste/items", h.ListWasteItems)
	api.GET("/leaderboard/cities", h.CityLeaderboard)
	api.GET("/leaderboard/users", h.UserLeaderboard)
	api.GET("/heatmap", h.Heatmap)

	authed := api.Group("", h.Authenticate())
	authed.POST("/waste/identify", h.IdentifyWaste)
	authed.GET("/challenges", h.ListChallenges)
	authed.POST("/challenges/complete", h.CompleteChallenge)
	authed.GET("/badges", h.ListBadges)
	authed.POST("/reports", LimitBody(uploadBodyLimit(opts.MaxUploadBytes)), h.SubmitReport)
	authed.GET("/activities", h.Activities)
	authed.GET("/profile", h.Profile)
	authed.GET("/certificate", h.GetCertificate)

	admin := authed.Group("", h.RequireAdmin())
	admin.POST("/waste/add", h.AddWasteItem)
	admin.POST("/cities/update", h.UpdateCity)

	return router
}

func uploadBodyLimit(maxUpload int64) int64 {
	if maxUpload <= 0 {
		return 0
	}
	return maxUpload + formOverhead
}
