// Command server runs the Swachhta Hub API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/aimd54/swachhta-hub/internal/api/citizen"
	"github.com/aimd54/swachhta-hub/internal/auth"
	"github.com/aimd54/swachhta-hub/internal/cache"
	"github.com/aimd54/swachhta-hub/internal/config"
	"github.com/aimd54/swachhta-hub/internal/mattermost"
	"github.com/aimd54/swachhta-hub/internal/repository"
	"github.com/aimd54/swachhta-hub/internal/seed"
	"github.com/aimd54/swachhta-hub/internal/service/account"
	"github.com/aimd54/swachhta-hub/internal/service/badges"
	"github.com/aimd54/swachhta-hub/internal/service/catalog"
	"github.com/aimd54/swachhta-hub/internal/service/certificate"
	"github.com/aimd54/swachhta-hub/internal/service/leaderboard"
	"github.com/aimd54/swachhta-hub/internal/service/progression"
	"github.com/aimd54/swachhta-hub/internal/storage"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.StringP("config", "c", "", "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(&cfg.Database, log.Component("database"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	repos := repository.NewRepositories(db)

	if cfg.Seed.Enabled {
		catalogData, err := seed.Load(cfg.Seed.File)
		if err != nil {
			return fmt.Errorf("failed to load seed catalog: %w", err)
		}
		if _, err := seed.NewSeeder(repos, log.Component("seed")).Apply(ctx, catalogData); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	health := map[string]citizen.HealthChecker{"database": db}

	var redisCache *cache.Cache
	if cfg.Database.Redis.Enabled() {
		redisCache, err = cache.NewCache(&cfg.Database.Redis, log.Component("cache"))
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close redis")
			}
		}()
		health["cache"] = redisCache
	} else {
		log.Info().Msg("Redis not configured, leaderboard caching disabled")
	}

	loc, err := cfg.Progression.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	policy, err := progression.NewPolicy(cfg.Progression.CompletionLimits)
	if err != nil {
		return fmt.Errorf("invalid completion limits: %w", err)
	}

	notifier := mattermost.NewClient(&cfg.Mattermost, log.Component("mattermost"))
	tokens := auth.NewManager(&cfg.Auth)

	standings := leaderboard.NewService(repos, redisCache, leaderboard.Options{
		CityLimit: cfg.Leaderboard.CityLimit,
		UserLimit: cfg.Leaderboard.UserLimit,
		CacheTTL:  cfg.Leaderboard.CacheTTL,
	}, log.Component("leaderboard"))

	badgeService := badges.NewService(repos.Badges, repos.Challenges, notifier, log.Component("badges"))
	engine := progression.NewEngine(repos, badgeService, progression.Options{
		Location:          loc,
		Policy:            policy,
		ReportPoints:      cfg.Progression.ReportPoints,
		CertificatePoints: cfg.Progression.CertificatePoints,
		Notifier:          notifier,
		Standings:         standings,
	}, log.Component("progression"))

	uploads, err := storage.NewStore(&cfg.Uploads, log.Component("storage"))
	if err != nil {
		return fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	handler := citizen.NewHandler(citizen.Deps{
		Accounts:     account.NewService(repos.Users, tokens, engine, log.Component("account")).WithStandings(standings),
		Progression:  engine,
		Badges:       badgeService,
		Leaderboard:  standings,
		Catalog:      catalog.NewService(repos, standings, log.Component("catalog")),
		Certificates: certificate.NewService(cfg.Progression.CertificatePoints, nil),
		Uploads:      uploads,
		Tokens:       tokens,
		Users:        repos.Users,
		Health:       health,
	}, log.Component("api"))

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := citizen.RouterOptions{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimiter:    citizen.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log.Component("ratelimit")),
		UploadsDir:     uploads.Dir(),
		MaxUploadBytes: cfg.Uploads.MaxBytes,
	}
	if cfg.Metrics.Prometheus.Enabled {
		opts.MetricsPath = cfg.Metrics.Prometheus.Path
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           citizen.NewRouter(handler, opts, log.Component("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Str("database", cfg.Database.Driver).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
