// Package leaderboard provides city and user rankings, the cleanliness heatmap and profile statistics.
package leaderboard

import (
	"context"
	"time"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/cache"
	prommetrics "github.com/aimd54/swachhta-hub/internal/metrics"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/internal/repository"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// Cache keys.
const (
	CitiesKey  = "leaderboard:cities"
	UsersKey   = "leaderboard:users"
	HeatmapKey = "heatmap"
)

// Default sizes.
const (
	DefaultCityLimit = 20
	DefaultUserLimit = 50
)

// Cache stores serialized rankings.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// CityRepository interface for city operations.
type CityRepository interface {
	GetAll() ([]models.CityData, error)
	GetTopByScore(limit int) ([]models.CityData, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetTopByPoints(limit int) ([]models.User, error)
}

// CityEntry is one row of the city leaderboard.
type CityEntry struct {
	Rank             int    `json:"rank"`
	Name             string `json:"name"`
	State            string `json:"state"`
	CleanlinessScore int    `json:"cleanliness_score"`
	ActiveUsers      int    `json:"active_users"`
	TotalReports     int    `json:"total_reports"`
}

// UserEntry is one row of the user leaderboard.
type UserEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	City   string `json:"city"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
	Streak int    `json:"streak"`
}

// HeatPoint is one weighted heatmap point.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
	Name   string  `json:"name"`
	Score  int     `json:"score"`
}

// Options tune list sizes and caching.
type Options struct {
	CityLimit int
	UserLimit int
	CacheTTL  time.Duration
}

// Service builds rankings, caching them when a cache is configured.
type Service struct {
	cityRepo      CityRepository
	userRepo      UserRepository
	challengeRepo ChallengeRepository
	badgeRepo     BadgeRepository
	reportRepo    ReportRepository
	activityRepo  ActivityRepository
	cache         Cache
	opts          Options
	log           *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
// A nil cache disables caching.
func NewService(repos *repository.Repositories, c *cache.Cache, opts Options, log *logger.Logger) *Service {
	var store Cache
	if c != nil {
		store = c
	}
	return NewServiceWithInterfaces(
		repos.Cities, repos.Users, repos.Challenges, repos.Badges, repos.Reports, repos.Activities,
		store, opts, log,
	)
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	cityRepo CityRepository,
	userRepo UserRepository,
	challengeRepo ChallengeRepository,
	badgeRepo BadgeRepository,
	reportRepo ReportRepository,
	activityRepo ActivityRepository,
	c Cache,
	opts Options,
	log *logger.Logger,
) *Service {
	if opts.CityLimit <= 0 {
		opts.CityLimit = DefaultCityLimit
	}
	if opts.UserLimit <= 0 {
		opts.UserLimit = DefaultUserLimit
	}
	return &Service{
		cityRepo:      cityRepo,
		userRepo:      userRepo,
		challengeRepo: challengeRepo,
		badgeRepo:     badgeRepo,
		reportRepo:    reportRepo,
		activityRepo:  activityRepo,
		cache:         c,
		opts:          opts,
		log:           log,
	}
}

// CityLeaderboard returns the top cities by cleanliness score.
func (s *Service) CityLeaderboard(ctx context.Context) ([]CityEntry, error) {
	var entries []CityEntry
	if s.cached(ctx, CitiesKey, &entries) {
		return entries, nil
	}

	cities, err := s.cityRepo.GetTopByScore(s.opts.CityLimit)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load city leaderboard")
	}

	entries = make([]CityEntry, 0, len(cities))
	for i, c := range cities {
		entries = append(entries, CityEntry{
			Rank:             i + 1,
			Name:             c.Name,
			State:            c.State,
			CleanlinessScore: c.CleanlinessScore,
			ActiveUsers:      c.ActiveUsers,
			TotalReports:     c.TotalReports,
		})
	}

	s.store(ctx, CitiesKey, entries)
	return entries, nil
}

// UserLeaderboard returns the top users by points.
func (s *Service) UserLeaderboard(ctx context.Context) ([]UserEntry, error) {
	var entries []UserEntry
	if s.cached(ctx, UsersKey, &entries) {
		return entries, nil
	}

	users, err := s.userRepo.GetTopByPoints(s.opts.UserLimit)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user leaderboard")
	}

	entries = make([]UserEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, UserEntry{
			Rank:   i + 1,
			Name:   u.Name,
			City:   u.City,
			Points: u.Points,
			Level:  u.Level,
			Streak: u.Streak,
		})
	}

	s.store(ctx, UsersKey, entries)
	return entries, nil
}

// Heatmap returns one point per city weighted by score/100.
func (s *Service) Heatmap(ctx context.Context) ([]HeatPoint, error) {
	var points []HeatPoint
	if s.cached(ctx, HeatmapKey, &points) {
		return points, nil
	}

	cities, err := s.cityRepo.GetAll()
	if err != nil {
		return nil, apperr.Internal(err, "failed to load heatmap")
	}

	points = make([]HeatPoint, 0, len(cities))
	for _, c := range cities {
		points = append(points, HeatPoint{
			Lat:    c.Latitude,
			Lon:    c.Longitude,
			Weight: float64(c.CleanlinessScore) / 100,
			Name:   c.Name,
			Score:  c.CleanlinessScore,
		})
	}

	s.store(ctx, HeatmapKey, points)
	return points, nil
}

// InvalidateUsers drops the cached user leaderboard.
func (s *Service) InvalidateUsers(ctx context.Context) {
	s.invalidate(ctx, UsersKey)
}

// InvalidateCities drops the cached city leaderboard and heatmap.
func (s *Service) InvalidateCities(ctx context.Context) {
	s.invalidate(ctx, CitiesKey, HeatmapKey)
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("Failed to invalidate cached rankings")
	}
}

// cached decodes key into dst. Cache failures are logged and treated as misses.
func (s *Service) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := cache.GetJSON(ctx, s.cache, key, dst)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read cache")
	}
	if hit {
		prommetrics.RecordCacheHit(key)
		return true
	}
	prommetrics.RecordCacheMiss(key)
	return false
}

func (s *Service) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, value, s.opts.CacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to write cache")
	}
}
