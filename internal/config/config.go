// Package config handles application configuration loading and validation using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Completion limit values for ProgressionConfig.CompletionLimits.
const (
	LimitOncePerPeriod = "once_per_period"
	LimitUnlimited     = "unlimited"
)

// Config represents the application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Uploads     UploadsConfig     `mapstructure:"uploads"`
	Progression ProgressionConfig `mapstructure:"progression"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Mattermost  MattermostConfig  `mapstructure:"mattermost"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Seed        SeedConfig        `mapstructure:"seed"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	Environment string   `mapstructure:"environment"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig selects the relational driver and carries the Redis cache settings.
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"` // postgres or sqlite
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// SQLiteConfig points at a SQLite database file (":memory:" for ephemeral runs).
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig contains Redis cache connection and pool settings. An empty host disables caching.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Enabled reports whether a Redis host is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// AuthConfig contains token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Header     string        `mapstructure:"header"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// UploadsConfig controls where report images go and what is accepted.
type UploadsConfig struct {
	Dir               string   `mapstructure:"dir"`
	MaxBytes          int64    `mapstructure:"max_bytes"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// ProgressionConfig tunes the points/streak/challenge rules.
type ProgressionConfig struct {
	Timezone          string            `mapstructure:"timezone"`
	ReportPoints      int               `mapstructure:"report_points"`
	CertificatePoints int               `mapstructure:"certificate_points"`
	CompletionLimits  map[string]string `mapstructure:"completion_limits"` // frequency -> once_per_period|unlimited
}

// GetLocation returns the timezone used for calendar-day comparisons.
func (c *ProgressionConfig) GetLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LeaderboardConfig contains leaderboard sizes and cache lifetime.
type LeaderboardConfig struct {
	CityLimit int           `mapstructure:"city_limit"`
	UserLimit int           `mapstructure:"user_limit"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// RateLimitConfig limits requests to the credential endpoints per client.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// MattermostConfig contains Mattermost webhook notification settings.
type MattermostConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// MetricsConfig contains metrics exposition settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// SeedConfig controls the startup catalog seeding.
type SeedConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"` // empty uses the embedded catalog
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.sqlite.path", "swachhta.db")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("auth.header", "X-Access-Token")
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_bytes", 16<<20)
	v.SetDefault("uploads.allowed_extensions", []string{"png", "jpg", "jpeg", "gif"})

	v.SetDefault("progression.timezone", "UTC")
	v.SetDefault("progression.report_points", 15)
	v.SetDefault("progression.certificate_points", 1000)
	v.SetDefault("progression.completion_limits", map[string]string{
		"daily":   LimitOncePerPeriod,
		"weekly":  LimitUnlimited,
		"monthly": LimitUnlimited,
	})

	v.SetDefault("leaderboard.city_limit", 20)
	v.SetDefault("leaderboard.user_limit", 50)
	v.SetDefault("leaderboard.cache_ttl", time.Minute)

	v.SetDefault("rate_limit.requests_per_second", 1)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("metrics.prometheus.enabled", true)
	v.SetDefault("metrics.prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("seed.enabled", true)
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error: defaults and the environment still apply.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/swachhta-hub/")
	}

	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// Database configuration
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.sqlite.path", "SQLITE_PATH")
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")

	// Auth configuration
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET", "SECRET_KEY")
	_ = v.BindEnv("auth.token_ttl", "AUTH_TOKEN_TTL")

	// Uploads
	_ = v.BindEnv("uploads.dir", "UPLOAD_DIR")

	// Progression
	_ = v.BindEnv("progression.timezone", "PROGRESSION_TIMEZONE")

	// Mattermost configuration
	_ = v.BindEnv("mattermost.webhook_url", "MATTERMOST_WEBHOOK_URL")
	_ = v.BindEnv("mattermost.channel", "MATTERMOST_CHANNEL")
	_ = v.BindEnv("mattermost.enabled", "MATTERMOST_ENABLED")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q (valid: postgres, sqlite)", c.Database.Driver)
	}

	if _, err := c.Progression.GetLocation(); err != nil {
		return fmt.Errorf("invalid progression.timezone %q: %w", c.Progression.Timezone, err)
	}
	for freq, limit := range c.Progression.CompletionLimits {
		if limit != LimitOncePerPeriod && limit != LimitUnlimited {
			return fmt.Errorf("invalid completion limit %q for frequency %q", limit, freq)
		}
	}

	if c.Mattermost.Enabled && c.Mattermost.WebhookURL == "" {
		return fmt.Errorf("mattermost.webhook_url is required when mattermost is enabled")
	}

	return nil
}

// IsProduction reports whether the server runs in the production environment.
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// AllowsExtension reports whether an upload with the given extension (without dot) is accepted.
func (c *UploadsConfig) AllowsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range c.AllowedExtensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}
