// Package repository provides data access layer using GORM for database operations.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres migration driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aimd54/swachhta-hub/internal/config"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DB holds the database connection.
type DB struct {
	*gorm.DB
	migrateURL string
}

// NewDB creates a new database connection for the configured driver.
func NewDB(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	switch cfg.Driver {
	case "postgres":
		return newPostgres(&cfg.Postgres, log)
	case "sqlite":
		return OpenSQLite(cfg.SQLite.Path, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gormConfig(log *logger.Logger) *gorm.Config {
	// Configure GORM logger
	gormLogLevel := gormlogger.Warn
	if log.IsDebug() {
		gormLogLevel = gormlogger.Info
	}

	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	}
}

func newPostgres(cfg *config.PostgresConfig, log *logger.Logger) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to PostgreSQL")

	migrateURL := (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
	}).String()

	return &DB{DB: db, migrateURL: migrateURL}, nil
}

// OpenSQLite opens a SQLite database. ":memory:" gives a private in-memory database,
// which is what the tests use.
func OpenSQLite(path string, log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Nop()
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// SQLite allows a single writer; an in-memory database also lives on one connection only.
	sqlDB.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is off)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	log.Info().Str("path", path).Msg("Opened SQLite database")

	return &DB{DB: db}, nil
}

// Migrate brings the schema up to date. PostgreSQL uses the embedded SQL migrations;
// SQLite is migrated from the models.
func (db *DB) Migrate() error {
	if db.migrateURL == "" {
		return db.AutoMigrate()
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, db.migrateURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// AutoMigrate runs database migrations for all models.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.WasteItem{},
		&models.Challenge{},
		&models.UserChallenge{},
		&models.Badge{},
		&models.UserBadge{},
		&models.CleanlinessReport{},
		&models.ActivityLog{},
		&models.CityData{},
	)
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database is healthy.
func (db *DB) Health(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Repositories bundles every repository over one connection or transaction.
type Repositories struct {
	db *DB

	Users      *UserRepository
	Waste      *WasteRepository
	Challenges *ChallengeRepository
	Badges     *BadgeRepository
	Activities *ActivityRepository
	Reports    *ReportRepository
	Cities     *CityRepository
}

// NewRepositories creates the repository set for db.
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		db:         db,
		Users:      NewUserRepository(db),
		Waste:      NewWasteRepository(db),
		Challenges: NewChallengeRepository(db),
		Badges:     NewBadgeRepository(db),
		Activities: NewActivityRepository(db),
		Reports:    NewReportRepository(db),
		Cities:     NewCityRepository(db),
	}
}

// DB returns the underlying connection.
func (r *Repositories) DB() *DB {
	return r.db
}

// Transaction runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(&DB{DB: tx, migrateURL: r.db.migrateURL}))
	})
}

// WithContext returns repositories whose queries carry ctx.
func (r *Repositories) WithContext(ctx context.Context) *Repositories {
	return NewRepositories(&DB{DB: r.db.WithContext(ctx), migrateURL: r.db.migrateURL})
}
