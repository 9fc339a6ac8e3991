package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/logger"
	"github.com/gravadigital/giftlist-api/internal/storage/migrations"
)

// ConnectionConfig holds database connection pool settings
type ConnectionConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
}

// DefaultConnectionConfig returns default connection configuration
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    50,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		MaxRetries:      3,
		RetryDelay:      2 * time.Second,
	}
}

// DatabaseMetrics holds database connection metrics
type DatabaseMetrics struct {
	OpenConnections  int
	InUseConnections int
	IdleConnections  int
}

// Connect opens the PostgreSQL connection with the default pool settings
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithConfig(cfg, DefaultConnectionConfig())
}

// ConnectWithConfig opens the connection, retrying with exponential backoff
func ConnectWithConfig(cfg *config.Config, connCfg *ConnectionConfig) (*gorm.DB, error) {
	log := logger.Database()

	if err := validateDatabaseConfig(cfg); err != nil {
		log.Error("Database configuration validation failed", "error", err)
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	log.Debug("Connecting to database", "host", cfg.DB.Host, "port", cfg.DB.Port, "database", cfg.DB.Name)

	var db *gorm.DB
	var err error
	delay := connCfg.RetryDelay

	for attempt := 1; attempt <= connCfg.MaxRetries; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.GetDatabaseURL()), GormConfig(cfg.Server.GinMode == "debug"))
		if err == nil {
			break
		}

		log.Warn("Database connection failed", "attempt", attempt, "error", err)
		if attempt < connCfg.MaxRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}

	if err != nil {
		log.Error("Failed to connect to database after retries", "error", err, "attempts", connCfg.MaxRetries)
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connCfg.MaxRetries, err)
	}

	if err := configureConnectionPool(db, connCfg); err != nil {
		log.Error("Failed to configure connection pool", "error", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := HealthCheck(ctx, db); err != nil {
		log.Error("Database connection test failed", "error", err)
		return nil, err
	}

	log.Info("Connected to PostgreSQL database",
		"host", cfg.DB.Host,
		"database", cfg.DB.Name,
		"max_open_conns", connCfg.MaxOpenConns)

	return db, nil
}

// GormConfig is the gorm configuration shared by the server and the migrate tool.
// TranslateError maps driver unique violations onto gorm.ErrDuplicatedKey.
func GormConfig(verbose bool) *gorm.Config {
	level := gormLogger.Silent
	if verbose {
		level = gormLogger.Info
	}
	return &gorm.Config{
		Logger:         gormLogger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func validateDatabaseConfig(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	if cfg.DB.Host == "" {
		return errors.New("database host cannot be empty")
	}
	if cfg.DB.Port == "" {
		return errors.New("database port cannot be empty")
	}
	if cfg.DB.Name == "" {
		return errors.New("database name cannot be empty")
	}
	if cfg.DB.User == "" {
		return errors.New("database user cannot be empty")
	}
	return nil
}

func configureConnectionPool(db *gorm.DB, cfg *ConnectionConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return nil
}

// GetDatabaseMetrics returns current database connection metrics
func GetDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	sqlDB, err := db.DB()
	if err != nil {
		return &DatabaseMetrics{}
	}

	stats := sqlDB.Stats()
	return &DatabaseMetrics{
		OpenConnections:  stats.OpenConnections,
		InUseConnections: stats.InUse,
		IdleConnections:  stats.Idle,
	}
}

// HealthCheck pings the database
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// AutoMigrate applies all pending migrations
func AutoMigrate(db *gorm.DB) error {
	log := logger.Migration()

	startTime := time.Now()
	if err := migrations.RunMigrations(db); err != nil {
		log.Error("Database migrations failed", "error", err, "duration", time.Since(startTime))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations completed", "duration", time.Since(startTime))
	return nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	metrics := GetDatabaseMetrics(db)
	logger.Database().Debug("Closing database connection",
		"open_connections", metrics.OpenConnections,
		"in_use_connections", metrics.InUseConnections)

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// isUniqueViolation recognises duplicate keys from both the gorm translator
// and lib/pq connections.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
