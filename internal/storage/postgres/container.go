package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

// Container owns the connection and the repositories built on it
type Container struct {
	db          *gorm.DB
	log         *log.Logger
	listRepo    *PostgresListRepository
	draftRepo   *PostgresDraftRepository
	userRepo    *PostgresUserRepository
	paymentRepo *PostgresPaymentRepository
}

// NewContainer connects, migrates and initializes every repository
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	db, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		_ = Close(db)
		return nil, err
	}

	container := NewContainerWithDB(db)
	if err := container.Health(context.Background()); err != nil {
		_ = Close(db)
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized")
	return container, nil
}

// NewContainerWithDB creates a container with an existing database connection
func NewContainerWithDB(db *gorm.DB) *Container {
	return &Container{
		db:          db,
		log:         logger.Repository("postgres_container"),
		listRepo:    NewPostgresListRepository(db),
		draftRepo:   NewPostgresDraftRepository(db),
		userRepo:    NewPostgresUserRepository(db),
		paymentRepo: NewPostgresPaymentRepository(db),
	}
}

// Lists returns the list repository
func (c *Container) Lists() *PostgresListRepository {
	return c.listRepo
}

// Drafts returns the draft repository
func (c *Container) Drafts() *PostgresDraftRepository {
	return c.draftRepo
}

// Users returns the user repository
func (c *Container) Users() *PostgresUserRepository {
	return c.userRepo
}

// Payments returns the payment repository
func (c *Container) Payments() *PostgresPaymentRepository {
	return c.paymentRepo
}

// Health pings the database and probes every table
func (c *Container) Health(ctx context.Context) error {
	if err := HealthCheck(ctx, c.db); err != nil {
		c.log.Error("Database health check failed", "error", err)
		return err
	}

	for _, table := range []string{"users", "lists", "drafts", "payments"} {
		var count int64
		if err := c.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			c.log.Error("Repository health check failed", "table", table, "error", err)
			return fmt.Errorf("table %s health check failed: %w", table, err)
		}
	}
	return nil
}

// Close gracefully shuts down the container and closes database connections
func (c *Container) Close() error {
	c.log.Info("Closing PostgreSQL repository container...")
	if err := Close(c.db); err != nil {
		c.log.Error("Failed to close database connection", "error", err)
		return err
	}
	c.db = nil
	return nil
}

// GetDB returns the underlying database connection
func (c *Container) GetDB() *gorm.DB {
	return c.db
}
