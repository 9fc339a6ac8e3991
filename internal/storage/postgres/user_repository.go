package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

// PostgresUserRepository implements UserRepository using GORM
type PostgresUserRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:  db,
		log: logger.Repository("user"),
	}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	r.log.Debug("Creating user", "email", u.Email, "type", u.Type)

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Debug("User with email already exists", "email", u.Email)
			return common.Conflict("User already exists")
		}
		r.log.Error("Failed to create user", "email", u.Email, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("User created successfully", "id", u.ID, "email", u.Email)
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.log.Debug("Retrieving user by email", "email", email)

	var u user.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("User not found")
		}
		r.log.Error("Failed to get user by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&user.User{})
	if res.Error != nil {
		r.log.Error("Failed to delete user", "email", email, "error", res.Error)
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFound("User not found")
	}

	r.log.Info("User deleted successfully", "email", email)
	return nil
}

func (r *PostgresUserRepository) DeleteGuests(ctx context.Context, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("email IN ? AND type = ?", emails, user.TypeGuest).
		Delete(&user.User{})
	if res.Error != nil {
		r.log.Error("Failed to delete guests", "count", len(emails), "error", res.Error)
		return 0, fmt.Errorf("failed to delete guests: %w", res.Error)
	}

	r.log.Info("Guests deleted", "requested", len(emails), "deleted", res.RowsAffected)
	return res.RowsAffected, nil
}
