package services

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
	"github.com/gravadigital/giftlist-api/internal/logger"
	"github.com/gravadigital/giftlist-api/internal/storage"
	"github.com/gravadigital/giftlist-api/internal/validation"
)

const guestCreateAttempts = 3

// UserService manages owner profiles
type UserService struct {
	users    storage.UserRepository
	newGuest func(name string) *user.User
	log      *log.Logger
}

// NewUserService creates a new user service
func NewUserService(users storage.UserRepository) *UserService {
	return &UserService{
		users:    users,
		newGuest: user.NewGuest,
		log:      logger.Service("user"),
	}
}

// Register stores the profile of a registered session owner
func (s *UserService) Register(ctx context.Context, id string, owner user.Owner, image string) (*user.User, error) {
	if owner.Type == user.TypeGuest {
		return nil, common.PreconditionFailed("Guest sessions cannot register")
	}
	if err := validation.ValidateRequired(owner.Name, "name"); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(owner.Email); err != nil {
		return nil, err
	}
	if id == "" {
		id = owner.Email
	}

	u := user.NewRegistered(id, owner.Name, owner.Email, image)
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.Conflict("User already exists")
		}
		s.log.Error("Failed to register user", "email", owner.Email, "error", err)
		return nil, classify("Failed to register user", err)
	}

	s.log.Info("User registered", "email", owner.Email)
	return u, nil
}

// GetUser returns the stored profile. A guest session whose row is gone
// still gets its ephemeral profile.
func (s *UserService) GetUser(ctx context.Context, owner user.Owner) (*user.User, error) {
	if err := validation.ValidateRequired(owner.Email, "email"); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, owner.Email)
	if errors.Is(err, common.ErrNotFound) && owner.Type == user.TypeGuest {
		return &user.User{
			ID:    strings.TrimSuffix(owner.Email, "@guest.com"),
			Name:  owner.Name,
			Email: owner.Email,
			Image: user.GuestAvatar,
			Type:  user.TypeGuest,
		}, nil
	}
	if err != nil {
		return nil, classify("Failed to fetch user", err)
	}
	return u, nil
}

// DeleteUser removes a profile
func (s *UserService) DeleteUser(ctx context.Context, email string) error {
	if err := validation.ValidateRequired(email, "email"); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, email); err != nil {
		return classify("Failed to delete user", err)
	}

	s.log.Info("User deleted", "email", email)
	return nil
}

// DeleteGuests removes the guest profiles among emails and returns how many went
func (s *UserService) DeleteGuests(ctx context.Context, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, common.InvalidArgument("emails are required")
	}

	n, err := s.users.DeleteGuests(ctx, emails)
	if err != nil {
		s.log.Error("Failed to delete guests", "count", len(emails), "error", err)
		return 0, classify("Failed to delete guests", err)
	}

	s.log.Info("Guests deleted", "requested", len(emails), "deleted", n)
	return n, nil
}

// CreateGuest persists a fresh guest profile. A clash on the random suffix
// is retried with a new one.
func (s *UserService) CreateGuest(ctx context.Context, name string) (*user.User, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateRequired(name, "name"); err != nil {
		return nil, err
	}
	if err := validation.ValidateMaxLength(name, validation.MaxNameLength, "name"); err != nil {
		return nil, err
	}

	var err error
	for range guestCreateAttempts {
		u := s.newGuest(name)
		if err = s.users.Create(ctx, u); err == nil {
			s.log.Info("Guest created", "email", u.Email)
			return u, nil
		}
		if !errors.Is(err, common.ErrConflict) {
			break
		}
	}

	s.log.Error("Failed to create guest", "name", name, "error", err)
	return nil, classify("Failed to create guest", err)
}
