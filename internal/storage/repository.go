package storage

import (
	"context"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/payment"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

// ListRepository persists lists keyed by (owner email, name).
type ListRepository interface {
	// Create fails with a Conflict error when the owner already has a list with that name.
	Create(ctx context.Context, l *list.List) error
	GetByName(ctx context.Context, ownerEmail, name string) (*list.List, error)
	GetAllByOwner(ctx context.Context, ownerEmail string) ([]*list.List, error)
	CountByOwner(ctx context.Context, ownerEmail string) (int64, error)
	// HasEntry reports whether value is among the list's links or messages.
	HasEntry(ctx context.Context, ownerEmail, name, value string) (bool, error)
	// Update applies patches atomically to a single row.
	Update(ctx context.Context, ownerEmail, name string, patches ...list.Patch) (common.UpdateResult, error)
	Delete(ctx context.Context, ownerEmail, name string) error
}

// DraftRepository persists drafts keyed by (owner email, list name, draft name).
type DraftRepository interface {
	Create(ctx context.Context, d *draft.Draft) error
	Get(ctx context.Context, ownerEmail, listName, draftName string) (*draft.Draft, error)
	Update(ctx context.Context, ownerEmail, listName, draftName string, patches ...draft.Patch) (common.UpdateResult, error)
	// DeleteAll removes every draft row for the list and returns how many went.
	DeleteAll(ctx context.Context, ownerEmail, listName string) (int64, error)
}

// UserRepository persists owner profiles keyed by email.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Delete(ctx context.Context, email string) error
	// DeleteGuests removes the guest rows among emails; registered rows are left alone.
	DeleteGuests(ctx context.Context, emails []string) (int64, error)
}

// PaymentRepository persists payment callbacks keyed by order id.
type PaymentRepository interface {
	// Record fails with a Conflict error when the order is already recorded.
	Record(ctx context.Context, r *payment.Record) error
	GetByOrderID(ctx context.Context, orderID string) (*payment.Record, error)
	// Transition moves a record out of status from and reports whether the
	// record was in that status.
	Transition(ctx context.Context, orderID string, from payment.Status, to payment.Change) (bool, error)
}

// Container bundles the repositories of one backend.
type Container struct {
	Lists    ListRepository
	Drafts   DraftRepository
	Users    UserRepository
	Payments PaymentRepository

	health func(ctx context.Context) error
	closer func() error
}

// NewContainer assembles a container; health and closer may be nil.
func NewContainer(lists ListRepository, drafts DraftRepository, users UserRepository, payments PaymentRepository,
	health func(ctx context.Context) error, closer func() error) *Container {
	return &Container{
		Lists:    lists,
		Drafts:   drafts,
		Users:    users,
		Payments: payments,
		health:   health,
		closer:   closer,
	}
}

// Health checks the backend
func (c *Container) Health(ctx context.Context) error {
	if c.health == nil {
		return nil
	}
	return c.health(ctx)
}

// Close releases the backend
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
