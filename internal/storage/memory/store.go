// Package memory is an in-process storage backend. Every update runs under
// the store mutex, giving the same single-row atomicity as the postgres
// backend's row locks.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/payment"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

// Store holds all rows in maps guarded by a single mutex
type Store struct {
	mu       sync.Mutex
	log      *log.Logger
	users    map[string]*user.User
	lists    map[listKey]*list.List
	drafts   map[draftKey]*draft.Draft
	payments map[string]*payment.Record
}

type listKey struct {
	ownerEmail string
	name       string
}

type draftKey struct {
	ownerEmail string
	listName   string
	draftName  string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		log:      logger.Repository("memory"),
		users:    make(map[string]*user.User),
		lists:    make(map[listKey]*list.List),
		drafts:   make(map[draftKey]*draft.Draft),
		payments: make(map[string]*payment.Record),
	}
}

// Lists returns the list repository view of the store
func (s *Store) Lists() *ListRepository { return &ListRepository{s: s} }

// Drafts returns the draft repository view of the store
func (s *Store) Drafts() *DraftRepository { return &DraftRepository{s: s} }

// Users returns the user repository view of the store
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Payments returns the payment repository view of the store
func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{s: s} }

// ListRepository is the in-memory list table
type ListRepository struct{ s *Store }

func (r *ListRepository) Create(ctx context.Context, l *list.List) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := listKey{l.OwnerEmail, l.Name}
	if _, ok := r.s.lists[key]; ok {
		return common.Conflict("List already exists")
	}
	r.s.lists[key] = l.Clone()
	r.s.log.Debug("List created", "owner_email", l.OwnerEmail, "name", l.Name)
	return nil
}

func (r *ListRepository) GetByName(ctx context.Context, ownerEmail, name string) (*list.List, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.lists[listKey{ownerEmail, name}]
	if !ok {
		return nil, common.NotFound("List not found")
	}
	return l.Clone(), nil
}

func (r *ListRepository) GetAllByOwner(ctx context.Context, ownerEmail string) ([]*list.List, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*list.List
	for key, l := range r.s.lists {
		if key.ownerEmail == ownerEmail {
			out = append(out, l.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *list.List) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r *ListRepository) CountByOwner(ctx context.Context, ownerEmail string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for key := range r.s.lists {
		if key.ownerEmail == ownerEmail {
			n++
		}
	}
	return n, nil
}

func (r *ListRepository) HasEntry(ctx context.Context, ownerEmail, name, value string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.lists[listKey{ownerEmail, name}]
	return ok && l.HasEntry(value), nil
}

func (r *ListRepository) Update(ctx context.Context, ownerEmail, name string, patches ...list.Patch) (common.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.lists[listKey{ownerEmail, name}]
	if !ok {
		return common.UpdateResult{}, nil
	}
	if !list.ApplyAll(l, patches...) {
		return common.UpdateResult{Matched: true}, nil
	}
	l.UpdatedAt = time.Now().UTC()
	return common.UpdateResult{Matched: true, Modified: true}, nil
}

func (r *ListRepository) Delete(ctx context.Context, ownerEmail, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := listKey{ownerEmail, name}
	if _, ok := r.s.lists[key]; !ok {
		return common.NotFound("List not found")
	}
	delete(r.s.lists, key)
	return nil
}

// DraftRepository is the in-memory draft table
type DraftRepository struct{ s *Store }

func (r *DraftRepository) Create(ctx context.Context, d *draft.Draft) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key := range r.s.drafts {
		if key.ownerEmail == d.OwnerEmail && key.listName == d.ListName {
			return common.Conflict("Draft already exists")
		}
	}
	r.s.drafts[draftKey{d.OwnerEmail, d.ListName, d.DraftName}] = d.Clone()
	return nil
}

func (r *DraftRepository) Get(ctx context.Context, ownerEmail, listName, draftName string) (*draft.Draft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.drafts[draftKey{ownerEmail, listName, draftName}]
	if !ok {
		return nil, common.NotFound("Draft not found")
	}
	return d.Clone(), nil
}

func (r *DraftRepository) Update(ctx context.Context, ownerEmail, listName, draftName string, patches ...draft.Patch) (common.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.drafts[draftKey{ownerEmail, listName, draftName}]
	if !ok {
		return common.UpdateResult{}, nil
	}
	if !draft.ApplyAll(d, patches...) {
		return common.UpdateResult{Matched: true}, nil
	}
	d.UpdatedAt = time.Now().UTC()
	return common.UpdateResult{Matched: true, Modified: true}, nil
}

func (r *DraftRepository) DeleteAll(ctx context.Context, ownerEmail, listName string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for key := range r.s.drafts {
		if key.ownerEmail == ownerEmail && key.listName == listName {
			delete(r.s.drafts, key)
			n++
		}
	}
	return n, nil
}

// UserRepository is the in-memory user table
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := u.Email
	if _, ok := r.s.users[key]; ok {
		return common.Conflict("User already exists")
	}
	c := *u
	r.s.users[key] = &c
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[email]
	if !ok {
		return nil, common.NotFound("User not found")
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) Delete(ctx context.Context, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := email
	if _, ok := r.s.users[key]; !ok {
		return common.NotFound("User not found")
	}
	delete(r.s.users, key)
	return nil
}

func (r *UserRepository) DeleteGuests(ctx context.Context, emails []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, email := range emails {
		key := email
		if u, ok := r.s.users[key]; ok && u.IsGuest() {
			delete(r.s.users, key)
			n++
		}
	}
	return n, nil
}

// PaymentRepository is the in-memory payments table
type PaymentRepository struct{ s *Store }

func (r *PaymentRepository) Record(ctx context.Context, rec *payment.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.payments[rec.OrderID]; ok {
		return common.Conflict("Payment already recorded")
	}
	c := *rec
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.s.payments[rec.OrderID] = &c
	return nil
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*payment.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.payments[orderID]
	if !ok {
		return nil, common.NotFound("Payment not found")
	}
	c := *rec
	return &c, nil
}

func (r *PaymentRepository) Transition(ctx context.Context, orderID string, from payment.Status, to payment.Change) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.payments[orderID]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to.Status
	rec.Reason = to.Reason
	if to.PaymentID != "" {
		rec.PaymentID = to.PaymentID
	}
	return true, nil
}
