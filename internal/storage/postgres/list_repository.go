package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

// PostgresListRepository stores lists in the lists table
type PostgresListRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresListRepository creates a new PostgreSQL list repository
func NewPostgresListRepository(db *gorm.DB) *PostgresListRepository {
	return &PostgresListRepository{
		db:  db,
		log: logger.Repository("list"),
	}
}

func (r *PostgresListRepository) Create(ctx context.Context, l *list.List) error {
	r.log.Debug("Creating list", "owner_email", l.OwnerEmail, "name", l.Name)

	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Debug("List already exists", "owner_email", l.OwnerEmail, "name", l.Name)
			return common.Conflict("List already exists")
		}
		r.log.Error("Failed to create list", "owner_email", l.OwnerEmail, "name", l.Name, "error", err)
		return fmt.Errorf("failed to create list: %w", err)
	}

	r.log.Info("List created", "id", l.ID, "owner_email", l.OwnerEmail, "name", l.Name)
	return nil
}

func (r *PostgresListRepository) GetByName(ctx context.Context, ownerEmail, name string) (*list.List, error) {
	r.log.Debug("Retrieving list", "owner_email", ownerEmail, "name", name)

	var l list.List
	if err := r.db.WithContext(ctx).Where("owner_email = ? AND name = ?", ownerEmail, name).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("List not found")
		}
		r.log.Error("Failed to get list", "owner_email", ownerEmail, "name", name, "error", err)
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return &l, nil
}

func (r *PostgresListRepository) GetAllByOwner(ctx context.Context, ownerEmail string) ([]*list.List, error) {
	var lists []*list.List
	if err := r.db.WithContext(ctx).Where("owner_email = ?", ownerEmail).Order("created_at ASC").Find(&lists).Error; err != nil {
		r.log.Error("Failed to get lists", "owner_email", ownerEmail, "error", err)
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}

	r.log.Debug("Retrieved lists", "owner_email", ownerEmail, "count", len(lists))
	return lists, nil
}

func (r *PostgresListRepository) CountByOwner(ctx context.Context, ownerEmail string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&list.List{}).Where("owner_email = ?", ownerEmail).Count(&count).Error; err != nil {
		r.log.Error("Failed to count lists", "owner_email", ownerEmail, "error", err)
		return 0, fmt.Errorf("failed to count lists: %w", err)
	}
	return count, nil
}

func (r *PostgresListRepository) HasEntry(ctx context.Context, ownerEmail, name, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&list.List{}).
		Where("owner_email = ? AND name = ?", ownerEmail, name).
		Where("? = ANY(links) OR ? = ANY(messages)", value, value).
		Count(&count).Error
	if err != nil {
		r.log.Error("Failed to probe list entry", "owner_email", ownerEmail, "name", name, "error", err)
		return false, fmt.Errorf("failed to probe list entry: %w", err)
	}
	return count > 0, nil
}

// Update locks the row, applies the patches in Go and writes the row back
// only if something changed.
func (r *PostgresListRepository) Update(ctx context.Context, ownerEmail, name string, patches ...list.Patch) (common.UpdateResult, error) {
	var result common.UpdateResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l list.List
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_email = ? AND name = ?", ownerEmail, name).
			First(&l).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		result.Matched = true
		if !list.ApplyAll(&l, patches...) {
			return nil
		}

		l.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&l).Error; err != nil {
			return err
		}
		result.Modified = true
		return nil
	})
	if err != nil {
		r.log.Error("Failed to update list", "owner_email", ownerEmail, "name", name, "error", err)
		return common.UpdateResult{}, fmt.Errorf("failed to update list: %w", err)
	}

	r.log.Debug("List update applied", "owner_email", ownerEmail, "name", name,
		"matched", result.Matched, "modified", result.Modified)
	return result, nil
}

func (r *PostgresListRepository) Delete(ctx context.Context, ownerEmail, name string) error {
	res := r.db.WithContext(ctx).Where("owner_email = ? AND name = ?", ownerEmail, name).Delete(&list.List{})
	if res.Error != nil {
		r.log.Error("Failed to delete list", "owner_email", ownerEmail, "name", name, "error", res.Error)
		return fmt.Errorf("failed to delete list: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFound("List not found")
	}

	r.log.Info("List deleted", "owner_email", ownerEmail, "name", name)
	return nil
}
