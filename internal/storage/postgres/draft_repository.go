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
	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

// PostgresDraftRepository stores drafts in the drafts table
type PostgresDraftRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresDraftRepository creates a new PostgreSQL draft repository
func NewPostgresDraftRepository(db *gorm.DB) *PostgresDraftRepository {
	return &PostgresDraftRepository{
		db:  db,
		log: logger.Repository("draft"),
	}
}

const draftKeyFilter = "owner_email = ? AND list_name = ? AND draft_name = ?"

func (r *PostgresDraftRepository) Create(ctx context.Context, d *draft.Draft) error {
	r.log.Debug("Creating draft", "owner_email", d.OwnerEmail, "list_name", d.ListName)

	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if isUniqueViolation(err) {
			return common.Conflict("Draft already exists")
		}
		r.log.Error("Failed to create draft", "owner_email", d.OwnerEmail, "list_name", d.ListName, "error", err)
		return fmt.Errorf("failed to create draft: %w", err)
	}

	r.log.Info("Draft created", "id", d.ID, "owner_email", d.OwnerEmail, "list_name", d.ListName)
	return nil
}

func (r *PostgresDraftRepository) Get(ctx context.Context, ownerEmail, listName, draftName string) (*draft.Draft, error) {
	r.log.Debug("Retrieving draft", "owner_email", ownerEmail, "list_name", listName, "draft_name", draftName)

	var d draft.Draft
	if err := r.db.WithContext(ctx).Where(draftKeyFilter, ownerEmail, listName, draftName).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("Draft not found")
		}
		r.log.Error("Failed to get draft", "owner_email", ownerEmail, "list_name", listName, "error", err)
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &d, nil
}

func (r *PostgresDraftRepository) Update(ctx context.Context, ownerEmail, listName, draftName string, patches ...draft.Patch) (common.UpdateResult, error) {
	var result common.UpdateResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d draft.Draft
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(draftKeyFilter, ownerEmail, listName, draftName).
			First(&d).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		result.Matched = true
		if !draft.ApplyAll(&d, patches...) {
			return nil
		}

		d.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&d).Error; err != nil {
			return err
		}
		result.Modified = true
		return nil
	})
	if err != nil {
		r.log.Error("Failed to update draft", "owner_email", ownerEmail, "list_name", listName, "error", err)
		return common.UpdateResult{}, fmt.Errorf("failed to update draft: %w", err)
	}
	return result, nil
}

func (r *PostgresDraftRepository) DeleteAll(ctx context.Context, ownerEmail, listName string) (int64, error) {
	res := r.db.WithContext(ctx).Where("owner_email = ? AND list_name = ?", ownerEmail, listName).Delete(&draft.Draft{})
	if res.Error != nil {
		r.log.Error("Failed to delete drafts", "owner_email", ownerEmail, "list_name", listName, "error", res.Error)
		return 0, fmt.Errorf("failed to delete drafts: %w", res.Error)
	}

	r.log.Info("Drafts deleted", "owner_email", ownerEmail, "list_name", listName, "count", res.RowsAffected)
	return res.RowsAffected, nil
}
