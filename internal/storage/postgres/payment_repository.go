package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/payment"
	"github.com/gravadigital/giftlist-api/internal/logger"
)

// PostgresPaymentRepository stores orders and their callbacks in the payments table
type PostgresPaymentRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresPaymentRepository creates a new PostgreSQL payment repository
func NewPostgresPaymentRepository(db *gorm.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db:  db,
		log: logger.Repository("payment"),
	}
}

func (r *PostgresPaymentRepository) Record(ctx context.Context, rec *payment.Record) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return common.Conflict("Payment already recorded")
		}
		r.log.Error("Failed to record payment", "order_id", rec.OrderID, "error", err)
		return fmt.Errorf("failed to record payment: %w", err)
	}

	r.log.Info("Payment recorded", "order_id", rec.OrderID, "status", rec.Status)
	return nil
}

func (r *PostgresPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*payment.Record, error) {
	var rec payment.Record
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("Payment not found")
		}
		r.log.Error("Failed to get payment", "order_id", orderID, "error", err)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &rec, nil
}

func (r *PostgresPaymentRepository) Transition(ctx context.Context, orderID string, from payment.Status, to payment.Change) (bool, error) {
	updates := map[string]interface{}{"status": to.Status, "reason": to.Reason}
	if to.PaymentID != "" {
		updates["payment_id"] = to.PaymentID
	}

	res := r.db.WithContext(ctx).Model(&payment.Record{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		r.log.Error("Failed to transition payment", "order_id", orderID, "from", from, "to", to.Status, "error", res.Error)
		return false, fmt.Errorf("failed to transition payment: %w", res.Error)
	}

	r.log.Debug("Payment transition", "order_id", orderID, "from", from, "to", to.Status, "applied", res.RowsAffected > 0)
	return res.RowsAffected > 0, nil
}
