// Package payment talks to the Razorpay order API and verifies the signed
// checkout callback.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	razorpay "github.com/razorpay/razorpay-go"

	"github.com/gravadigital/giftlist-api/internal/logger"
)

// OrderRequest describes an order to open with the gateway
type OrderRequest struct {
	// AmountMinor is in the smallest currency unit (paise for INR).
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order is the gateway's answer to an OrderRequest
type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
}

// OrderCreator opens orders with a payment gateway
type OrderCreator interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates orders through the Razorpay REST API
type RazorpayGateway struct {
	orders orderAPI
	log    *log.Logger
}

// NewRazorpayGateway builds a gateway authenticated with the key pair
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return newRazorpayGateway(razorpay.NewClient(keyID, keySecret).Order)
}

func newRazorpayGateway(orders orderAPI) *RazorpayGateway {
	return &RazorpayGateway{orders: orders, log: logger.Payment()}
}

// CreateOrder opens an order. The SDK call is not cancellable, so ctx is
// only checked before the request is sent.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}

	g.log.Debug("Creating order", "amount", req.AmountMinor, "currency", req.Currency, "receipt", req.Receipt)
	body, err := g.orders.Create(map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}, nil)
	if err != nil {
		g.log.Error("Order creation failed", "receipt", req.Receipt, "error", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		g.log.Error("Order response without id", "receipt", req.Receipt, "body", body)
		return nil, errors.New("order response did not include an id")
	}

	g.log.Info("Order created", "order_id", id, "amount", req.AmountMinor)
	return &Order{
		ID:          id,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
	}, nil
}
