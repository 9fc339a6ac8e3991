package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/payment"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
	"github.com/gravadigital/giftlist-api/internal/logger"
	"github.com/gravadigital/giftlist-api/internal/notify"
	gateway "github.com/gravadigital/giftlist-api/internal/payment"
	"github.com/gravadigital/giftlist-api/internal/storage"
	"github.com/gravadigital/giftlist-api/internal/validation"
)

// Promoter merges a paid draft into its list
type Promoter interface {
	PromoteAndClear(ctx context.Context, ownerEmail, listName, draftName string) error
}

// PaymentMarker records a direct list payment
type PaymentMarker interface {
	SetPaymentStatus(ctx context.Context, ownerEmail, listName string, status list.SetPayment) error
}

// CheckoutOptions are the static parts of the hosted checkout payload
type CheckoutOptions struct {
	KeyID      string
	Currency   string
	Name       string
	ThemeColor string
}

// PaymentDeps are the collaborators of the payment service
type PaymentDeps struct {
	Lists     storage.ListRepository
	Drafts    storage.DraftRepository
	Payments  storage.PaymentRepository
	Gateway   gateway.OrderCreator
	Verifier  *gateway.Verifier
	Publisher notify.Publisher
	Promoter  Promoter
	Marker    PaymentMarker
	Checkout  CheckoutOptions
}

// PaymentService is the Payment Orchestrator: it opens gateway orders, checks
// signed callbacks and unlocks the paid content exactly once per order.
type PaymentService struct {
	PaymentDeps
	now func() time.Time
	log *log.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(deps PaymentDeps) *PaymentService {
	if deps.Publisher == nil {
		deps.Publisher = notify.NoopPublisher{}
	}
	return &PaymentService{
		PaymentDeps: deps,
		now:         time.Now,
		log:         logger.Service("payment"),
	}
}

// Prefill is the customer data shown by the hosted checkout
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Theme styles the hosted checkout
type Theme struct {
	Color string `json:"color"`
}

// Checkout is the payload the client hands to the hosted checkout widget
type Checkout struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// CreateOrder prices the content unlocked by flow, checks it may be paid
// for and opens a gateway order bound to the owner and list.
func (s *PaymentService) CreateOrder(ctx context.Context, owner user.Owner, listName string, flow payment.Flow) (*Checkout, error) {
	if err := validation.ValidateListKey(owner.Email, listName); err != nil {
		return nil, err
	}

	l, err := s.Lists.GetByName(ctx, owner.Email, listName)
	if err != nil {
		return nil, classify("Failed to fetch list", err)
	}

	var items list.Items
	switch flow {
	case payment.FlowDraft:
		d, err := s.Drafts.Get(ctx, owner.Email, listName, draft.NameFor(listName))
		if err != nil {
			return nil, classify("Failed to fetch draft", err)
		}
		items = d.Items()
		if err := payment.CheckPayable(owner.Type, items, false); err != nil {
			return nil, err
		}
	case payment.FlowList:
		items = l.Items()
		if err := payment.CheckPayable(owner.Type, items, l.Paid); err != nil {
			return nil, err
		}
	default:
		return nil, common.InvalidArgument(fmt.Sprintf("Unknown payment flow: %s", flow))
	}

	price := payment.PriceOf(items)
	amount := price * payment.MinorUnits
	order, err := s.Gateway.CreateOrder(ctx, gateway.OrderRequest{
		AmountMinor: amount,
		Currency:    s.Checkout.Currency,
		Receipt:     payment.Receipt(s.now()),
		Notes: map[string]string{
			"listName":  listName,
			"draftName": draft.NameFor(listName),
			"userEmail": owner.Email,
			"flow":      string(flow),
		},
	})
	if err != nil {
		s.log.Error("Failed to create order", "owner_email", owner.Email, "list", listName, "error", err)
		return nil, common.Upstream("Could not create order. Please try again.", err)
	}

	err = s.Payments.Record(ctx, &payment.Record{
		OrderID:    order.ID,
		OwnerEmail: owner.Email,
		ListName:   listName,
		Flow:       flow,
		Status:     payment.StatusCreated,
		Amount:     amount,
	})
	if err != nil {
		s.log.Error("Failed to record order", "order_id", order.ID, "error", err)
		return nil, classify("Could not create order. Please try again.", err)
	}

	s.log.Info("Order created", "order_id", order.ID, "owner_email", owner.Email, "list", listName, "flow", flow, "price", price)
	return &Checkout{
		Key:         s.Checkout.KeyID,
		Amount:      amount,
		Currency:    s.Checkout.Currency,
		Name:        s.Checkout.Name,
		Description: "Payment for list: " + listName,
		OrderID:     order.ID,
		Prefill:     Prefill{Name: owner.Name, Email: owner.Email},
		Theme:       Theme{Color: s.Checkout.ThemeColor},
	}, nil
}

// Callback is the signed payload the hosted checkout returns on success
type Callback struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verification is the outcome of a verified callback
type Verification struct {
	OrderID  string       `json:"orderId"`
	ListName string       `json:"listName"`
	Flow     payment.Flow `json:"flow"`
	// Replayed is set when the order had already been captured.
	Replayed bool `json:"replayed"`
}

// Verify checks the callback signature and unlocks the paid content. Nothing
// is read or written before the signature matches. A callback for an order
// that was already captured succeeds without unlocking anything again.
func (s *PaymentService) Verify(ctx context.Context, owner user.Owner, cb Callback) (*Verification, error) {
	if cb.OrderID == "" || cb.PaymentID == "" || cb.Signature == "" {
		return nil, common.InvalidArgument("order id, payment id and signature are required")
	}
	if !s.Verifier.Verify(cb.OrderID, cb.PaymentID, cb.Signature) {
		s.log.Warn("Invalid payment signature", "order_id", cb.OrderID, "owner_email", owner.Email)
		return nil, common.VerificationFailed("Invalid payment signature")
	}

	rec, err := s.Payments.GetByOrderID(ctx, cb.OrderID)
	if err != nil {
		return nil, classify("Failed to fetch order", err)
	}
	if rec.OwnerEmail != owner.Email {
		return nil, common.Unauthorized("Order belongs to another owner")
	}

	result := &Verification{OrderID: rec.OrderID, ListName: rec.ListName, Flow: rec.Flow}
	claimed, err := s.claim(ctx, rec.OrderID, cb.PaymentID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		result.Replayed = true
		s.log.Info("Payment already captured", "order_id", rec.OrderID)
		return result, nil
	}

	if err := s.unlock(ctx, rec, cb.PaymentID); err != nil {
		s.log.Error("Failed to unlock paid content", "order_id", rec.OrderID, "flow", rec.Flow, "error", err)
		s.fail(ctx, rec, cb.PaymentID, payment.StatusProcessing, common.MessageOf(err))
		return nil, err
	}

	ok, err := s.Payments.Transition(ctx, rec.OrderID, payment.StatusProcessing, payment.Change{Status: payment.StatusCaptured})
	if err != nil || !ok {
		// The content is unlocked; a stuck processing record only blocks retries.
		s.log.Error("Failed to mark payment captured", "order_id", rec.OrderID, "applied", ok, "error", err)
	}

	s.publish(ctx, notify.KeyPaymentPaid, rec, cb.PaymentID, "")
	s.log.Info("Payment verified", "order_id", rec.OrderID, "owner_email", owner.Email, "list", rec.ListName, "flow", rec.Flow)
	return result, nil
}

// claim moves the order into processing. It returns false when the order
// was already captured.
func (s *PaymentService) claim(ctx context.Context, orderID, paymentID string) (bool, error) {
	to := payment.Change{Status: payment.StatusProcessing, PaymentID: paymentID}
	for _, from := range []payment.Status{payment.StatusCreated, payment.StatusFailed} {
		ok, err := s.Payments.Transition(ctx, orderID, from, to)
		if err != nil {
			return false, classify("Failed to claim order", err)
		}
		if ok {
			return true, nil
		}
	}

	rec, err := s.Payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return false, classify("Failed to fetch order", err)
	}
	if rec.Status == payment.StatusCaptured {
		return false, nil
	}
	return false, common.Conflict("Payment is already being processed")
}

func (s *PaymentService) unlock(ctx context.Context, rec *payment.Record, paymentID string) error {
	switch rec.Flow {
	case payment.FlowList:
		return s.Marker.SetPaymentStatus(ctx, rec.OwnerEmail, rec.ListName, list.SetPayment{
			Paid:      true,
			Price:     rec.Amount / payment.MinorUnits,
			PaymentID: paymentID,
			OrderID:   rec.OrderID,
		})
	default:
		return s.Promoter.PromoteAndClear(ctx, rec.OwnerEmail, rec.ListName, draft.NameFor(rec.ListName))
	}
}

// Failure is what the hosted checkout reports when a payment fails
type Failure struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Reason    string `json:"reason"`
}

// Failed records a failed attempt. The list and draft are not touched.
func (s *PaymentService) Failed(ctx context.Context, owner user.Owner, f Failure) error {
	if err := validation.ValidateRequired(f.OrderID, "orderId"); err != nil {
		return err
	}
	if f.Reason == "" {
		f.Reason = "Payment failed"
	}

	rec, err := s.Payments.GetByOrderID(ctx, f.OrderID)
	if err != nil {
		return classify("Failed to fetch order", err)
	}
	if rec.OwnerEmail != owner.Email {
		return common.Unauthorized("Order belongs to another owner")
	}

	switch rec.Status {
	case payment.StatusCaptured:
		return common.PreconditionFailed("Payment is already captured")
	case payment.StatusFailed:
		return nil
	case payment.StatusProcessing:
		return common.Conflict("Payment is already being processed")
	}

	if !s.fail(ctx, rec, f.PaymentID, payment.StatusCreated, f.Reason) {
		return common.Conflict("Payment changed state, please retry")
	}
	s.log.Info("Payment failure recorded", "order_id", rec.OrderID, "owner_email", owner.Email, "reason", f.Reason)
	return nil
}

// fail moves the record from status to failed and announces it
func (s *PaymentService) fail(ctx context.Context, rec *payment.Record, paymentID string, from payment.Status, reason string) bool {
	ctx = context.WithoutCancel(ctx)
	ok, err := s.Payments.Transition(ctx, rec.OrderID, from, payment.Change{Status: payment.StatusFailed, PaymentID: paymentID, Reason: reason})
	if err != nil {
		s.log.Error("Failed to mark payment failed", "order_id", rec.OrderID, "error", err)
		return false
	}
	if ok {
		s.publish(ctx, notify.KeyPaymentFailed, rec, paymentID, reason)
	}
	return ok
}

// publish never fails the caller; the payment outcome is already persisted.
func (s *PaymentService) publish(ctx context.Context, key string, rec *payment.Record, paymentID, reason string) {
	evt := notify.PaymentEvent{
		OrderID:    rec.OrderID,
		PaymentID:  paymentID,
		OwnerEmail: rec.OwnerEmail,
		ListName:   rec.ListName,
		Flow:       string(rec.Flow),
		Amount:     rec.Amount,
		Reason:     reason,
		OccurredAt: s.now().UTC(),
	}

	var err error
	if key == notify.KeyPaymentPaid {
		err = s.Publisher.PublishPaymentPaid(ctx, evt)
	} else {
		err = s.Publisher.PublishPaymentFailed(ctx, evt)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("Failed to publish payment event", "key", key, "order_id", rec.OrderID, "error", err)
	}
}
