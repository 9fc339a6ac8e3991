package payment

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

const (
	// MinItems is the smallest item count that may be paid for
	MinItems = 5
	// MinPrice is exclusive: the price must be strictly greater
	MinPrice = 5
	// MinorUnits converts a price into the gateway's minor currency unit
	MinorUnits = 100
	// ImageWeight is how many price units one image costs
	ImageWeight = 2
)

// ComputePrice prices content; images are weighted double
func ComputePrice(links, messages, images int) int64 {
	return int64(links + messages + ImageWeight*images)
}

// PriceOf prices a set of items
func PriceOf(items list.Items) int64 {
	return ComputePrice(len(items.Links), len(items.Messages), len(items.Images))
}

// Flow tells which entity a payment unlocks
type Flow string

const (
	FlowDraft Flow = "draft"
	FlowList  Flow = "list"
)

// ParseFlow converts a string to a Flow, defaulting to the draft flow
func ParseFlow(s string) (Flow, error) {
	switch Flow(s) {
	case "", FlowDraft:
		return FlowDraft, nil
	case FlowList:
		return FlowList, nil
	default:
		return "", common.InvalidArgument(fmt.Sprintf("Unknown payment flow: %s", s))
	}
}

// CheckPayable enforces the gates evaluated before an order is opened
func CheckPayable(ownerType user.Type, items list.Items, alreadyPaid bool) error {
	if !user.PolicyFor(ownerType).RequiresPayment() {
		return common.PreconditionFailed("Guests cannot pay for lists")
	}
	if alreadyPaid {
		return common.PreconditionFailed("List is already paid")
	}
	if items.Count() < MinItems {
		return common.PreconditionFailed(fmt.Sprintf("Add at least %d items before paying", MinItems))
	}
	if PriceOf(items) <= MinPrice {
		return common.PreconditionFailed("Price must be greater than Five Rupees")
	}
	return nil
}

// Receipt builds the gateway receipt reference for an order
func Receipt(now time.Time) string {
	return "receipt_order_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// Status of a recorded payment
type Status string

const (
	// StatusCreated binds an opened order to its owner and list
	StatusCreated Status = "created"
	// StatusProcessing claims an order while its content is being unlocked
	StatusProcessing Status = "processing"
	StatusCaptured   Status = "captured"
	StatusFailed     Status = "failed"
)

// Change is the state written by a status transition. An empty PaymentID
// leaves the stored one in place.
type Change struct {
	Status    Status
	PaymentID string
	Reason    string
}

// Record is the durable trace of an order and its callbacks, keyed by order id.
// A captured record makes repeated callbacks for the same order no-ops.
type Record struct {
	OrderID    string    `json:"orderId" gorm:"primaryKey"`
	PaymentID  string    `json:"paymentId"`
	OwnerEmail string    `json:"ownerEmail" gorm:"not null;index"`
	ListName   string    `json:"listName" gorm:"not null"`
	Flow       Flow      `json:"flow" gorm:"not null"`
	Status     Status    `json:"status" gorm:"not null"`
	Amount     int64     `json:"amount" gorm:"not null;default:0"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName overrides the table name used by GORM
func (Record) TableName() string {
	return "payments"
}
