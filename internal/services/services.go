// Package services holds the Draft Manager, List Manager, Payment
// Orchestrator and the user service. Every exported operation returns a
// *common.Error so the HTTP layer can render it without inspecting causes.
package services

import (
	"errors"
	"fmt"

	"github.com/gravadigital/giftlist-api/internal/blob"
	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/notify"
	gateway "github.com/gravadigital/giftlist-api/internal/payment"
	"github.com/gravadigital/giftlist-api/internal/storage"
	"github.com/gravadigital/giftlist-api/internal/validation"
)

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Store     *storage.Container
	Blobs     blob.Store
	Gateway   gateway.OrderCreator
	Verifier  *gateway.Verifier
	Publisher notify.Publisher
	Uploads   UploadPolicy
	Checkout  CheckoutOptions
}

// Services bundles every service wired against the same dependencies
type Services struct {
	Drafts   *DraftService
	Lists    *ListService
	Payments *PaymentService
	Users    *UserService
}

// New wires the services
func New(deps Dependencies) *Services {
	drafts := NewDraftService(deps.Store.Drafts, deps.Store.Lists, deps.Blobs, deps.Uploads)
	lists := NewListService(deps.Store.Lists, deps.Store.Drafts, deps.Blobs, deps.Uploads)
	payments := NewPaymentService(PaymentDeps{
		Lists:     deps.Store.Lists,
		Drafts:    deps.Store.Drafts,
		Payments:  deps.Store.Payments,
		Gateway:   deps.Gateway,
		Verifier:  deps.Verifier,
		Publisher: deps.Publisher,
		Promoter:  drafts,
		Marker:    lists,
		Checkout:  deps.Checkout,
	})

	return &Services{
		Drafts:   drafts,
		Lists:    lists,
		Payments: payments,
		Users:    NewUserService(deps.Store.Users),
	}
}

// UploadPolicy bounds image uploads
type UploadPolicy struct {
	MaxFileSize  int64
	AllowedTypes []string
}

// Check validates the size and content type of an upload
func (p UploadPolicy) Check(size int64, contentType string) error {
	if size <= 0 {
		return common.InvalidArgument("Image file is required")
	}
	if p.MaxFileSize > 0 && size > p.MaxFileSize {
		return common.InvalidArgument(fmt.Sprintf("Image exceeds the maximum size of %d bytes", p.MaxFileSize))
	}
	if len(p.AllowedTypes) == 0 {
		return nil
	}
	return validation.ValidateContentType(contentType, p.AllowedTypes)
}

// classify keeps already classified errors and turns everything else into
// an upstream failure carrying msg.
func classify(msg string, err error) error {
	var e *common.Error
	if errors.As(err, &e) {
		return err
	}
	return common.Upstream(msg, err)
}
