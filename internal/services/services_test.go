package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
	"github.com/gravadigital/giftlist-api/internal/notify"
	gateway "github.com/gravadigital/giftlist-api/internal/payment"
	"github.com/gravadigital/giftlist-api/internal/storage"
)

const testSecret = "test_key_secret"

var (
	ana   = user.Owner{Email: "ana@example.com", Name: "Ana", Type: user.TypeRegistered}
	guest = user.Owner{Email: "Guest-7@guest.com", Name: "Bob7", Type: user.TypeGuest}
)

type fakeBlobs struct {
	mu        sync.Mutex
	puts      []string
	deletes   []string
	putErr    error
	deleteErr error
}

func (f *fakeBlobs) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts = append(f.puts, key)
	return "http://blob.local/giftlist/" + key, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, objectURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, objectURL)
	return f.deleteErr
}

type fakeGateway struct {
	requests []gateway.OrderRequest
	err      error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	return &gateway.Order{
		ID:          fmt.Sprintf("order_%d", len(f.requests)),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
	}, nil
}

type fakePublisher struct {
	paid   []notify.PaymentEvent
	failed []notify.PaymentEvent
	err    error
}

func (f *fakePublisher) PublishPaymentPaid(ctx context.Context, evt notify.PaymentEvent) error {
	f.paid = append(f.paid, evt)
	return f.err
}

func (f *fakePublisher) PublishPaymentFailed(ctx context.Context, evt notify.PaymentEvent) error {
	f.failed = append(f.failed, evt)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type testEnv struct {
	store     *storage.Container
	blobs     *fakeBlobs
	gateway   *fakeGateway
	publisher *fakePublisher
	verifier  *gateway.Verifier
	svc       *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     storage.NewMemoryContainer(),
		blobs:     &fakeBlobs{},
		gateway:   &fakeGateway{},
		publisher: &fakePublisher{},
		verifier:  gateway.NewVerifier(testSecret),
	}
	env.svc = New(Dependencies{
		Store:     env.store,
		Blobs:     env.blobs,
		Gateway:   env.gateway,
		Verifier:  env.verifier,
		Publisher: env.publisher,
		Uploads:   UploadPolicy{MaxFileSize: 1 << 20, AllowedTypes: []string{"image/png", "image/jpeg"}},
		Checkout:  CheckoutOptions{KeyID: "rzp_test_key", Currency: "INR", Name: "Gift Qr", ThemeColor: "#3399cc"},
	})
	return env
}

func png() (io.Reader, int64, string) {
	const body = "\x89PNG fake"
	return strings.NewReader(body), int64(len(body)), "image/png"
}

func TestUploadPolicy(t *testing.T) {
	p := UploadPolicy{MaxFileSize: 10, AllowedTypes: []string{"image/png"}}

	assert.NoError(t, p.Check(10, "image/png"))
	assert.ErrorIs(t, p.Check(0, "image/png"), common.ErrInvalidArgument)
	assert.ErrorIs(t, p.Check(11, "image/png"), common.ErrInvalidArgument)
	assert.ErrorIs(t, p.Check(5, "text/plain"), common.ErrInvalidArgument)
	assert.NoError(t, UploadPolicy{}.Check(5, "text/plain"))
}

func TestClassify(t *testing.T) {
	nf := common.NotFound("List not found")
	assert.Same(t, nf, classify("ignored", nf))

	err := classify("Failed to fetch list", errors.New("connection reset"))
	assert.Equal(t, common.KindUpstreamFailure, common.KindOf(err))
	assert.Equal(t, "Failed to fetch list", common.MessageOf(err))
}
