package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/domain/payment"
)

func (env *testEnv) callback(orderID, paymentID string) Callback {
	return Callback{OrderID: orderID, PaymentID: paymentID, Signature: env.verifier.Sign(orderID, paymentID)}
}

func TestRegisteredListPaymentScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	l, err := env.svc.Lists.CreateOrAppend(ctx, ana, "Birthday", nil, nil)
	require.NoError(t, err)
	assert.False(t, l.Paid)

	_, err = env.svc.Lists.CreateOrAppend(ctx, ana, "Birthday",
		[]string{"a.com", "b.com", "c.com"}, []string{"hi", "hello"})
	require.NoError(t, err)

	_, err = env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowList)
	assert.ErrorIs(t, err, common.ErrPreconditionFailed)
	assert.Equal(t, "Price must be greater than Five Rupees", common.MessageOf(err))
	assert.Empty(t, env.gateway.requests, "no order is opened when a gate fails")

	_, err = env.svc.Lists.CreateOrAppend(ctx, ana, "Birthday", []string{"d.com"}, nil)
	require.NoError(t, err)

	checkout, err := env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowList)
	require.NoError(t, err)
	assert.Equal(t, &Checkout{
		Key:         "rzp_test_key",
		Amount:      600,
		Currency:    "INR",
		Name:        "Gift Qr",
		Description: "Payment for list: Birthday",
		OrderID:     "order_1",
		Prefill:     Prefill{Name: ana.Name, Email: ana.Email},
		Theme:       Theme{Color: "#3399cc"},
	}, checkout)

	req := env.gateway.requests[0]
	assert.Equal(t, int64(600), req.AmountMinor)
	assert.Regexp(t, `^receipt_order_\d+$`, req.Receipt)
	assert.Equal(t, map[string]string{
		"listName":  "Birthday",
		"draftName": "draft_Birthday",
		"userEmail": ana.Email,
		"flow":      "list",
	}, req.Notes)

	result, err := env.svc.Payments.Verify(ctx, ana, env.callback("order_1", "pay_1"))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, payment.FlowList, result.Flow)

	paid, err := env.store.Lists.GetByName(ctx, ana.Email, "Birthday")
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, int64(6), paid.Price)
	assert.Equal(t, "pay_1", paid.PaymentID)
	assert.Equal(t, "order_1", paid.OrderID)
	assert.Equal(t, 6, paid.Items().Count())

	rec, err := env.store.Payments.GetByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCaptured, rec.Status)
	assert.Equal(t, "pay_1", rec.PaymentID)

	require.Len(t, env.publisher.paid, 1)
	assert.Equal(t, int64(600), env.publisher.paid[0].Amount)
	assert.Equal(t, "list", env.publisher.paid[0].Flow)

	_, err = env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowList)
	assert.Equal(t, "List is already paid", common.MessageOf(err))
}

func stagePayableDraft(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	seedList(t, env, "a.com")
	require.NoError(t, env.svc.Drafts.UpsertLinksAndMessages(ctx, ana, "Birthday", birthdayDraft,
		[]string{"b.com", "c.com", "d.com", "e.com"}, []string{"hi", "hello"}))
}

func TestDraftPaymentPromotesOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stagePayableDraft(t, env)

	checkout, err := env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowDraft)
	require.NoError(t, err)
	assert.Equal(t, int64(600), checkout.Amount, "draft items are priced, not the list")

	cb := env.callback(checkout.OrderID, "pay_1")
	result, err := env.svc.Payments.Verify(ctx, ana, cb)
	require.NoError(t, err)
	assert.False(t, result.Replayed)

	l, err := env.store.Lists.GetByName(ctx, ana.Email, "Birthday")
	require.NoError(t, err)
	assert.Len(t, l.Links, 5)
	assert.Len(t, l.Messages, 2)

	v, err := env.svc.Drafts.FetchDraft(ctx, ana.Email, "Birthday", birthdayDraft)
	require.NoError(t, err)
	assert.Equal(t, draft.StatusPaid, v.Status)
	assert.Empty(t, v.Links)

	result, err = env.svc.Payments.Verify(ctx, ana, cb)
	require.NoError(t, err)
	assert.True(t, result.Replayed)

	again, err := env.store.Lists.GetByName(ctx, ana.Email, "Birthday")
	require.NoError(t, err)
	assert.Equal(t, l.Items(), again.Items(), "a replayed callback unlocks nothing")
	assert.Len(t, env.publisher.paid, 1)
}

func TestVerifyTamperedSignatureChangesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stagePayableDraft(t, env)
	checkout, err := env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowDraft)
	require.NoError(t, err)

	listBefore, err := env.store.Lists.GetByName(ctx, ana.Email, "Birthday")
	require.NoError(t, err)
	draftBefore, err := env.store.Drafts.Get(ctx, ana.Email, "Birthday", birthdayDraft)
	require.NoError(t, err)

	cb := env.callback(checkout.OrderID, "pay_1")
	cb.Signature = flipLastHex(cb.Signature)

	_, err = env.svc.Payments.Verify(ctx, ana, cb)
	assert.ErrorIs(t, err, common.ErrVerificationFailed)

	forged := env.callback(checkout.OrderID, "pay_1")
	forged.PaymentID = "pay_2"
	_, err = env.svc.Payments.Verify(ctx, ana, forged)
	assert.ErrorIs(t, err, common.ErrVerificationFailed)

	listAfter, err := env.store.Lists.GetByName(ctx, ana.Email, "Birthday")
	require.NoError(t, err)
	draftAfter, err := env.store.Drafts.Get(ctx, ana.Email, "Birthday", birthdayDraft)
	require.NoError(t, err)
	assert.Equal(t, listBefore, listAfter)
	assert.Equal(t, draftBefore, draftAfter)

	rec, err := env.store.Payments.GetByOrderID(ctx, checkout.OrderID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCreated, rec.Status)
	assert.Empty(t, env.publisher.paid)
	assert.Empty(t, env.publisher.failed)
}

func flipLastHex(sig string) string {
	last := sig[len(sig)-1]
	if last == '0' {
		return sig[:len(sig)-1] + "1"
	}
	return sig[:len(sig)-1] + "0"
}

func TestVerifyRejectsBadRequests(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stagePayableDraft(t, env)
	checkout, err := env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowDraft)
	require.NoError(t, err)

	_, err = env.svc.Payments.Verify(ctx, ana, Callback{OrderID: checkout.OrderID, PaymentID: "pay_1"})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = env.svc.Payments.Verify(ctx, ana, env.callback("order_unknown", "pay_1"))
	assert.ErrorIs(t, err, common.ErrNotFound)

	other := ana
	other.Email = "eve@example.com"
	_, err = env.svc.Payments.Verify(ctx, other, env.callback(checkout.OrderID, "pay_1"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	ok, err := env.store.Payments.Transition(ctx, checkout.OrderID, payment.StatusCreated, payment.Change{Status: payment.StatusProcessing})
	require.NoError(t, err)
	require.True(t, ok)
	_, err = env.svc.Payments.Verify(ctx, ana, env.callback(checkout.OrderID, "pay_1"))
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestVerifyUnlockFailureCanBeRetried(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.svc.Lists.CreateOrAppend(ctx, ana, "Birthday",
		[]string{"a.com", "b.com", "c.com", "d.com"}, []string{"hi", "hello"})
	require.NoError(t, err)
	checkout, err := env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowList)
	require.NoError(t, err)
	require.NoError(t, env.store.Lists.Delete(ctx, ana.Email, "Birthday"))

	cb := env.callback(checkout.OrderID, "pay_1")
	_, err = env.svc.Payments.Verify(ctx, ana, cb)
	assert.ErrorIs(t, err, common.ErrNotFound)

	rec, err := env.store.Payments.GetByOrderID(ctx, checkout.OrderID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, rec.Status)
	assert.Equal(t, "List not found", rec.Reason)
	require.Len(t, env.publisher.failed, 1)

	_, err = env.svc.Lists.CreateOrAppend(ctx, ana, "Birthday", nil, nil)
	require.NoError(t, err)
	result, err := env.svc.Payments.Verify(ctx, ana, cb)
	require.NoError(t, err)
	assert.False(t, result.Replayed)

	l, err := env.store.Lists.GetByName(ctx, ana.Email, "Birthday")
	require.NoError(t, err)
	assert.True(t, l.Paid)
}

func TestVerifySucceedsWhenPublishFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stagePayableDraft(t, env)
	env.publisher.err = errors.New("broker down")
	checkout, err := env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowDraft)
	require.NoError(t, err)

	_, err = env.svc.Payments.Verify(ctx, ana, env.callback(checkout.OrderID, "pay_1"))
	assert.NoError(t, err)
}

func TestPaymentFailedLeavesContentAlone(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	stagePayableDraft(t, env)
	checkout, err := env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowDraft)
	require.NoError(t, err)
	draftBefore, err := env.store.Drafts.Get(ctx, ana.Email, "Birthday", birthdayDraft)
	require.NoError(t, err)

	err = env.svc.Payments.Failed(ctx, ana, Failure{OrderID: checkout.OrderID, PaymentID: "pay_1", Reason: "Card declined"})
	require.NoError(t, err)

	rec, err := env.store.Payments.GetByOrderID(ctx, checkout.OrderID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, rec.Status)
	assert.Equal(t, "Card declined", rec.Reason)
	require.Len(t, env.publisher.failed, 1)
	assert.Equal(t, "Card declined", env.publisher.failed[0].Reason)

	draftAfter, err := env.store.Drafts.Get(ctx, ana.Email, "Birthday", birthdayDraft)
	require.NoError(t, err)
	assert.Equal(t, draftBefore, draftAfter)

	assert.NoError(t, env.svc.Payments.Failed(ctx, ana, Failure{OrderID: checkout.OrderID}), "repeated failures are no-ops")
	assert.Len(t, env.publisher.failed, 1)

	_, err = env.svc.Payments.Verify(ctx, ana, env.callback(checkout.OrderID, "pay_2"))
	require.NoError(t, err, "a later successful attempt still captures the order")

	err = env.svc.Payments.Failed(ctx, ana, Failure{OrderID: checkout.OrderID})
	assert.ErrorIs(t, err, common.ErrPreconditionFailed)

	assert.ErrorIs(t, env.svc.Payments.Failed(ctx, ana, Failure{}), common.ErrInvalidArgument)
	assert.ErrorIs(t, env.svc.Payments.Failed(ctx, ana, Failure{OrderID: "order_unknown"}), common.ErrNotFound)
}

func TestCreateOrderGuards(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.Lists.CreateOrAppend(ctx, guest, "Party", []string{"a.com"}, nil)
	require.NoError(t, err)
	_, err = env.svc.Payments.CreateOrder(ctx, guest, "Party", payment.FlowList)
	assert.Equal(t, "Guests cannot pay for lists", common.MessageOf(err))

	_, err = env.svc.Payments.CreateOrder(ctx, ana, "Missing", payment.FlowList)
	assert.ErrorIs(t, err, common.ErrNotFound)

	seedList(t, env)
	_, err = env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowDraft)
	assert.ErrorIs(t, err, common.ErrNotFound, "no draft to pay for")

	_, err = env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.Flow("gift"))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	require.NoError(t, env.svc.Drafts.UpsertLinksAndMessages(ctx, ana, "Birthday", birthdayDraft,
		[]string{"b.com"}, nil))
	_, err = env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowDraft)
	assert.Equal(t, "Add at least 5 items before paying", common.MessageOf(err))

	require.NoError(t, env.svc.Drafts.UpsertLinksAndMessages(ctx, ana, "Birthday", birthdayDraft,
		[]string{"b.com", "c.com", "d.com"}, []string{"x", "y", "z"}))
	env.gateway.err = errors.New("401 unauthorized")
	_, err = env.svc.Payments.CreateOrder(ctx, ana, "Birthday", payment.FlowDraft)
	assert.Equal(t, common.KindUpstreamFailure, common.KindOf(err))
	assert.Equal(t, "Could not create order. Please try again.", common.MessageOf(err))
}
