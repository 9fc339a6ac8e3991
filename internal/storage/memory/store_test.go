package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/giftlist-api/internal/domain/common"
	"github.com/gravadigital/giftlist-api/internal/domain/draft"
	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/payment"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

var owner = user.Owner{Email: "ana@example.com", Name: "Ana", Type: user.TypeRegistered}

func TestListCreateIsUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Lists()

	require.NoError(t, repo.Create(ctx, list.New(owner, "Birthday", nil, nil, false)))
	err := repo.Create(ctx, list.New(owner, "Birthday", nil, nil, false))
	assert.ErrorIs(t, err, common.ErrConflict)

	other := user.Owner{Email: "bo@example.com", Name: "Bo", Type: user.TypeRegistered}
	require.NoError(t, repo.Create(ctx, list.New(other, "Birthday", nil, nil, false)))

	n, err := repo.CountByOwner(ctx, owner.Email)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Lists()
	require.NoError(t, repo.Create(ctx, list.New(owner, "Birthday", []string{"a"}, nil, false)))

	l, err := repo.GetByName(ctx, owner.Email, "Birthday")
	require.NoError(t, err)
	l.Links = append(l.Links, "mutated")

	again, err := repo.GetByName(ctx, owner.Email, "Birthday")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, []string(again.Links))
}

func TestListUpdateReportsMatchedAndModified(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Lists()
	require.NoError(t, repo.Create(ctx, list.New(owner, "Birthday", []string{"a"}, nil, false)))

	res, err := repo.Update(ctx, owner.Email, "Missing", list.AddToSet{Links: []string{"b"}})
	require.NoError(t, err)
	assert.Equal(t, common.UpdateResult{}, res)

	res, err = repo.Update(ctx, owner.Email, "Birthday", list.AddToSet{Links: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, common.UpdateResult{Matched: true}, res)

	res, err = repo.Update(ctx, owner.Email, "Birthday", list.AddToSet{Links: []string{"b"}})
	require.NoError(t, err)
	assert.Equal(t, common.UpdateResult{Matched: true, Modified: true}, res)

	has, err := repo.HasEntry(ctx, owner.Email, "Birthday", "b")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestListConcurrentAddToSetKeepsEveryValue(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Lists()
	require.NoError(t, repo.Create(ctx, list.New(owner, "Birthday", nil, nil, false)))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Update(ctx, owner.Email, "Birthday", list.Push{Items: list.Items{Messages: []string{string(rune('a' + i%26))}}})
		}()
	}
	wg.Wait()

	l, err := repo.GetByName(ctx, owner.Email, "Birthday")
	require.NoError(t, err)
	assert.Len(t, l.Messages, 50)
}

func TestListDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Lists()
	require.NoError(t, repo.Create(ctx, list.New(owner, "Birthday", nil, nil, false)))

	require.NoError(t, repo.Delete(ctx, owner.Email, "Birthday"))
	assert.ErrorIs(t, repo.Delete(ctx, owner.Email, "Birthday"), common.ErrNotFound)

	_, err := repo.GetByName(ctx, owner.Email, "Birthday")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDraftLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Drafts()
	d := draft.New(owner, "Birthday", list.Items{Links: []string{"a"}})
	require.NoError(t, repo.Create(ctx, d))
	assert.ErrorIs(t, repo.Create(ctx, draft.New(owner, "Birthday", list.Items{})), common.ErrConflict)

	res, err := repo.Update(ctx, owner.Email, "Birthday", "draft_Birthday", draft.Clear{})
	require.NoError(t, err)
	assert.True(t, res.Modified)

	got, err := repo.Get(ctx, owner.Email, "Birthday", "draft_Birthday")
	require.NoError(t, err)
	assert.Equal(t, draft.StatusPaid, got.Status)
	assert.True(t, got.Items().IsEmpty())

	_, err = repo.Get(ctx, owner.Email, "Birthday", "draft_Other")
	assert.ErrorIs(t, err, common.ErrNotFound)

	n, err := repo.DeleteAll(ctx, owner.Email, "Birthday")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserDeleteGuestsLeavesRegistered(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()
	guest := user.NewGuest("Ana")
	registered := user.NewRegistered("u1", "Bo", "bo@example.com", "")
	require.NoError(t, repo.Create(ctx, guest))
	require.NoError(t, repo.Create(ctx, registered))
	assert.ErrorIs(t, repo.Create(ctx, registered), common.ErrConflict)

	n, err := repo.DeleteGuests(ctx, []string{guest.Email, registered.Email, "nobody@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByEmail(ctx, registered.Email)
	assert.NoError(t, err)
	_, err = repo.GetByEmail(ctx, guest.Email)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPaymentTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Payments()
	rec := &payment.Record{OrderID: "order_1", OwnerEmail: owner.Email, ListName: "Birthday", Flow: payment.FlowDraft, Status: payment.StatusProcessing}
	require.NoError(t, repo.Record(ctx, rec))
	assert.ErrorIs(t, repo.Record(ctx, rec), common.ErrConflict)

	ok, err := repo.Transition(ctx, "order_1", payment.StatusFailed, payment.Change{Status: payment.StatusCaptured})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Transition(ctx, "order_1", payment.StatusProcessing, payment.Change{Status: payment.StatusCaptured, PaymentID: "pay_1"})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCaptured, got.Status)
	assert.Equal(t, "pay_1", got.PaymentID)
	assert.False(t, got.CreatedAt.IsZero())
}
