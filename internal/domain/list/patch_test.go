package list

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

func newTestList() *List {
	owner := user.Owner{Email: "ana@example.com", Name: "Ana", Type: user.TypeRegistered}
	return New(owner, "Birthday", []string{"https://www.a.com"}, []string{"hello"}, false)
}

func TestNewDefaultsArrays(t *testing.T) {
	l := New(user.Owner{Email: "ana@example.com"}, "Empty", nil, nil, false)

	assert.NotNil(t, l.Links)
	assert.NotNil(t, l.Messages)
	assert.NotNil(t, l.Images)
	assert.Equal(t, int64(0), l.Price)
	assert.False(t, l.Paid)
}

func TestAddToSetSkipsExisting(t *testing.T) {
	l := newTestList()

	changed := AddToSet{Links: []string{"https://www.a.com", "https://www.b.com"}}.Apply(l)
	assert.True(t, changed)
	assert.Equal(t, []string{"https://www.a.com", "https://www.b.com"}, []string(l.Links))

	changed = AddToSet{Links: []string{"https://www.b.com"}, Messages: []string{"hello"}}.Apply(l)
	assert.False(t, changed)
}

func TestAddToSetImagesMatchOnNameAndURL(t *testing.T) {
	l := newTestList()
	img := Image{ImageName: "cake", URL: "https://s3/bucket/images/1"}

	assert.True(t, AddToSet{Images: []Image{img}}.Apply(l))
	assert.False(t, AddToSet{Images: []Image{img}}.Apply(l))
	assert.True(t, AddToSet{Images: []Image{{ImageName: "cake", URL: "https://s3/bucket/images/2"}}}.Apply(l))
	assert.Len(t, l.Images, 2)
}

func TestPullRemovesAllOccurrences(t *testing.T) {
	l := newTestList()
	Push{Items: Items{Links: []string{"https://www.a.com"}}}.Apply(l)
	assert.Len(t, l.Links, 2)

	assert.True(t, Pull{Links: []string{"https://www.a.com"}}.Apply(l))
	assert.Empty(t, l.Links)
	assert.False(t, Pull{Links: []string{"https://www.a.com"}}.Apply(l))
}

func TestPushThenPullOnceRestores(t *testing.T) {
	l := newTestList()
	before := l.Items()
	pushed := Items{
		Links:    []string{"https://www.a.com", "https://www.c.com"},
		Messages: []string{"bye"},
		Images:   []Image{{ImageName: "x", URL: "u"}},
	}

	assert.True(t, Push{Items: pushed}.Apply(l))
	assert.Equal(t, 6, l.Items().Count())

	assert.True(t, PullOnce{Items: pushed}.Apply(l))
	assert.Equal(t, before.Links, []string(l.Links))
	assert.Equal(t, before.Messages, []string(l.Messages))
	assert.Empty(t, l.Images)
}

func TestPushEmptyIsNoop(t *testing.T) {
	assert.False(t, Push{}.Apply(newTestList()))
}

func TestPullImage(t *testing.T) {
	l := newTestList()
	img := Image{ImageName: "cake", URL: "u1"}
	AddToSet{Images: []Image{img}}.Apply(l)

	assert.False(t, PullImage{Image: Image{ImageName: "cake", URL: "other"}}.Apply(l))
	assert.True(t, PullImage{Image: img}.Apply(l))
	assert.Empty(t, l.Images)
}

func TestSetPaymentIsIdempotent(t *testing.T) {
	l := newTestList()
	p := SetPayment{Paid: true, Price: 6, PaymentID: "pay_1", OrderID: "order_1"}

	assert.True(t, p.Apply(l))
	snapshot := l.Clone()
	assert.False(t, p.Apply(l))
	assert.Equal(t, snapshot, l)
}

func TestApplyAll(t *testing.T) {
	l := newTestList()

	changed := ApplyAll(l, Pull{Links: []string{"missing"}}, AddToSet{Messages: []string{"new"}})
	assert.True(t, changed)
	assert.Equal(t, []string{"hello", "new"}, []string(l.Messages))
}

func TestHelpers(t *testing.T) {
	l := newTestList()
	AddToSet{Images: []Image{{ImageName: "cake", URL: "u"}}}.Apply(l)

	assert.True(t, l.HasEntry("hello"))
	assert.True(t, l.HasEntry("https://www.a.com"))
	assert.False(t, l.HasEntry("nope"))
	assert.True(t, l.HasImageName("cake"))
	assert.Equal(t, 3, l.Items().Count())

	pub := l.Public()
	assert.Equal(t, "Birthday", pub.Name)
	assert.Len(t, pub.Images, 1)
}
