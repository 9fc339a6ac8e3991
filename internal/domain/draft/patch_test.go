package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

var owner = user.Owner{Email: "ana@example.com", Name: "Ana", Type: user.TypeRegistered}

func TestNameFor(t *testing.T) {
	assert.Equal(t, "draft_Birthday", NameFor("Birthday"))
	d := New(owner, "Birthday", list.Items{})
	assert.Equal(t, "draft_Birthday", d.DraftName)
	assert.Equal(t, StatusUnpaid, d.Status)
}

func TestReplaceItemsReplacesInsteadOfAppending(t *testing.T) {
	d := New(owner, "Birthday", list.Items{Links: []string{"a", "b"}, Messages: []string{"m"}})

	assert.True(t, ReplaceItems{Links: []string{"c"}}.Apply(d))
	assert.Equal(t, []string{"c"}, []string(d.Links))
	assert.Empty(t, d.Messages)

	assert.False(t, ReplaceItems{Links: []string{"c"}}.Apply(d))
}

func TestReplaceItemsResetsStatus(t *testing.T) {
	d := New(owner, "Birthday", list.Items{})
	d.Status = StatusPaid

	assert.True(t, ReplaceItems{}.Apply(d))
	assert.Equal(t, StatusUnpaid, d.Status)
}

func TestAddImageNeverDuplicates(t *testing.T) {
	d := New(owner, "Birthday", list.Items{})
	img := list.Image{ImageName: "cake", URL: "u"}

	assert.True(t, AddImage{Image: img}.Apply(d))
	assert.False(t, AddImage{Image: img}.Apply(d))
	assert.Len(t, d.Images, 1)
}

func TestPullRemovesExactlyOne(t *testing.T) {
	img := list.Image{ImageName: "cake", URL: "u"}
	d := New(owner, "Birthday", list.Items{
		Links:    []string{"a", "a"},
		Messages: []string{"m", "m"},
		Images:   []list.Image{img, img},
	})
	d.Status = StatusPaid

	assert.True(t, PullLink{Link: "a"}.Apply(d))
	assert.True(t, PullMessage{Message: "m"}.Apply(d))
	assert.True(t, PullImage{Image: img}.Apply(d))

	assert.Equal(t, []string{"a"}, []string(d.Links))
	assert.Equal(t, []string{"m"}, []string(d.Messages))
	assert.Len(t, d.Images, 1)
	assert.Equal(t, StatusUnpaid, d.Status)

	assert.False(t, PullLink{Link: "zzz"}.Apply(d))
	assert.False(t, PullMessage{Message: "zzz"}.Apply(d))
	assert.False(t, PullImage{Image: list.Image{ImageName: "cake", URL: "other"}}.Apply(d))
}

func TestClearKeepsShell(t *testing.T) {
	d := New(owner, "Birthday", list.Items{Links: []string{"a"}, Images: []list.Image{{ImageName: "x", URL: "u"}}})

	assert.True(t, Clear{}.Apply(d))
	assert.Equal(t, StatusPaid, d.Status)
	assert.True(t, d.Items().IsEmpty())
	assert.Equal(t, "draft_Birthday", d.DraftName)

	assert.False(t, Clear{}.Apply(d))
}

func TestMarkInconsistent(t *testing.T) {
	d := New(owner, "Birthday", list.Items{})

	assert.True(t, ApplyAll(d, MarkInconsistent{}))
	assert.Equal(t, StatusInconsistent, d.Status)
	assert.False(t, MarkInconsistent{}.Apply(d))
}

func TestViewNeverReturnsNilArrays(t *testing.T) {
	d := &Draft{Status: StatusPaid}
	v := d.View()

	assert.NotNil(t, v.Links)
	assert.NotNil(t, v.Messages)
	assert.NotNil(t, v.Images)
	assert.Equal(t, StatusPaid, v.Status)
}

func TestStatusScan(t *testing.T) {
	var s Status
	assert.NoError(t, s.Scan("inconsistent"))
	assert.Equal(t, StatusInconsistent, s)
	assert.Error(t, s.Scan("refunded"))
}
