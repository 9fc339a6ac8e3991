package draft

import (
	"slices"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/gravadigital/giftlist-api/internal/domain/list"
)

// Patch is a single mutation of a draft row. Apply reports whether the
// draft changed. Content changes always leave the draft unpaid.
type Patch interface {
	Apply(d *Draft) bool
}

// ReplaceItems overwrites the links and messages wholesale
type ReplaceItems struct {
	Links    []string
	Messages []string
}

func (p ReplaceItems) Apply(d *Draft) bool {
	links := pq.StringArray(orEmpty(p.Links))
	messages := pq.StringArray(orEmpty(p.Messages))
	changed := !slices.Equal(d.Links, links) || !slices.Equal(d.Messages, messages) || d.Status != StatusUnpaid
	d.Links = slices.Clone(links)
	d.Messages = slices.Clone(messages)
	d.Status = StatusUnpaid
	return changed
}

// AddImage adds the image unless the same name and url pair is present
type AddImage struct {
	Image list.Image
}

func (p AddImage) Apply(d *Draft) bool {
	if slices.Contains(d.Images, p.Image) {
		return false
	}
	d.Images = append(d.Images, p.Image)
	d.Status = StatusUnpaid
	return true
}

// PullLink removes one occurrence of a link
type PullLink struct {
	Link string
}

func (p PullLink) Apply(d *Draft) bool {
	i := slices.Index(d.Links, p.Link)
	if i < 0 {
		return false
	}
	d.Links = slices.Delete(d.Links, i, i+1)
	d.Status = StatusUnpaid
	return true
}

// PullMessage removes one occurrence of a message
type PullMessage struct {
	Message string
}

func (p PullMessage) Apply(d *Draft) bool {
	i := slices.Index(d.Messages, p.Message)
	if i < 0 {
		return false
	}
	d.Messages = slices.Delete(d.Messages, i, i+1)
	d.Status = StatusUnpaid
	return true
}

// PullImage removes one image matching both name and url
type PullImage struct {
	Image list.Image
}

func (p PullImage) Apply(d *Draft) bool {
	i := slices.Index(d.Images, p.Image)
	if i < 0 {
		return false
	}
	d.Images = slices.Delete(d.Images, i, i+1)
	d.Status = StatusUnpaid
	return true
}

// Clear empties the draft and marks it paid once its content is promoted.
// The row itself is kept.
type Clear struct{}

func (Clear) Apply(d *Draft) bool {
	changed := len(d.Links) > 0 || len(d.Messages) > 0 || len(d.Images) > 0 || d.Status != StatusPaid
	d.Links = pq.StringArray{}
	d.Messages = pq.StringArray{}
	d.Images = datatypes.JSONSlice[list.Image]{}
	d.Status = StatusPaid
	return changed
}

// MarkInconsistent flags a draft that needs reconciliation
type MarkInconsistent struct{}

func (MarkInconsistent) Apply(d *Draft) bool {
	if d.Status == StatusInconsistent {
		return false
	}
	d.Status = StatusInconsistent
	return true
}

// ApplyAll applies patches in order and reports whether any changed the draft
func ApplyAll(d *Draft, patches ...Patch) bool {
	var changed bool
	for _, p := range patches {
		if p.Apply(d) {
			changed = true
		}
	}
	return changed
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
