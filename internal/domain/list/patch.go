package list

import (
	"slices"

	"github.com/lib/pq"
)

// Patch is a single mutation of a list row. Apply reports whether the
// list changed, which the stores surface as the modified flag.
type Patch interface {
	Apply(l *List) bool
}

// AddToSet appends only the values not already present
type AddToSet struct {
	Links    []string
	Messages []string
	Images   []Image
}

func (p AddToSet) Apply(l *List) bool {
	var changed bool
	l.Links, changed = addToSet(l.Links, p.Links, changed)
	l.Messages, changed = addToSet(l.Messages, p.Messages, changed)
	for _, img := range p.Images {
		if !slices.Contains(l.Images, img) {
			l.Images = append(l.Images, img)
			changed = true
		}
	}
	return changed
}

func addToSet(dst pq.StringArray, values []string, changed bool) (pq.StringArray, bool) {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
			changed = true
		}
	}
	return dst, changed
}

// Push appends every value, duplicates included
type Push struct {
	Items Items
}

func (p Push) Apply(l *List) bool {
	if p.Items.IsEmpty() {
		return false
	}
	l.Links = append(l.Links, p.Items.Links...)
	l.Messages = append(l.Messages, p.Items.Messages...)
	l.Images = append(l.Images, p.Items.Images...)
	return true
}

// Pull removes every occurrence of each value
type Pull struct {
	Links    []string
	Messages []string
}

func (p Pull) Apply(l *List) bool {
	before := len(l.Links) + len(l.Messages)
	l.Links = slices.DeleteFunc(l.Links, func(s string) bool { return slices.Contains(p.Links, s) })
	l.Messages = slices.DeleteFunc(l.Messages, func(s string) bool { return slices.Contains(p.Messages, s) })
	return len(l.Links)+len(l.Messages) != before
}

// PullImage removes the images matching both name and url
type PullImage struct {
	Image Image
}

func (p PullImage) Apply(l *List) bool {
	before := len(l.Images)
	l.Images = slices.DeleteFunc(l.Images, func(img Image) bool { return img == p.Image })
	return len(l.Images) != before
}

// PullOnce removes one occurrence per value. It undoes a Push.
type PullOnce struct {
	Items Items
}

func (p PullOnce) Apply(l *List) bool {
	var changed bool
	for _, v := range p.Items.Links {
		l.Links, changed = removeOne(l.Links, v, changed)
	}
	for _, v := range p.Items.Messages {
		l.Messages, changed = removeOne(l.Messages, v, changed)
	}
	for _, img := range p.Items.Images {
		if i := slices.Index(l.Images, img); i >= 0 {
			l.Images = slices.Delete(l.Images, i, i+1)
			changed = true
		}
	}
	return changed
}

func removeOne(s pq.StringArray, v string, changed bool) (pq.StringArray, bool) {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1), true
	}
	return s, changed
}

// SetPayment overwrites the payment fields
type SetPayment struct {
	Paid      bool
	Price     int64
	PaymentID string
	OrderID   string
}

func (p SetPayment) Apply(l *List) bool {
	if l.Paid == p.Paid && l.Price == p.Price && l.PaymentID == p.PaymentID && l.OrderID == p.OrderID {
		return false
	}
	l.Paid = p.Paid
	l.Price = p.Price
	l.PaymentID = p.PaymentID
	l.OrderID = p.OrderID
	return true
}

// ApplyAll applies patches in order and reports whether any changed the list
func ApplyAll(l *List, patches ...Patch) bool {
	var changed bool
	for _, p := range patches {
		if p.Apply(l) {
			changed = true
		}
	}
	return changed
}
