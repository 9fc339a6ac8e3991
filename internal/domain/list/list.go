package list

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

// Image is a blob-backed picture attached to a list or draft
type Image struct {
	ImageName string `json:"imageName"`
	URL       string `json:"url"`
}

// Items groups the three kinds of content a list or draft holds
type Items struct {
	Links    []string `json:"links"`
	Messages []string `json:"messages"`
	Images   []Image  `json:"images"`
}

// Count returns the total number of entries
func (i Items) Count() int {
	return len(i.Links) + len(i.Messages) + len(i.Images)
}

// IsEmpty reports whether there is nothing in any of the arrays
func (i Items) IsEmpty() bool {
	return i.Count() == 0
}

// List is the permanent, shareable gift list
type List struct {
	ID         uuid.UUID                  `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerEmail string                     `json:"ownerEmail" gorm:"not null;uniqueIndex:idx_lists_owner_name"`
	OwnerName  string                     `json:"ownerName" gorm:"not null"`
	OwnerType  user.Type                  `json:"ownerType" gorm:"type:owner_type;not null"`
	Name       string                     `json:"name" gorm:"not null;uniqueIndex:idx_lists_owner_name"`
	Links      pq.StringArray             `json:"links" gorm:"type:text[];not null;default:'{}'"`
	Messages   pq.StringArray             `json:"messages" gorm:"type:text[];not null;default:'{}'"`
	Images     datatypes.JSONSlice[Image] `json:"images" gorm:"type:jsonb;not null;default:'[]'"`
	Paid       bool                       `json:"paid" gorm:"not null;default:false"`
	Price      int64                      `json:"price" gorm:"not null;default:0"`
	PaymentID  string                     `json:"paymentId"`
	OrderID    string                     `json:"orderId"`
	CreatedAt  time.Time                  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}

// TableName overrides the table name used by GORM
func (List) TableName() string {
	return "lists"
}

// BeforeCreate sets a UUID before creating the record
func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// New builds a list for owner. Nil arrays are stored as empty ones.
func New(owner user.Owner, name string, links, messages []string, paid bool) *List {
	now := time.Now()
	return &List{
		ID:         uuid.New(),
		OwnerEmail: owner.Email,
		OwnerName:  owner.Name,
		OwnerType:  owner.Type,
		Name:       name,
		Links:      orEmpty(links),
		Messages:   orEmpty(messages),
		Images:     datatypes.JSONSlice[Image]{},
		Paid:       paid,
		Price:      0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Items returns a copy of the list content
func (l *List) Items() Items {
	return Items{
		Links:    slices.Clone([]string(l.Links)),
		Messages: slices.Clone([]string(l.Messages)),
		Images:   slices.Clone([]Image(l.Images)),
	}
}

// HasEntry reports whether value is present among the links or the messages
func (l *List) HasEntry(value string) bool {
	return slices.Contains(l.Links, value) || slices.Contains(l.Messages, value)
}

// HasImageName reports whether an image with this name is already attached
func (l *List) HasImageName(name string) bool {
	return slices.ContainsFunc(l.Images, func(img Image) bool { return img.ImageName == name })
}

// Clone returns a deep copy of the list
func (l *List) Clone() *List {
	c := *l
	c.Links = slices.Clone(l.Links)
	c.Messages = slices.Clone(l.Messages)
	c.Images = slices.Clone(l.Images)
	return &c
}

// Public is the projection served to owners and to the share page
type Public struct {
	Name      string    `json:"name"`
	Links     []string  `json:"links"`
	Messages  []string  `json:"messages"`
	Images    []Image   `json:"images"`
	Paid      bool      `json:"paid"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public projects the fields safe to expose
func (l *List) Public() Public {
	items := l.Items()
	return Public{
		Name:      l.Name,
		Links:     orEmpty(items.Links),
		Messages:  orEmpty(items.Messages),
		Images:    orEmptyImages(items.Images),
		Paid:      l.Paid,
		UpdatedAt: l.UpdatedAt,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyImages(s []Image) []Image {
	if s == nil {
		return []Image{}
	}
	return s
}
