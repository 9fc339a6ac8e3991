package draft

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gravadigital/giftlist-api/internal/domain/list"
	"github.com/gravadigital/giftlist-api/internal/domain/user"
)

// NamePrefix is prepended to a list name to build its draft name
const NamePrefix = "draft_"

// NameFor returns the deterministic draft name for a list
func NameFor(listName string) string {
	return NamePrefix + listName
}

// Status tracks whether the staged content has been paid for and promoted
type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
	// StatusInconsistent marks a draft whose promotion could not be undone
	StatusInconsistent Status = "inconsistent"
)

// Scan implements the sql.Scanner interface for database deserialization
func (s *Status) Scan(value interface{}) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}

	switch Status(str) {
	case StatusUnpaid, StatusPaid, StatusInconsistent:
		*s = Status(str)
		return nil
	default:
		return fmt.Errorf("invalid draft status: %s", str)
	}
}

// Value implements the driver.Valuer interface for database serialization
func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}

// Draft stages content for a list until it is paid for
type Draft struct {
	ID         uuid.UUID                       `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerEmail string                          `json:"ownerEmail" gorm:"not null;uniqueIndex:idx_drafts_owner_list"`
	OwnerName  string                          `json:"ownerName" gorm:"not null"`
	OwnerType  user.Type                       `json:"ownerType" gorm:"type:owner_type;not null"`
	ListName   string                          `json:"listName" gorm:"not null;uniqueIndex:idx_drafts_owner_list"`
	DraftName  string                          `json:"draftName" gorm:"not null"`
	Status     Status                          `json:"status" gorm:"type:draft_status;not null;default:'unpaid'"`
	Links      pq.StringArray                  `json:"links" gorm:"type:text[];not null;default:'{}'"`
	Messages   pq.StringArray                  `json:"messages" gorm:"type:text[];not null;default:'{}'"`
	Images     datatypes.JSONSlice[list.Image] `json:"images" gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt  time.Time                       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time                       `json:"updatedAt"`
}

// TableName overrides the table name used by GORM
func (Draft) TableName() string {
	return "drafts"
}

// BeforeCreate sets a UUID before creating the record
func (d *Draft) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// New builds an unpaid draft for owner's list
func New(owner user.Owner, listName string, items list.Items) *Draft {
	now := time.Now()
	d := &Draft{
		ID:         uuid.New(),
		OwnerEmail: owner.Email,
		OwnerName:  owner.Name,
		OwnerType:  owner.Type,
		ListName:   listName,
		DraftName:  NameFor(listName),
		Status:     StatusUnpaid,
		Links:      pq.StringArray{},
		Messages:   pq.StringArray{},
		Images:     datatypes.JSONSlice[list.Image]{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	d.Links = append(d.Links, items.Links...)
	d.Messages = append(d.Messages, items.Messages...)
	d.Images = append(d.Images, items.Images...)
	return d
}

// Items returns a copy of the staged content
func (d *Draft) Items() list.Items {
	return list.Items{
		Links:    slices.Clone([]string(d.Links)),
		Messages: slices.Clone([]string(d.Messages)),
		Images:   slices.Clone([]list.Image(d.Images)),
	}
}

// Clone returns a deep copy of the draft
func (d *Draft) Clone() *Draft {
	c := *d
	c.Links = slices.Clone(d.Links)
	c.Messages = slices.Clone(d.Messages)
	c.Images = slices.Clone(d.Images)
	return &c
}

// View is what fetchDraft returns to callers
type View struct {
	Links    []string     `json:"links"`
	Messages []string     `json:"messages"`
	Images   []list.Image `json:"images"`
	Status   Status       `json:"status"`
}

// View projects the draft content and status
func (d *Draft) View() View {
	items := d.Items()
	v := View{Links: items.Links, Messages: items.Messages, Images: items.Images, Status: d.Status}
	if v.Links == nil {
		v.Links = []string{}
	}
	if v.Messages == nil {
		v.Messages = []string{}
	}
	if v.Images == nil {
		v.Images = []list.Image{}
	}
	return v
}
