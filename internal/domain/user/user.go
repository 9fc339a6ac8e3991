package user

import (
	"database/sql/driver"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

// Type distinguishes durable registered owners from ephemeral guests
type Type string

const (
	TypeRegistered Type = "user"
	TypeGuest      Type = "guest"
)

// GuestAvatar is the avatar reference given to every guest profile
const GuestAvatar = "/images/cat-guest.png"

// ParseType converts a string to a Type
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeRegistered, TypeGuest:
		return Type(s), true
	default:
		return "", false
	}
}

// Scan implements the sql.Scanner interface for database deserialization
func (t *Type) Scan(value interface{}) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Type", value)
	}

	parsed, ok := ParseType(str)
	if !ok {
		return fmt.Errorf("invalid owner type: %s", str)
	}
	*t = parsed
	return nil
}

// Value implements the driver.Valuer interface for database serialization
func (t Type) Value() (driver.Value, error) {
	return string(t), nil
}

// User is an owner identity; the email is the natural key
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Image     string    `json:"image"`
	Type      Type      `json:"type" gorm:"type:owner_type;not null;default:'user'"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM
func (User) TableName() string {
	return "users"
}

// NewGuest builds an ephemeral guest profile with a random numeric suffix
func NewGuest(name string) *User {
	return newGuestWithSuffix(name, rand.IntN(1_000_000))
}

func newGuestWithSuffix(name string, n int) *User {
	suffix := strconv.Itoa(n)
	now := time.Now()
	return &User{
		ID:        "Guest-" + suffix,
		Name:      name + suffix,
		Email:     "Guest-" + suffix + "@guest.com",
		Image:     GuestAvatar,
		Type:      TypeGuest,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewRegistered builds a registered owner from identity provider claims
func NewRegistered(id, name, email, image string) *User {
	now := time.Now()
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Image:     image,
		Type:      TypeRegistered,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsGuest reports whether the user is a guest
func (u *User) IsGuest() bool {
	return u.Type == TypeGuest
}

// Policy returns the capability limits for this user
func (u *User) Policy() Policy {
	return PolicyFor(u.Type)
}

// Owner is the denormalized snapshot of a user stored on lists and drafts
type Owner struct {
	Email string
	Name  string
	Type  Type
}

// Owner returns the snapshot of u used on owned entities
func (u *User) Owner() Owner {
	return Owner{Email: u.Email, Name: u.Name, Type: u.Type}
}
