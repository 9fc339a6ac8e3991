package user

// Unlimited marks a capability without a cap
const Unlimited = -1

// Policy answers every question that differs between guests and registered
// owners. It is selected once per request from the owner type.
type Policy interface {
	MaxLinks() int
	MaxMessages() int
	MaxLists() int
	RequiresPayment() bool
	CanUploadImages() bool
	IsProfileDurable() bool
	// InitialPaid is the paid flag a freshly created list starts with.
	InitialPaid() bool
}

// PolicyFor selects the policy for an owner type. Unknown types get the
// registered policy since it is the one that gates publishing behind payment.
func PolicyFor(t Type) Policy {
	if t == TypeGuest {
		return guestPolicy{}
	}
	return registeredPolicy{}
}

type guestPolicy struct{}

func (guestPolicy) MaxLinks() int          { return 2 }
func (guestPolicy) MaxMessages() int       { return 2 }
func (guestPolicy) MaxLists() int          { return 2 }
func (guestPolicy) RequiresPayment() bool  { return false }
func (guestPolicy) CanUploadImages() bool  { return false }
func (guestPolicy) IsProfileDurable() bool { return false }
func (guestPolicy) InitialPaid() bool      { return true }

type registeredPolicy struct{}

func (registeredPolicy) MaxLinks() int          { return Unlimited }
func (registeredPolicy) MaxMessages() int       { return Unlimited }
func (registeredPolicy) MaxLists() int          { return Unlimited }
func (registeredPolicy) RequiresPayment() bool  { return true }
func (registeredPolicy) CanUploadImages() bool  { return true }
func (registeredPolicy) IsProfileDurable() bool { return true }
func (registeredPolicy) InitialPaid() bool      { return false }

// Exceeds reports whether count is over limit, treating Unlimited as no cap
func Exceeds(count, limit int) bool {
	return limit != Unlimited && count > limit
}
