package booking

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrBookingNotFound    = apperror.NotFound("booking not found")
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrItemNotFound       = apperror.NotFound("item not found")
	ErrInvalidInterval    = apperror.Validation("end before or equal to start")
	ErrItemUnavailable    = apperror.Validation("item is not available")
	ErrOwnBooking         = apperror.NotFound("owner cannot book own item")
	ErrCannotChangeStatus = apperror.NotFound("cannot change status")
	ErrAlreadyApproved    = apperror.Validation("already approved")
	ErrAlreadyRejected    = apperror.Validation("already rejected")
	ErrNotParticipant     = apperror.NotFound("only owner or booker may view")
	ErrConcurrentDecision = apperror.Conflict("booking status changed concurrently")
	ErrNoCompletedBooking = apperror.Validation("no completed booking for this item")
)

// Status is the approval state of a booking.
// WAITING is initial; APPROVED and REJECTED are set by the item owner.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Role tags how a user relates to a booking.
type Role int

const (
	RoleNone Role = iota
	RoleBooker
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleBooker:
		return "booker"
	case RoleOwner:
		return "owner"
	default:
		return "none"
	}
}

type Booking struct {
	ID         string
	ItemID     string
	ItemName   string
	OwnerID    string
	BookerID   string
	BookerName string
	Start      time.Time
	End        time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RoleOf reports whether userID is the owner or the booker of b.
// Self-bookings are never created, so the two roles never coincide.
func (b *Booking) RoleOf(userID string) Role {
	switch userID {
	case "":
		return RoleNone
	case b.OwnerID:
		return RoleOwner
	case b.BookerID:
		return RoleBooker
	default:
		return RoleNone
	}
}

// ItemRef is the slice of an item the booking core consults.
type ItemRef struct {
	ID        string
	Name      string
	OwnerID   string
	Available bool
}

// Filter selects bookings for one role of one user.
// Exactly one of BookerID and OwnerID is expected to be set.
type Filter struct {
	BookerID string
	OwnerID  string
	State    State
	Now      time.Time
	Offset   int
	Limit    int
}

// Page is a zero-based page derived from an offset/limit pair.
type Page struct {
	Number int
	Size   int
}

// NewPage converts from/size into a page; from is rounded down to a page boundary.
func NewPage(from, size int) Page {
	if size < 1 {
		size = 1
	}
	if from < 0 {
		from = 0
	}
	return Page{Number: from / size, Size: size}
}

func (p Page) Offset() int {
	return p.Number * p.Size
}

// Timeline holds the derived last and next bookings of an item.
type Timeline struct {
	Last *Booking
	Next *Booking
}
