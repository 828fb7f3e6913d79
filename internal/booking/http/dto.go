package http

import (
	"strings"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	userHttp "github.com/nekogravitycat/shareit-backend/internal/user/http"
)

var (
	ErrStartInPast     = apperror.Validation("start must not be in the past")
	ErrInvalidApproval = apperror.Validation("approved must be true or false")
)

// ListBookingsRequest defines query parameters for listing bookings.
// State is parsed by the booking service so that unknown tokens are reported verbatim.
type ListBookingsRequest struct {
	request.ListParams
	State string `form:"state"`
}

type CreateBookingRequest struct {
	ItemID string    `json:"item_id" binding:"required,uuid"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// Validate performs custom validation for CreateBookingRequest.
// The interval itself is checked by the booking service.
func (r *CreateBookingRequest) Validate(now time.Time) error {
	if r.Start.Before(now) {
		return ErrStartInPast
	}
	return nil
}

type DecideBookingRequest struct {
	Approved string `form:"approved" binding:"required"`
}

// ParseApproval accepts "true" or "false" in any letter case.
func (r *DecideBookingRequest) ParseApproval() (bool, error) {
	switch {
	case strings.EqualFold(r.Approved, "true"):
		return true, nil
	case strings.EqualFold(r.Approved, "false"):
		return false, nil
	default:
		return false, ErrInvalidApproval
	}
}

// ItemTag is a brief representation of the booked item.
type ItemTag struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type BookingResponse struct {
	ID        string           `json:"id"`
	Item      ItemTag          `json:"item"`
	Booker    userHttp.UserTag `json:"booker"`
	OwnerID   string           `json:"owner_id"`
	Start     time.Time        `json:"start"`
	End       time.Time        `json:"end"`
	Status    string           `json:"status"`
	Role      string           `json:"role,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Item:      ItemTag{ID: b.ItemID, Name: b.ItemName},
		Booker:    userHttp.UserTag{ID: b.BookerID, Name: b.BookerName},
		OwnerID:   b.OwnerID,
		Start:     b.Start,
		End:       b.End,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// NewBookingResponseFor tags the response with the role viewerID holds on b.
func NewBookingResponseFor(b *booking.Booking, viewerID string) BookingResponse {
	resp := NewBookingResponse(b)
	if role := b.RoleOf(viewerID); role != booking.RoleNone {
		resp.Role = role.String()
	}
	return resp
}

// BookingTag is the short form of a booking embedded in item timelines.
type BookingTag struct {
	ID       string    `json:"id"`
	BookerID string    `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Status   string    `json:"status"`
}

// NewBookingTag returns nil for a nil booking.
func NewBookingTag(b *booking.Booking) *BookingTag {
	if b == nil {
		return nil
	}
	return &BookingTag{
		ID:       b.ID,
		BookerID: b.BookerID,
		Start:    b.Start,
		End:      b.End,
		Status:   string(b.Status),
	}
}

func newBookingList(bookings []*booking.Booking, viewerID string) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponseFor(b, viewerID)
	}
	return items
}
