package item

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("item not found")
	ErrUserNotFound     = apperror.NotFound("user not found")
	ErrRequestNotFound  = apperror.NotFound("item request not found")
	ErrNotOwner         = apperror.Validation("only the owner can edit the item")
	ErrNotOwnerDelete   = apperror.Validation("only the owner can delete the item")
	ErrHasBookings      = apperror.Conflict("item has bookings and cannot be deleted")
	ErrEmptyName        = apperror.Validation("name cannot be empty")
	ErrEmptyDescription = apperror.Validation("description cannot be empty")
	ErrEmptyComment     = apperror.Validation("comment text cannot be empty")
	ErrCommentTooLong   = apperror.Validation("comment text cannot exceed 200 characters")
)

const maxCommentLength = 200

// Item is something a user offers for others to book.
type Item struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Available   bool
	RequestID   *string
	CreatedAt   time.Time
}

type Comment struct {
	ID         string
	ItemID     string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}

// Detail is an item together with its comments and, for the owner, its booking timeline.
type Detail struct {
	Item     *Item
	Timeline booking.Timeline
	Comments []*Comment
}

// Filter defines parameters for listing items.
type Filter struct {
	OwnerID       string
	Text          string
	AvailableOnly bool
	Offset        int
	Limit         int
}
