package user

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("user not found")
	ErrEmailAlreadyUsed   = apperror.Conflict("email already used")
	ErrHasBookings        = apperror.Conflict("user has bookings and cannot be deleted")
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrEmailRequired      = apperror.Validation("email is required")
	ErrNameRequired       = apperror.Validation("name is required")
	ErrPasswordTooShort   = apperror.Validation("password must be at least 8 characters")
)

// User represents a registered member who can list and book items.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email string
	Name  string

	Offset int
	Limit  int
}
