package itemrequest

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("item request not found")
	ErrUserNotFound     = apperror.NotFound("user not found")
	ErrEmptyDescription = apperror.Validation("description cannot be empty")
)

// Request is a user's public ask for an item nobody has listed yet.
type Request struct {
	ID          string
	Description string
	RequesterID string
	CreatedAt   time.Time

	// Items listed in answer to the request.
	Items []Answer
}

// Answer is an item whose owner listed it in response to a request.
type Answer struct {
	ItemID      string
	RequestID   string
	OwnerID     string
	Name        string
	Description string
	Available   bool
}
