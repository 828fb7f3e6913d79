package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// UserDirectory resolves users by ID.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// ItemDirectory resolves the item facts a booking depends on.
// Implementations return ErrItemNotFound when the item does not exist.
type ItemDirectory interface {
	FindItem(ctx context.Context, id string) (*ItemRef, error)
}

// Validator decides whether a booking request may be created.
type Validator struct {
	users UserDirectory
	items ItemDirectory
}

func NewValidator(users UserDirectory, items ItemDirectory) *Validator {
	return &Validator{users: users, items: items}
}

// Admission is a booking request that passed validation.
type Admission struct {
	Booker *user.User
	Item   *ItemRef
}

// Validate checks a booking request and returns the booker and the item it targets.
// Rules run in order and stop at the first failure:
// requester exists, item exists, end after start, item available, requester is not the owner.
// Overlapping bookings of the same item are accepted.
func (v *Validator) Validate(ctx context.Context, requesterID, itemID string, start, end time.Time) (*Admission, error) {
	booker, err := ensureUser(ctx, v.users, requesterID)
	if err != nil {
		return nil, err
	}

	item, err := v.items.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("find item %s: %w", itemID, err)
	}

	if !end.After(start) {
		return nil, ErrInvalidInterval
	}

	if !item.Available {
		return nil, ErrItemUnavailable
	}

	if item.OwnerID == requesterID {
		return nil, ErrOwnBooking
	}

	return &Admission{Booker: booker, Item: item}, nil
}

func ensureUser(ctx context.Context, users UserDirectory, id string) (*user.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return u, nil
}
