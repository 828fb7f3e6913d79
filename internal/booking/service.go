package booking

import (
	"context"
	"time"
)

type CreateRequest struct {
	BookerID string
	ItemID   string
	Start    time.Time
	End      time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	// Decide approves or rejects a booking on behalf of the item owner.
	Decide(ctx context.Context, actorID, bookingID string, approve bool) (*Booking, error)
	Get(ctx context.Context, requesterID, bookingID string) (*Booking, error)
	ListAsBooker(ctx context.Context, userID, state string, from, size int) ([]*Booking, error)
	ListAsOwner(ctx context.Context, userID, state string, from, size int) ([]*Booking, error)
}

// Option configures a Service or a Projector.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the source of "now" used for time buckets.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type service struct {
	repo      Repository
	users     UserDirectory
	validator *Validator
	now       func() time.Time
}

func NewService(repo Repository, users UserDirectory, items ItemDirectory, opts ...Option) Service {
	o := buildOptions(opts)
	return &service{
		repo:      repo,
		users:     users,
		validator: NewValidator(users, items),
		now:       o.now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	admitted, err := s.validator.Validate(ctx, req.BookerID, req.ItemID, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ItemID:     admitted.Item.ID,
		ItemName:   admitted.Item.Name,
		OwnerID:    admitted.Item.OwnerID,
		BookerID:   admitted.Booker.ID,
		BookerName: admitted.Booker.Name,
		Start:      req.Start,
		End:        req.End,
		Status:     StatusWaiting,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *service) Decide(ctx context.Context, actorID, bookingID string, approve bool) (*Booking, error) {
	if _, err := ensureUser(ctx, s.users, actorID); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.RoleOf(actorID) != RoleOwner {
		return nil, ErrCannotChangeStatus
	}

	target := StatusRejected
	if approve {
		target = StatusApproved
	}

	// Only a repeat of the same decision is refused; the opposite one goes through.
	switch {
	case approve && b.Status == StatusApproved:
		return nil, ErrAlreadyApproved
	case !approve && b.Status == StatusRejected:
		return nil, ErrAlreadyRejected
	}

	prev := b.Status
	b.Status = target
	if err := s.repo.UpdateStatus(ctx, b, prev); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *service) Get(ctx context.Context, requesterID, bookingID string) (*Booking, error) {
	if _, err := ensureUser(ctx, s.users, requesterID); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.RoleOf(requesterID) == RoleNone {
		return nil, ErrNotParticipant
	}

	return b, nil
}

func (s *service) ListAsBooker(ctx context.Context, userID, state string, from, size int) ([]*Booking, error) {
	return s.list(ctx, RoleBooker, userID, state, from, size)
}

func (s *service) ListAsOwner(ctx context.Context, userID, state string, from, size int) ([]*Booking, error) {
	return s.list(ctx, RoleOwner, userID, state, from, size)
}

func (s *service) list(ctx context.Context, role Role, userID, token string, from, size int) ([]*Booking, error) {
	if _, err := ensureUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	st, err := ParseState(token)
	if err != nil {
		return nil, err
	}

	page := NewPage(from, size)
	filter := Filter{
		State:  st,
		Now:    s.now(),
		Offset: page.Offset(),
		Limit:  page.Size,
	}
	if role == RoleOwner {
		filter.OwnerID = userID
	} else {
		filter.BookerID = userID
	}

	return s.repo.List(ctx, filter)
}
