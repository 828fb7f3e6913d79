package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// memRepository is an in-memory Repository that evaluates filters with State.Matches.
type memRepository struct {
	mu       sync.Mutex
	bookings map[string]*Booking

	// loseRace makes the next UpdateStatus behave as if another writer changed the row.
	loseRace bool
	queries  int
}

func newMemRepository() *memRepository {
	return &memRepository{bookings: make(map[string]*Booking)}
}

func (r *memRepository) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepository) UpdateStatus(_ context.Context, b *Booking, prev Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok || stored.Status != prev || r.loseRace {
		r.loseRace = false
		return ErrConcurrentDecision
	}
	stored.Status = b.Status
	stored.UpdatedAt = time.Now().UTC()
	b.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *memRepository) List(_ context.Context, f Filter) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if f.BookerID != "" && b.BookerID != f.BookerID {
			continue
		}
		if f.OwnerID != "" && b.OwnerID != f.OwnerID {
			continue
		}
		if !f.State.Matches(b, f.Now) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID > out[j].ID
		}
		return out[i].Start.After(out[j].Start)
	})

	if f.Offset >= len(out) {
		return []*Booking{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memRepository) LastForItems(_ context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error) {
	return r.pick(itemIDs, func(b, best *Booking) bool {
		return !b.Start.After(now) && (best == nil || b.Start.After(best.Start))
	}), nil
}

func (r *memRepository) NextForItems(_ context.Context, itemIDs []string, now time.Time) (map[string]*Booking, error) {
	return r.pick(itemIDs, func(b, best *Booking) bool {
		return b.Start.After(now) && (best == nil || b.Start.Before(best.Start))
	}), nil
}

func (r *memRepository) pick(itemIDs []string, better func(b, best *Booking) bool) map[string]*Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++

	wanted := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}

	out := make(map[string]*Booking)
	for _, b := range r.bookings {
		if !wanted[b.ItemID] {
			continue
		}
		if better(b, out[b.ItemID]) {
			cp := *b
			out[b.ItemID] = &cp
		}
	}
	return out
}

func (r *memRepository) HasCompleted(_ context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.Status == StatusApproved && b.End.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

// seed stores b directly, bypassing validation.
func (r *memRepository) seed(b Booking) *Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	r.bookings[b.ID] = &b
	cp := b
	return &cp
}

type memUsers map[string]*user.User

func (m memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type memItems map[string]*ItemRef

func (m memItems) FindItem(_ context.Context, id string) (*ItemRef, error) {
	it, ok := m[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// fixture wires a service and projector over in-memory collaborators.
type fixture struct {
	repo      *memRepository
	users     memUsers
	items     memItems
	clock     *clock
	service   Service
	projector *Projector
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	ownerID    = "11111111-1111-1111-1111-111111111111"
	bookerID   = "22222222-2222-2222-2222-222222222222"
	strangerID = "33333333-3333-3333-3333-333333333333"
	itemA      = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	itemB      = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

func newFixture() *fixture {
	f := &fixture{
		repo: newMemRepository(),
		users: memUsers{
			ownerID:    {ID: ownerID, Name: "Owner"},
			bookerID:   {ID: bookerID, Name: "Booker"},
			strangerID: {ID: strangerID, Name: "Stranger"},
		},
		items: memItems{
			itemA: {ID: itemA, Name: "Drill", OwnerID: ownerID, Available: true},
			itemB: {ID: itemB, Name: "Ladder", OwnerID: ownerID, Available: false},
		},
		clock: &clock{t: t0},
	}
	f.service = NewService(f.repo, f.users, f.items, WithClock(f.clock.Now))
	f.projector = NewProjector(f.repo, WithClock(f.clock.Now))
	return f
}
