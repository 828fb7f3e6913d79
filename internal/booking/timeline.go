package booking

import (
	"context"
	"time"
)

// Projector derives last/next booking facts and comment eligibility from the booking history.
type Projector struct {
	repo Repository
	now  func() time.Time
}

func NewProjector(repo Repository, opts ...Option) *Projector {
	o := buildOptions(opts)
	return &Projector{repo: repo, now: o.now}
}

// Project returns the timeline of one item. Callers other than the owner get an empty timeline.
func (p *Projector) Project(ctx context.Context, itemID string, asOwner bool) (Timeline, error) {
	if !asOwner {
		return Timeline{}, nil
	}

	timelines, err := p.ProjectMany(ctx, []string{itemID})
	if err != nil {
		return Timeline{}, err
	}
	return timelines[itemID], nil
}

// ProjectMany computes the timelines of several items owned by the caller
// with one query for last bookings and one for next bookings.
// Items without bookings are absent from the result.
func (p *Projector) ProjectMany(ctx context.Context, itemIDs []string) (map[string]Timeline, error) {
	result := make(map[string]Timeline, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	now := p.now()

	last, err := p.repo.LastForItems(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}
	next, err := p.repo.NextForItems(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}

	for id, b := range last {
		t := result[id]
		t.Last = b
		result[id] = t
	}
	for id, b := range next {
		// A pending or rejected upcoming booking is not reported.
		if b.Status != StatusApproved {
			continue
		}
		t := result[id]
		t.Next = b
		result[id] = t
	}

	return result, nil
}

// CanComment reports whether userID has an approved booking of itemID that has already ended.
func (p *Projector) CanComment(ctx context.Context, userID, itemID string) (bool, error) {
	return p.repo.HasCompleted(ctx, userID, itemID, p.now())
}
