package item

import (
	"context"
	"errors"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
)

// Directory exposes items to the booking core and to item requests.
type Directory struct {
	repo Repository
}

var (
	_ booking.ItemDirectory    = (*Directory)(nil)
	_ itemrequest.AnswerSource = (*Directory)(nil)
)

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) FindItem(ctx context.Context, id string) (*booking.ItemRef, error) {
	it, err := d.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, booking.ErrItemNotFound
		}
		return nil, err
	}
	return &booking.ItemRef{
		ID:        it.ID,
		Name:      it.Name,
		OwnerID:   it.OwnerID,
		Available: it.Available,
	}, nil
}

func (d *Directory) AnswersFor(ctx context.Context, requestIDs []string) (map[string][]itemrequest.Answer, error) {
	items, err := d.repo.ListByRequests(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]itemrequest.Answer)
	for _, it := range items {
		if it.RequestID == nil {
			continue
		}
		result[*it.RequestID] = append(result[*it.RequestID], itemrequest.Answer{
			ItemID:      it.ID,
			RequestID:   *it.RequestID,
			OwnerID:     it.OwnerID,
			Name:        it.Name,
			Description: it.Description,
			Available:   it.Available,
		})
	}
	return result, nil
}
