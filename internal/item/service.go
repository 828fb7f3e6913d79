package item

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

type CreateRequest struct {
	Name        string
	Description string
	Available   bool
	RequestID   *string
}

type UpdateRequest struct {
	Name        *string
	Description *string
	Available   *bool
}

// RequestChecker reports whether an item request exists.
type RequestChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// TimelineProjector is the part of booking.Projector items rely on.
type TimelineProjector interface {
	Project(ctx context.Context, itemID string, asOwner bool) (booking.Timeline, error)
	ProjectMany(ctx context.Context, itemIDs []string) (map[string]booking.Timeline, error)
	CanComment(ctx context.Context, userID, itemID string) (bool, error)
}

type Service interface {
	Create(ctx context.Context, ownerID string, req CreateRequest) (*Item, error)
	// Update changes an item. Only its owner may do so.
	Update(ctx context.Context, userID, itemID string, req UpdateRequest) (*Item, error)
	// Delete removes an item. Only its owner may do so, and only while it has no bookings.
	Delete(ctx context.Context, userID, itemID string) error
	Get(ctx context.Context, userID, itemID string) (*Detail, error)
	ListOwned(ctx context.Context, ownerID string, from, size int) ([]*Detail, error)
	// Search matches available items by name or description. Blank text matches nothing.
	Search(ctx context.Context, userID, text string, from, size int) ([]*Item, error)
	AddComment(ctx context.Context, userID, itemID, text string) (*Comment, error)
}

type service struct {
	repo      Repository
	users     booking.UserDirectory
	requests  RequestChecker
	timelines TimelineProjector
}

func NewService(repo Repository, users booking.UserDirectory, requests RequestChecker, timelines TimelineProjector) Service {
	return &service{
		repo:      repo,
		users:     users,
		requests:  requests,
		timelines: timelines,
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Item, error) {
	if _, err := s.findUser(ctx, ownerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	if req.RequestID != nil {
		ok, err := s.requests.Exists(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRequestNotFound
		}
	}

	it := &Item{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Available:   req.Available,
		RequestID:   req.RequestID,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) Update(ctx context.Context, userID, itemID string, req UpdateRequest) (*Item, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != userID {
		return nil, ErrNotOwner
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		it.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, ErrEmptyDescription
		}
		it.Description = description
	}
	if req.Available != nil {
		it.Available = *req.Available
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) Delete(ctx context.Context, userID, itemID string) error {
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}

	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if it.OwnerID != userID {
		return ErrNotOwnerDelete
	}

	return s.repo.Delete(ctx, it.ID)
}

func (s *service) Get(ctx context.Context, userID, itemID string) (*Detail, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	timeline, err := s.timelines.Project(ctx, it.ID, it.OwnerID == userID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, []string{it.ID})
	if err != nil {
		return nil, err
	}

	return &Detail{
		Item:     it,
		Timeline: timeline,
		Comments: nonNil(comments[it.ID]),
	}, nil
}

func (s *service) ListOwned(ctx context.Context, ownerID string, from, size int) ([]*Detail, error) {
	if _, err := s.findUser(ctx, ownerID); err != nil {
		return nil, err
	}

	page := booking.NewPage(from, size)
	items, err := s.repo.List(ctx, Filter{
		OwnerID: ownerID,
		Offset:  page.Offset(),
		Limit:   page.Size,
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []*Detail{}, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	timelines, err := s.timelines.ProjectMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]*Detail, len(items))
	for i, it := range items {
		details[i] = &Detail{
			Item:     it,
			Timeline: timelines[it.ID],
			Comments: nonNil(comments[it.ID]),
		}
	}
	return details, nil
}

func (s *service) Search(ctx context.Context, userID, text string, from, size int) ([]*Item, error) {
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []*Item{}, nil
	}

	page := booking.NewPage(from, size)
	return s.repo.List(ctx, Filter{
		Text:          text,
		AvailableOnly: true,
		Offset:        page.Offset(),
		Limit:         page.Size,
	})
}

func (s *service) AddComment(ctx context.Context, userID, itemID, text string) (*Comment, error) {
	author, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	ok, err := s.timelines.CanComment(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, booking.ErrNoCompletedBooking
	}

	c := &Comment{
		ItemID:     itemID,
		AuthorID:   userID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) findUser(ctx context.Context, id string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return u, nil
}

func nonNil(comments []*Comment) []*Comment {
	if comments == nil {
		return []*Comment{}
	}
	return comments
}
