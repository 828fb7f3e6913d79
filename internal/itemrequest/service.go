package itemrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// UserDirectory resolves users by ID.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// AnswerSource finds the items listed in answer to a set of requests.
type AnswerSource interface {
	AnswersFor(ctx context.Context, requestIDs []string) (map[string][]Answer, error)
}

type Service interface {
	Create(ctx context.Context, requesterID, description string) (*Request, error)
	ListOwn(ctx context.Context, userID string) ([]*Request, error)
	ListOthers(ctx context.Context, userID string, from, size int) ([]*Request, error)
	Get(ctx context.Context, userID, id string) (*Request, error)
}

type service struct {
	repo    Repository
	users   UserDirectory
	answers AnswerSource
}

func NewService(repo Repository, users UserDirectory, answers AnswerSource) Service {
	return &service{
		repo:    repo,
		users:   users,
		answers: answers,
	}
}

func (s *service) Create(ctx context.Context, requesterID, description string) (*Request, error) {
	if err := s.ensureUser(ctx, requesterID); err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	req := &Request{
		Description: description,
		RequesterID: requesterID,
		Items:       []Answer{},
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) ListOwn(ctx context.Context, userID string) ([]*Request, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachAnswers(ctx, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *service) ListOthers(ctx context.Context, userID string, from, size int) ([]*Request, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	if size < 1 {
		size = 1
	}
	// Offsets snap to page boundaries like booking listings.
	page := from / size
	requests, err := s.repo.ListOthers(ctx, userID, page*size, size)
	if err != nil {
		return nil, err
	}
	if err := s.attachAnswers(ctx, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *service) Get(ctx context.Context, userID, id string) (*Request, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachAnswers(ctx, []*Request{req}); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) attachAnswers(ctx context.Context, requests []*Request) error {
	if len(requests) == 0 {
		return nil
	}

	ids := make([]string, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}

	answers, err := s.answers.AnswersFor(ctx, ids)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}

	for _, r := range requests {
		r.Items = answers[r.ID]
		if r.Items == nil {
			r.Items = []Answer{}
		}
	}
	return nil
}

func (s *service) ensureUser(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
