package user

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "shareit:user:"

// cachedUser is the cached projection of a User. Password hashes never leave the database.
type cachedUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type cachedRepository struct {
	Repository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedRepository wraps next with a Redis read-through cache for GetByID,
// the lookup every booking operation performs. Writes invalidate the entry.
// Redis failures degrade to the underlying repository.
func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration) Repository {
	if client == nil {
		return next
	}
	return &cachedRepository{
		Repository: next,
		client:     client,
		ttl:        ttl,
	}
}

func (r *cachedRepository) GetByID(ctx context.Context, id string) (*User, error) {
	key := cacheKeyPrefix + id

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if err := json.Unmarshal(raw, &cu); err == nil {
			return &User{
				ID:          cu.ID,
				Email:       cu.Email,
				Name:        cu.Name,
				CreatedAt:   cu.CreatedAt,
				LastLoginAt: cu.LastLoginAt,
			}, nil
		}
		slog.WarnContext(ctx, "discarding malformed user cache entry", "user_id", id)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "user cache read failed", "user_id", id, "error", err)
	}

	u, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	})
	if err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "user cache write failed", "user_id", id, "error", err)
		}
	}

	return u, nil
}

func (r *cachedRepository) Update(ctx context.Context, u *User) error {
	if err := r.Repository.Update(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx, u.ID)
	return nil
}

func (r *cachedRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	if err := r.Repository.UpdateLastLogin(ctx, id, t); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, cacheKeyPrefix+id).Err(); err != nil {
		slog.WarnContext(ctx, "user cache invalidation failed", "user_id", id, "error", err)
	}
}
