package user

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedTestRepo(t *testing.T) (Repository, *memRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := newMemRepository()
	return NewCachedRepository(backing, client, time.Minute), backing, mr
}

func TestCachedRepositoryReadThrough(t *testing.T) {
	ctx := context.Background()
	repo, backing, mr := newCachedTestRepo(t)

	u := &User{Email: "carol@example.com", PasswordHash: "hash", Name: "Carol"}
	require.NoError(t, repo.Create(ctx, u))

	first, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, backing.getByID, "second lookup should be served from redis")
	assert.Equal(t, first.Email, second.Email)
	assert.Empty(t, second.PasswordHash, "password hashes are never cached")
	assert.True(t, mr.Exists(cacheKeyPrefix+u.ID))
}

func TestCachedRepositoryInvalidatesOnUpdate(t *testing.T) {
	ctx := context.Background()
	repo, backing, mr := newCachedTestRepo(t)

	u := &User{Email: "dave@example.com", PasswordHash: "hash", Name: "Dave"}
	require.NoError(t, repo.Create(ctx, u))
	_, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)

	u.Name = "David"
	require.NoError(t, repo.Update(ctx, u))
	assert.False(t, mr.Exists(cacheKeyPrefix+u.ID))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "David", got.Name)
	assert.Equal(t, 2, backing.getByID)
}

func TestCachedRepositoryInvalidatesOnDelete(t *testing.T) {
	ctx := context.Background()
	repo, _, mr := newCachedTestRepo(t)

	u := &User{Email: "frank@example.com", PasswordHash: "hash", Name: "Frank"}
	require.NoError(t, repo.Create(ctx, u))
	_, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cacheKeyPrefix+u.ID))

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.False(t, mr.Exists(cacheKeyPrefix+u.ID))

	_, err = repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedRepositoryKeepsEntryWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	repo, backing, mr := newCachedTestRepo(t)

	u := &User{Email: "grace@example.com", PasswordHash: "hash", Name: "Grace"}
	require.NoError(t, repo.Create(ctx, u))
	backing.booked[u.ID] = true
	_, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, u.ID), ErrHasBookings)
	assert.True(t, mr.Exists(cacheKeyPrefix+u.ID))
}

func TestCachedRepositoryMissIsNotCached(t *testing.T) {
	ctx := context.Background()
	repo, _, mr := newCachedTestRepo(t)

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(cacheKeyPrefix+"missing"))
}

func TestCachedRepositoryFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	repo, backing, mr := newCachedTestRepo(t)

	u := &User{Email: "erin@example.com", PasswordHash: "hash", Name: "Erin"}
	require.NoError(t, repo.Create(ctx, u))

	mr.SetError("ERR simulated outage")

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Erin", got.Name)
	assert.Equal(t, 1, backing.getByID)
}

func TestNewCachedRepositoryWithoutClient(t *testing.T) {
	backing := newMemRepository()
	assert.Same(t, Repository(backing), NewCachedRepository(backing, nil, time.Minute))
}
