package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
	"github.com/oksasatya/user-accounts-service/internal/domain/repository"
)

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	u := &entity.User{Username: "alice", Password: "c", Branch: "HQ", Role: "admin"}
	require.NoError(t, r.Create(ctx, u))
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, entity.StatusActive, u.Status)

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.Branch = "B2"
	require.NoError(t, r.Update(ctx, got))

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "B2", again.Branch)

	require.NoError(t, r.Delete(ctx, u.ID))
	_, err = r.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, r.Delete(ctx, u.ID))
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	err := NewUserRepository().Update(context.Background(), &entity.User{ID: 5})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	require.NoError(t, r.Create(ctx, &entity.User{Username: "bob"}))

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	got.Username = "mallory"

	again, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "bob", again.Username)
}

func TestUserRepository_DuplicateUsernameResolvesOldest(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	require.NoError(t, r.Create(ctx, &entity.User{Username: "dup", Branch: "first"}))
	require.NoError(t, r.Create(ctx, &entity.User{Username: "dup", Branch: "second"}))

	got, err := r.GetByUsername(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Branch)
}

func TestUserRepository_ListOrderedAndConcurrent(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Create(ctx, &entity.User{Username: "u"})
		}()
	}
	wg.Wait()

	users, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 20)
	for i, u := range users {
		assert.Equal(t, int64(i+1), u.ID)
	}
}
