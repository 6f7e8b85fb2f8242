package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readnestapp/readnest-server/internal/domain"
)

func TestCreateUser_Roundtrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	created := newTestUser(t, store, "alice@example.com", "alice")

	retrieved, err := store.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", retrieved.Email)
	assert.Equal(t, "alice", retrieved.DisplayName)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	newTestUser(t, store, "alice@example.com", "alice")

	dup := &domain.User{
		Syncable:    domain.Syncable{ID: "user-alice2"},
		Email:       "Alice@Example.com", // email index is case-insensitive
		DisplayName: "alice2",
		Role:        domain.RoleMember,
	}
	dup.InitTimestamps()

	err := store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestGetUser_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetUser(context.Background(), "user-missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByEmail(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	created := newTestUser(t, store, "alice@example.com", "alice")

	retrieved, err := store.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	user := newTestUser(t, store, "alice@example.com", "alice")

	user.DisplayName = "Alice L."
	require.NoError(t, store.UpdateUser(ctx, user))

	updated, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", updated.DisplayName)
}

func TestListUsersByNewest(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := range 4 {
		user := &domain.User{
			Syncable:    domain.Syncable{ID: fmt.Sprintf("user-%d", i)},
			Email:       fmt.Sprintf("user%d@example.com", i),
			DisplayName: fmt.Sprintf("user%d", i),
			Role:        domain.RoleMember,
		}
		user.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		user.UpdatedAt = user.CreatedAt

		require.NoError(t, store.CreateUser(ctx, user))
	}

	users, err := store.ListUsersByNewest(ctx, 3)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "user-3", users[0].ID)
	assert.Equal(t, "user-2", users[1].ID)
	assert.Equal(t, "user-1", users[2].ID)
}
