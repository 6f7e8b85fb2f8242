package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readnestapp/readnest-server/internal/domain"
)

func newFollow(followerID, followeeID string) *domain.Follow {
	return &domain.Follow{
		ID:         "follow-" + followerID + "-" + followeeID,
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}
}

func TestCreateFollow(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateFollow(ctx, newFollow("user-alice", "user-bob")))

	following, err := store.IsFollowing(ctx, "user-alice", "user-bob")
	require.NoError(t, err)
	assert.True(t, following)

	// The edge is directional.
	reverse, err := store.IsFollowing(ctx, "user-bob", "user-alice")
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestCreateFollow_Self(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.CreateFollow(context.Background(), newFollow("user-alice", "user-alice"))
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestCreateFollow_Duplicate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateFollow(ctx, newFollow("user-alice", "user-bob")))
	err := store.CreateFollow(ctx, newFollow("user-alice", "user-bob"))
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
}

func TestDeleteFollow(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateFollow(ctx, newFollow("user-alice", "user-bob")))
	require.NoError(t, store.DeleteFollow(ctx, "user-alice", "user-bob"))

	following, err := store.IsFollowing(ctx, "user-alice", "user-bob")
	require.NoError(t, err)
	assert.False(t, following)

	// The reverse index entry is gone too.
	followers, err := store.ListFollowers(ctx, "user-bob")
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestDeleteFollow_NotFollowing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DeleteFollow(context.Background(), "user-alice", "user-bob")
	assert.ErrorIs(t, err, ErrNotFollowing)
}

func TestListFollowingAndFollowers(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateFollow(ctx, newFollow("user-alice", "user-bob")))
	require.NoError(t, store.CreateFollow(ctx, newFollow("user-alice", "user-carol")))
	require.NoError(t, store.CreateFollow(ctx, newFollow("user-dave", "user-bob")))

	following, err := store.ListFollowing(ctx, "user-alice")
	require.NoError(t, err)
	require.Len(t, following, 2)
	for _, f := range following {
		assert.Equal(t, "user-alice", f.FollowerID)
	}

	followers, err := store.ListFollowers(ctx, "user-bob")
	require.NoError(t, err)
	require.Len(t, followers, 2)
	for _, f := range followers {
		assert.Equal(t, "user-bob", f.FolloweeID)
	}
}

func TestCreateFollow_ConcurrentDuplicates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Two racing creates of the same edge: exactly one wins, and the
	// loser sees the duplicate error rather than a transaction conflict.
	for round := range 50 {
		follower := fmt.Sprintf("user-f%d", round)
		followee := fmt.Sprintf("user-t%d", round)

		results := make(chan error, 2)
		for range 2 {
			go func() {
				results <- store.CreateFollow(ctx, newFollow(follower, followee))
			}()
		}

		var succeeded, duplicates int
		for range 2 {
			err := <-results
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrAlreadyFollowing):
				duplicates++
			default:
				t.Fatalf("round %d: unexpected error: %v", round, err)
			}
		}

		assert.Equal(t, 1, succeeded, "round %d", round)
		assert.Equal(t, 1, duplicates, "round %d", round)
	}
}

func TestFollowCounts(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateFollow(ctx, newFollow("user-alice", "user-bob")))
	require.NoError(t, store.CreateFollow(ctx, newFollow("user-carol", "user-bob")))
	require.NoError(t, store.CreateFollow(ctx, newFollow("user-bob", "user-alice")))

	followers, err := store.CountFollowers(ctx, "user-bob")
	require.NoError(t, err)
	assert.Equal(t, 2, followers)

	following, err := store.CountFollowing(ctx, "user-bob")
	require.NoError(t, err)
	assert.Equal(t, 1, following)
}
