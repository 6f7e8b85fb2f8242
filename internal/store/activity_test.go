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

func TestCreateActivity_Roundtrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	created := newTestActivity(t, store, "activity-1", "user-alice", time.Now())

	retrieved, err := store.GetActivity(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, retrieved.UserID)
	assert.Equal(t, domain.ActivityBookAdded, retrieved.Type)
}

func TestGetActivity_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetActivity(context.Background(), "activity-missing")
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestGetUserActivities_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	newTestActivity(t, store, "activity-old", "user-alice", base)
	newTestActivity(t, store, "activity-mid", "user-alice", base.Add(time.Minute))
	newTestActivity(t, store, "activity-new", "user-alice", base.Add(2*time.Minute))
	newTestActivity(t, store, "activity-other", "user-bob", base.Add(3*time.Minute))

	activities, err := store.GetUserActivities(ctx, "user-alice", 10)
	require.NoError(t, err)
	require.Len(t, activities, 3)
	assert.Equal(t, "activity-new", activities[0].ID)
	assert.Equal(t, "activity-mid", activities[1].ID)
	assert.Equal(t, "activity-old", activities[2].ID)
}

func TestGetUserActivities_Limit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		newTestActivity(t, store, fmt.Sprintf("activity-%d", i), "user-alice", base.Add(time.Duration(i)*time.Second))
	}

	activities, err := store.GetUserActivities(context.Background(), "user-alice", 2)
	require.NoError(t, err)
	assert.Len(t, activities, 2)
	assert.Equal(t, "activity-4", activities[0].ID)
}

func TestGetFeedActivities_MergesUsersNewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Now().Add(-time.Hour)

	newTestActivity(t, store, "activity-a1", "user-alice", base.Add(1*time.Minute))
	newTestActivity(t, store, "activity-b1", "user-bob", base.Add(2*time.Minute))
	newTestActivity(t, store, "activity-a2", "user-alice", base.Add(3*time.Minute))
	newTestActivity(t, store, "activity-c1", "user-carol", base.Add(4*time.Minute))

	feed, err := store.GetFeedActivities(context.Background(), []string{"user-alice", "user-bob"}, 10)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	// Carol is not in the requested set.
	assert.Equal(t, "activity-a2", feed[0].ID)
	assert.Equal(t, "activity-b1", feed[1].ID)
	assert.Equal(t, "activity-a1", feed[2].ID)
}

func TestGetFeedActivities_EqualTimestampsBreakTiesByID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	at := time.Now().Truncate(time.Second)

	newTestActivity(t, store, "activity-aaa", "user-alice", at)
	newTestActivity(t, store, "activity-zzz", "user-bob", at)
	newTestActivity(t, store, "activity-mmm", "user-alice", at)

	feed, err := store.GetFeedActivities(context.Background(), []string{"user-alice", "user-bob"}, 10)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	assert.Equal(t, "activity-zzz", feed[0].ID)
	assert.Equal(t, "activity-mmm", feed[1].ID)
	assert.Equal(t, "activity-aaa", feed[2].ID)
}

func TestGetFeedActivities_LimitAppliesAfterMerge(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Now().Add(-time.Hour)
	for i := range 4 {
		newTestActivity(t, store, fmt.Sprintf("activity-a%d", i), "user-alice", base.Add(time.Duration(i)*time.Second))
		newTestActivity(t, store, fmt.Sprintf("activity-b%d", i), "user-bob", base.Add(time.Duration(i)*time.Second+500*time.Millisecond))
	}

	feed, err := store.GetFeedActivities(context.Background(), []string{"user-alice", "user-bob"}, 3)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	// The cut keeps the globally newest entries, alternating between users.
	assert.Equal(t, "activity-b3", feed[0].ID)
	assert.Equal(t, "activity-a3", feed[1].ID)
	assert.Equal(t, "activity-b2", feed[2].ID)
}

func TestCreateActivity_EvictsOldestBeyondCap(t *testing.T) {
	if testing.Short() {
		t.Skip("writes over a thousand activities")
	}

	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().Add(-24 * time.Hour)

	total := domain.MaxActivitiesPerUser + 5
	for i := range total {
		newTestActivity(t, store, fmt.Sprintf("activity-%05d", i), "user-alice", base.Add(time.Duration(i)*time.Second))
	}

	activities, err := store.GetUserActivities(ctx, "user-alice", total)
	require.NoError(t, err)
	require.Len(t, activities, domain.MaxActivitiesPerUser)

	// The five oldest entries are gone, primary records included.
	assert.Equal(t, fmt.Sprintf("activity-%05d", total-1), activities[0].ID)
	assert.Equal(t, "activity-00005", activities[len(activities)-1].ID)

	_, err = store.GetActivity(ctx, "activity-00000")
	assert.ErrorIs(t, err, ErrActivityNotFound)

	// Another user's history is untouched by the trim.
	newTestActivity(t, store, "activity-bob", "user-bob", time.Now())
	bobActivities, err := store.GetUserActivities(ctx, "user-bob", 10)
	require.NoError(t, err)
	assert.Len(t, bobActivities, 1)
}

func TestGetActivitiesFeed_Global(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Now().Add(-time.Hour)
	newTestActivity(t, store, "activity-1", "user-alice", base)
	newTestActivity(t, store, "activity-2", "user-bob", base.Add(time.Minute))

	feed, err := store.GetActivitiesFeed(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "activity-2", feed[0].ID)
}
