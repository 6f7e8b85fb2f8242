package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readnestapp/readnest-server/internal/domain"
	domainerrors "github.com/readnestapp/readnest-server/internal/errors"
	"github.com/readnestapp/readnest-server/internal/store"
)

func setupTestSocialService(t *testing.T) (*SocialService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "social-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	activities := NewActivityService(testStore, logger)
	svc := NewSocialService(testStore, activities, logger)

	cleanup := func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	}

	return svc, testStore, cleanup
}

func createTestUserForSocial(t *testing.T, s *store.Store, id, displayName string) *domain.User {
	t.Helper()
	user := &domain.User{
		Syncable: domain.Syncable{
			ID: id,
		},
		Email:       id + "@example.com",
		DisplayName: displayName,
		Role:        domain.RoleMember,
	}
	user.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestSocialService_Follow(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()
	ctx := context.Background()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")
	createTestUserForSocial(t, testStore, "user-bob", "Bob")

	err := svc.Follow(ctx, "user-alice", "user-bob")
	require.NoError(t, err)

	following, err := svc.IsFollowing(ctx, "user-alice", "user-bob")
	require.NoError(t, err)
	assert.True(t, following)

	// Not symmetric.
	reverse, err := svc.IsFollowing(ctx, "user-bob", "user-alice")
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestSocialService_Follow_RecordsActivity(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()
	ctx := context.Background()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")
	createTestUserForSocial(t, testStore, "user-bob", "Bob")

	require.NoError(t, svc.Follow(ctx, "user-alice", "user-bob"))

	activities, err := testStore.GetUserActivities(ctx, "user-alice", 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)

	assert.Equal(t, domain.ActivityFollow, activities[0].Type)
	assert.Equal(t, "user-alice", activities[0].UserID)
	assert.Equal(t, "user-bob", activities[0].TargetUserID)
	assert.Equal(t, "Bob", activities[0].TargetUserName)
	assert.Equal(t, "Alice", activities[0].UserDisplayName)
}

func TestSocialService_Follow_Self(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")

	err := svc.Follow(context.Background(), "user-alice", "user-alice")
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeValidation, appErr.Code)
}

func TestSocialService_Follow_Duplicate(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()
	ctx := context.Background()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")
	createTestUserForSocial(t, testStore, "user-bob", "Bob")

	require.NoError(t, svc.Follow(ctx, "user-alice", "user-bob"))

	err := svc.Follow(ctx, "user-alice", "user-bob")
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeConflict, appErr.Code)

	// Only the first follow produced an activity.
	activities, err := testStore.GetUserActivities(ctx, "user-alice", 10)
	require.NoError(t, err)
	assert.Len(t, activities, 1)
}

func TestSocialService_Follow_MissingUser(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")

	err := svc.Follow(context.Background(), "user-alice", "user-ghost")
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeNotFound, appErr.Code)
}

func TestSocialService_Unfollow(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()
	ctx := context.Background()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")
	createTestUserForSocial(t, testStore, "user-bob", "Bob")

	require.NoError(t, svc.Follow(ctx, "user-alice", "user-bob"))
	require.NoError(t, svc.Unfollow(ctx, "user-alice", "user-bob"))

	following, err := svc.IsFollowing(ctx, "user-alice", "user-bob")
	require.NoError(t, err)
	assert.False(t, following)
}

func TestSocialService_Unfollow_NotFollowing(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")
	createTestUserForSocial(t, testStore, "user-bob", "Bob")

	err := svc.Unfollow(context.Background(), "user-alice", "user-bob")
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeValidation, appErr.Code)
}

func TestSocialService_GetFollowing(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()
	ctx := context.Background()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")
	createTestUserForSocial(t, testStore, "user-bob", "Bob")
	createTestUserForSocial(t, testStore, "user-carol", "Carol")

	require.NoError(t, svc.Follow(ctx, "user-alice", "user-bob"))
	require.NoError(t, svc.Follow(ctx, "user-alice", "user-carol"))

	following, err := svc.GetFollowing(ctx, "user-alice")
	require.NoError(t, err)
	require.Len(t, following, 2)

	names := []string{following[0].DisplayName, following[1].DisplayName}
	assert.Contains(t, names, "Bob")
	assert.Contains(t, names, "Carol")
	assert.False(t, following[0].FollowedAt.IsZero())
}

func TestSocialService_GetFollowers(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()
	ctx := context.Background()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")
	createTestUserForSocial(t, testStore, "user-bob", "Bob")
	createTestUserForSocial(t, testStore, "user-carol", "Carol")

	require.NoError(t, svc.Follow(ctx, "user-bob", "user-alice"))
	require.NoError(t, svc.Follow(ctx, "user-carol", "user-alice"))

	followers, err := svc.GetFollowers(ctx, "user-alice")
	require.NoError(t, err)
	assert.Len(t, followers, 2)
}

func TestSocialService_GetNetworkStats(t *testing.T) {
	svc, testStore, cleanup := setupTestSocialService(t)
	defer cleanup()
	ctx := context.Background()

	createTestUserForSocial(t, testStore, "user-alice", "Alice")
	createTestUserForSocial(t, testStore, "user-bob", "Bob")
	createTestUserForSocial(t, testStore, "user-carol", "Carol")

	require.NoError(t, svc.Follow(ctx, "user-bob", "user-alice"))
	require.NoError(t, svc.Follow(ctx, "user-carol", "user-alice"))
	require.NoError(t, svc.Follow(ctx, "user-alice", "user-bob"))

	book := &domain.Book{
		Syncable: domain.Syncable{ID: "book-1"},
		UserID:   "user-alice",
		Title:    "The Hobbit",
		Author:   "J.R.R. Tolkien",
		Status:   domain.StatusRead,
	}
	book.InitTimestamps()
	require.NoError(t, testStore.CreateBook(ctx, book))

	book2 := &domain.Book{
		Syncable: domain.Syncable{ID: "book-2"},
		UserID:   "user-alice",
		Title:    "Dune",
		Author:   "Frank Herbert",
		Status:   domain.StatusWantToRead,
	}
	book2.InitTimestamps()
	require.NoError(t, testStore.CreateBook(ctx, book2))

	stats, err := svc.GetNetworkStats(ctx, "user-alice")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Followers)
	assert.Equal(t, 1, stats.Following)
	assert.Equal(t, 2, stats.TotalBooks)
	assert.Equal(t, 1, stats.BooksRead)
}

func TestSocialService_GetNetworkStats_MissingUser(t *testing.T) {
	svc, _, cleanup := setupTestSocialService(t)
	defer cleanup()

	_, err := svc.GetNetworkStats(context.Background(), "user-ghost")
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeNotFound, appErr.Code)
}
