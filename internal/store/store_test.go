package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readnestapp/readnest-server/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "readnest-store-test-*")
	require.NoError(t, err)

	store, err := New(dir, nil, NewNoopEmitter())
	require.NoError(t, err)

	cleanup := func() {
		_ = store.Close()
		_ = os.RemoveAll(dir)
	}

	return store, cleanup
}

func newTestUser(t *testing.T, store *Store, email, displayName string) *domain.User {
	t.Helper()

	user := &domain.User{
		Syncable:    domain.Syncable{ID: "user-" + displayName},
		Email:       email,
		DisplayName: displayName,
		Role:        domain.RoleMember,
	}
	user.InitTimestamps()

	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func newTestBook(t *testing.T, store *Store, userID, title string, status domain.ReadingStatus) *domain.Book {
	t.Helper()

	book := &domain.Book{
		Syncable: domain.Syncable{ID: fmt.Sprintf("book-%s-%s", userID, title)},
		UserID:   userID,
		Title:    title,
		Author:   "Test Author",
		Status:   status,
	}
	book.InitTimestamps()

	require.NoError(t, store.CreateBook(context.Background(), book))
	return book
}

func newTestActivity(t *testing.T, store *Store, id, userID string, createdAt time.Time) *domain.Activity {
	t.Helper()

	activity := &domain.Activity{
		ID:        id,
		UserID:    userID,
		Type:      domain.ActivityBookAdded,
		Action:    "added a book",
		CreatedAt: createdAt,
	}

	require.NoError(t, store.CreateActivity(context.Background(), activity))
	return activity
}
