package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readnestapp/readnest-server/internal/domain"
)

func TestCreateBook_Roundtrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	created := newTestBook(t, store, "user-alice", "Piranesi", domain.StatusWantToRead)

	retrieved, err := store.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Piranesi", retrieved.Title)
	assert.Equal(t, domain.StatusWantToRead, retrieved.Status)
	assert.Equal(t, "user-alice", retrieved.UserID)
}

func TestGetUserBook_OtherOwnerLooksMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := newTestBook(t, store, "user-alice", "Dune", domain.StatusCurrentlyReading)

	// The owner sees it.
	owned, err := store.GetUserBook(ctx, "user-alice", book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, owned.ID)

	// Anyone else gets the same error as for a missing book.
	_, err = store.GetUserBook(ctx, "user-bob", book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = store.GetUserBook(ctx, "user-bob", "book-missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateBook(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := newTestBook(t, store, "user-alice", "Kindred", domain.StatusCurrentlyReading)

	book.Status = domain.StatusRead
	book.Rating = 5
	require.NoError(t, store.UpdateBook(ctx, book))

	updated, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, updated.Status)
	assert.Equal(t, 5, updated.Rating)
}

func TestDeleteBook(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := newTestBook(t, store, "user-alice", "Germinal", domain.StatusWantToRead)

	require.NoError(t, store.DeleteBook(ctx, "user-alice", book.ID))

	_, err := store.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	books, err := store.ListUserBooks(ctx, "user-alice")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestDeleteBook_NotOwned(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := newTestBook(t, store, "user-alice", "Germinal", domain.StatusWantToRead)

	err := store.DeleteBook(ctx, "user-bob", book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	// The book is still there for its owner.
	_, err = store.GetUserBook(ctx, "user-alice", book.ID)
	require.NoError(t, err)
}

func TestListUserBooks_ScopedToOwner(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	newTestBook(t, store, "user-alice", "Dune", domain.StatusCurrentlyReading)
	newTestBook(t, store, "user-alice", "Piranesi", domain.StatusRead)
	newTestBook(t, store, "user-bob", "Kindred", domain.StatusWantToRead)

	books, err := store.ListUserBooks(ctx, "user-alice")
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Equal(t, "user-alice", b.UserID)
	}
}

func TestCountUserBooksByStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	newTestBook(t, store, "user-alice", "Dune", domain.StatusCurrentlyReading)
	newTestBook(t, store, "user-alice", "Piranesi", domain.StatusRead)
	newTestBook(t, store, "user-alice", "Kindred", domain.StatusRead)

	total, err := store.CountUserBooks(ctx, "user-alice")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	read, err := store.CountUserBooksByStatus(ctx, "user-alice", domain.StatusRead)
	require.NoError(t, err)
	assert.Equal(t, 2, read)

	wantToRead, err := store.CountUserBooksByStatus(ctx, "user-alice", domain.StatusWantToRead)
	require.NoError(t, err)
	assert.Zero(t, wantToRead)
}
