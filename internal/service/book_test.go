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
	"github.com/readnestapp/readnest-server/internal/metadata/openlibrary"
	"github.com/readnestapp/readnest-server/internal/store"
)

// stubEnricher returns a fixed enrichment without touching the network.
type stubEnricher struct {
	enrichment openlibrary.Enrichment
	calls      int
}

func (e *stubEnricher) EnrichBook(_ context.Context, _, _ string) openlibrary.Enrichment {
	e.calls++
	return e.enrichment
}

func setupTestBookService(t *testing.T, enricher Enricher) (*BookService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "book-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	activities := NewActivityService(testStore, logger)
	svc := NewBookService(testStore, activities, enricher, nil, logger)

	cleanup := func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	}

	return svc, testStore, cleanup
}

func createTestUserForBooks(t *testing.T, s *store.Store, id, displayName string) *domain.User {
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

func activityTypes(t *testing.T, s *store.Store, userID string) []domain.ActivityType {
	t.Helper()
	activities, err := s.GetUserActivities(context.Background(), userID, 50)
	require.NoError(t, err)
	types := make([]domain.ActivityType, 0, len(activities))
	for _, a := range activities {
		types = append(types, a.Type)
	}
	return types
}

func TestBookService_CreateBook_Defaults(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "  The Hobbit  ",
		Author: "J.R.R. Tolkien",
	})
	require.NoError(t, err)

	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, domain.StatusWantToRead, book.Status)
	assert.Nil(t, book.FinishedAt)
	assert.NotEmpty(t, book.ID)

	types := activityTypes(t, testStore, "user-1")
	assert.Equal(t, []domain.ActivityType{domain.ActivityBookAdded}, types)
}

func TestBookService_CreateBook_DirectlyRead(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
		Status: "read",
		Rating: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRead, book.Status)
	require.NotNil(t, book.FinishedAt)
	assert.False(t, book.FinishedAt.IsZero())

	// Creation only adds. No prior state means no started/finished/rated
	// transitions, even when the book arrives already read and rated.
	types := activityTypes(t, testStore, "user-1")
	assert.Equal(t, []domain.ActivityType{domain.ActivityBookAdded}, types)
}

func TestBookService_CreateBook_InvalidStatus(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	_, err := svc.CreateBook(context.Background(), "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
		Status: "abandoned",
	})
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeValidation, appErr.Code)
}

func TestBookService_CreateBook_Enrichment(t *testing.T) {
	enricher := &stubEnricher{enrichment: openlibrary.Enrichment{
		TotalPages:      310,
		CoverImageURL:   "https://covers.openlibrary.org/b/id/8566412-M.jpg",
		PublicationYear: 1937,
	}}
	svc, testStore, cleanup := setupTestBookService(t, enricher)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "The Hobbit",
		Author: "J.R.R. Tolkien",
	})
	require.NoError(t, err)

	assert.Equal(t, 310, book.TotalPages)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/8566412-M.jpg", book.CoverImageURL)
	assert.Equal(t, 1937, book.PublicationYear)
	assert.Equal(t, 1, enricher.calls)
}

func TestBookService_CreateBook_EnrichmentKeepsProvidedValues(t *testing.T) {
	enricher := &stubEnricher{enrichment: openlibrary.Enrichment{
		TotalPages:      999,
		CoverImageURL:   "https://example.com/wrong.jpg",
		PublicationYear: 1800,
	}}
	svc, testStore, cleanup := setupTestBookService(t, enricher)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:      "The Hobbit",
		Author:     "J.R.R. Tolkien",
		TotalPages: 310,
	})
	require.NoError(t, err)

	// Provided pages win; the gaps are still filled.
	assert.Equal(t, 310, book.TotalPages)
	assert.Equal(t, "https://example.com/wrong.jpg", book.CoverImageURL)
	assert.Equal(t, 1800, book.PublicationYear)
}

func TestBookService_UpdateBook_StartReading(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
	})
	require.NoError(t, err)

	status := "currently-reading"
	updated, err := svc.UpdateBook(ctx, "user-1", book.ID, UpdateBookRequest{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCurrentlyReading, updated.Status)
	assert.Nil(t, updated.FinishedAt)

	types := activityTypes(t, testStore, "user-1")
	assert.ElementsMatch(t, []domain.ActivityType{
		domain.ActivityBookAdded,
		domain.ActivityBookStarted,
	}, types)
}

func TestBookService_UpdateBook_FinishStampsDate(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
		Status: "currently-reading",
	})
	require.NoError(t, err)

	status := "read"
	updated, err := svc.UpdateBook(ctx, "user-1", book.ID, UpdateBookRequest{Status: &status})
	require.NoError(t, err)

	require.NotNil(t, updated.FinishedAt)
	assert.True(t, updated.IsFinished())

	types := activityTypes(t, testStore, "user-1")
	assert.Contains(t, types, domain.ActivityBookFinished)
}

func TestBookService_UpdateBook_ReopenClearsFinishedAt(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
		Status: "read",
	})
	require.NoError(t, err)
	require.NotNil(t, book.FinishedAt)

	status := "currently-reading"
	updated, err := svc.UpdateBook(ctx, "user-1", book.ID, UpdateBookRequest{Status: &status})
	require.NoError(t, err)

	assert.Nil(t, updated.FinishedAt)
}

func TestBookService_UpdateBook_SameStatusStaysSilent(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
		Status: "currently-reading",
	})
	require.NoError(t, err)

	before := activityTypes(t, testStore, "user-1")

	status := "currently-reading"
	notes := "halfway through"
	_, err = svc.UpdateBook(ctx, "user-1", book.ID, UpdateBookRequest{
		Status: &status,
		Notes:  &notes,
	})
	require.NoError(t, err)

	after := activityTypes(t, testStore, "user-1")
	assert.Equal(t, before, after)
}

func TestBookService_UpdateBook_RatingEmission(t *testing.T) {
	tests := []struct {
		name       string
		initial    int
		updated    int
		emitsRated bool
	}{
		{"three to four emits", 3, 4, true},
		{"four to five emits", 4, 5, true},
		{"zero to three stays quiet", 0, 3, false},
		{"five to three stays quiet", 5, 3, false},
		{"unchanged high rating stays quiet", 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, testStore, cleanup := setupTestBookService(t, nil)
			defer cleanup()
			ctx := context.Background()

			createTestUserForBooks(t, testStore, "user-1", "Alice")

			book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
				Title:  "Dune",
				Author: "Frank Herbert",
			})
			require.NoError(t, err)

			if tt.initial != 0 {
				rating := tt.initial
				_, err = svc.UpdateBook(ctx, "user-1", book.ID, UpdateBookRequest{Rating: &rating})
				require.NoError(t, err)
			}

			before := activityTypes(t, testStore, "user-1")

			rating := tt.updated
			_, err = svc.UpdateBook(ctx, "user-1", book.ID, UpdateBookRequest{Rating: &rating})
			require.NoError(t, err)

			after := activityTypes(t, testStore, "user-1")
			if tt.emitsRated {
				assert.Len(t, after, len(before)+1)
				assert.Contains(t, after, domain.ActivityBookRated)
			} else {
				assert.Equal(t, before, after)
			}
		})
	}
}

func TestBookService_UpdateBook_NotOwned(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")
	createTestUserForBooks(t, testStore, "user-2", "Bob")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
	})
	require.NoError(t, err)

	rating := 5
	_, err = svc.UpdateBook(ctx, "user-2", book.ID, UpdateBookRequest{Rating: &rating})
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeNotFound, appErr.Code)
}

func TestBookService_DeleteBook(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, "user-1", book.ID))

	_, err = svc.GetBook(ctx, "user-1", book.ID)
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeNotFound, appErr.Code)
}

func TestBookService_DeleteBook_NotOwned(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")
	createTestUserForBooks(t, testStore, "user-2", "Bob")

	book, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
	})
	require.NoError(t, err)

	err = svc.DeleteBook(ctx, "user-2", book.ID)
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeNotFound, appErr.Code)

	// Still there for the owner.
	_, err = svc.GetBook(ctx, "user-1", book.ID)
	assert.NoError(t, err)
}

func TestBookService_ListBooks_StatusFilter(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	_, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Status: "read"})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, "user-1", CreateBookRequest{Title: "The Hobbit", Author: "J.R.R. Tolkien"})
	require.NoError(t, err)

	books, err := svc.ListBooks(ctx, "user-1", "read", "")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)

	all, err := svc.ListBooks(ctx, "user-1", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBookService_ListBooks_InvalidStatus(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	_, err := svc.ListBooks(context.Background(), "user-1", "abandoned", "")
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeValidation, appErr.Code)
}

func TestBookService_ListBooks_QueryFoldsCaseAndDiacritics(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	_, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{Title: "Germinal", Author: "Émile Zola"})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, "user-1", CreateBookRequest{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	books, err := svc.ListBooks(ctx, "user-1", "", "emile")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Germinal", books[0].Title)
}

func TestBookService_GetShelves(t *testing.T) {
	svc, testStore, cleanup := setupTestBookService(t, nil)
	defer cleanup()
	ctx := context.Background()

	createTestUserForBooks(t, testStore, "user-1", "Alice")

	_, err := svc.CreateBook(ctx, "user-1", CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Status: "read"})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, "user-1", CreateBookRequest{Title: "The Hobbit", Author: "J.R.R. Tolkien", Status: "currently-reading"})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, "user-1", CreateBookRequest{Title: "Foundation", Author: "Isaac Asimov"})
	require.NoError(t, err)

	shelves, err := svc.GetShelves(ctx, "user-1")
	require.NoError(t, err)

	assert.Len(t, shelves.WantToRead, 1)
	assert.Len(t, shelves.CurrentlyReading, 1)
	assert.Len(t, shelves.Read, 1)
	assert.Equal(t, "Foundation", shelves.WantToRead[0].Title)
}

func TestBookService_ListUserBooksPublic_MissingUser(t *testing.T) {
	svc, _, cleanup := setupTestBookService(t, nil)
	defer cleanup()

	_, err := svc.ListUserBooksPublic(context.Background(), "user-ghost")
	require.Error(t, err)

	var appErr *domainerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeNotFound, appErr.Code)
}
