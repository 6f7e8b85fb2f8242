package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/readnestapp/readnest-server/internal/domain"
	domainerrors "github.com/readnestapp/readnest-server/internal/errors"
	"github.com/readnestapp/readnest-server/internal/id"
	"github.com/readnestapp/readnest-server/internal/metadata/openlibrary"
	"github.com/readnestapp/readnest-server/internal/normalize"
	"github.com/readnestapp/readnest-server/internal/search"
	"github.com/readnestapp/readnest-server/internal/store"
)

// Enricher fills in missing book metadata from an external catalog.
type Enricher interface {
	EnrichBook(ctx context.Context, title, author string) openlibrary.Enrichment
}

// BookSearcher finds books on one user's shelf by title or author.
type BookSearcher interface {
	SearchBooks(ctx context.Context, ownerID, query string, limit, offset int) (*search.SearchResult, error)
}

// ratedActivityThreshold is the minimum rating that produces a book_rated
// activity. Lower ratings are stored but kept out of followers' feeds.
const ratedActivityThreshold = 4

// BookService manages each user's book catalog and its reading lifecycle.
// Status transitions drive activity emission: only changes produce
// activities, so saving a book with the same status twice stays silent.
type BookService struct {
	store      *store.Store
	activities *ActivityService
	enricher   Enricher     // nil disables metadata enrichment
	searcher   BookSearcher // nil falls back to in-memory filtering
	logger     *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	store *store.Store,
	activities *ActivityService,
	enricher Enricher,
	searcher BookSearcher,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:      store,
		activities: activities,
		enricher:   enricher,
		searcher:   searcher,
		logger:     logger,
	}
}

// CreateBookRequest contains the data for adding a book to a catalog.
type CreateBookRequest struct {
	Title           string `json:"title" validate:"required,max=500"`
	Author          string `json:"author" validate:"required,max=200"`
	Status          string `json:"status,omitempty" validate:"omitempty,oneof=want-to-read currently-reading read"`
	Rating          int    `json:"rating,omitempty" validate:"gte=0,lte=5"`
	Notes           string `json:"notes,omitempty" validate:"max=5000"`
	TotalPages      int    `json:"total_pages,omitempty" validate:"gte=0"`
	CoverImageURL   string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	PublicationYear int    `json:"publication_year,omitempty" validate:"gte=0"`
}

// UpdateBookRequest contains a partial update for a book.
// Nil fields are left unchanged.
type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,max=500"`
	Author          *string `json:"author,omitempty" validate:"omitempty,max=200"`
	Status          *string `json:"status,omitempty" validate:"omitempty,oneof=want-to-read currently-reading read"`
	Rating          *int    `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
	TotalPages      *int    `json:"total_pages,omitempty" validate:"omitempty,gte=0"`
	CoverImageURL   *string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	PublicationYear *int    `json:"publication_year,omitempty" validate:"omitempty,gte=0"`
}

// Shelves groups a user's books by reading status.
type Shelves struct {
	WantToRead       []*domain.Book `json:"want_to_read"`
	CurrentlyReading []*domain.Book `json:"currently_reading"`
	Read             []*domain.Book `json:"read"`
}

// CreateBook adds a book to the user's catalog. Missing metadata (pages,
// cover, publication year) is filled from Open Library when enrichment is
// enabled; enrichment failure never blocks creation. A book_added activity
// is always emitted, plus started/finished/rated activities when the book
// is created directly in those states.
func (s *BookService) CreateBook(ctx context.Context, userID string, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	status := domain.ReadingStatus(req.Status)
	if req.Status == "" {
		status = domain.StatusWantToRead
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Syncable: domain.Syncable{
			ID: bookID,
		},
		UserID:          userID,
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		Status:          status,
		Rating:          req.Rating,
		Notes:           req.Notes,
		TotalPages:      req.TotalPages,
		CoverImageURL:   req.CoverImageURL,
		PublicationYear: req.PublicationYear,
	}
	book.InitTimestamps()

	if book.Status == domain.StatusRead {
		now := time.Now()
		book.FinishedAt = &now
	}

	s.enrichBook(ctx, book)

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	// Creation announces only the addition. Started/finished/rated
	// activities require a transition from a prior value, which a brand
	// new book does not have; those fire from UpdateBook.
	s.recordActivity(book.ID, func() error {
		return s.activities.RecordBookAdded(ctx, user, book)
	})

	s.logger.Info("book created",
		"book_id", book.ID,
		"user_id", userID,
		"status", book.Status,
	)

	return book, nil
}

// UpdateBook applies a partial update to a book the user owns. Status and
// rating changes drive the activity rules: moving to currently-reading emits
// book_started, moving to read emits book_finished and stamps FinishedAt,
// moving away from read clears FinishedAt, and a rating change landing at 4
// or above emits book_rated (including 4 to 5).
func (s *BookService) UpdateBook(ctx context.Context, userID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	book, err := s.store.GetUserBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	prevStatus := book.Status
	prevRating := book.Rating

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.Status != nil {
		book.Status = domain.ReadingStatus(*req.Status)
	}
	if req.Rating != nil {
		book.Rating = *req.Rating
	}
	if req.Notes != nil {
		book.Notes = *req.Notes
	}
	if req.TotalPages != nil {
		book.TotalPages = *req.TotalPages
	}
	if req.CoverImageURL != nil {
		book.CoverImageURL = *req.CoverImageURL
	}
	if req.PublicationYear != nil {
		book.PublicationYear = *req.PublicationYear
	}

	statusChanged := book.Status != prevStatus
	if statusChanged {
		if book.Status == domain.StatusRead {
			now := time.Now()
			book.FinishedAt = &now
		} else if prevStatus == domain.StatusRead {
			// Re-opening a finished book forgets the finish date.
			book.FinishedAt = nil
		}
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if statusChanged {
		switch book.Status {
		case domain.StatusCurrentlyReading:
			s.recordActivity(book.ID, func() error {
				return s.activities.RecordBookStarted(ctx, user, book)
			})
		case domain.StatusRead:
			s.recordActivity(book.ID, func() error {
				return s.activities.RecordBookFinished(ctx, user, book)
			})
		case domain.StatusWantToRead:
			// Moving back to the backlog is not feed-worthy.
		}
	}

	// Any rating change that lands at or above the threshold announces,
	// including bumping an already-high rating.
	if book.Rating != prevRating && book.Rating >= ratedActivityThreshold {
		s.recordActivity(book.ID, func() error {
			return s.activities.RecordBookRated(ctx, user, book)
		})
	}

	return book, nil
}

// GetBook returns a single book the user owns.
func (s *BookService) GetBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetUserBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a book from the user's catalog.
// Past activities referencing the book are kept; feeds tolerate dangling
// book IDs.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID string) error {
	if err := s.store.DeleteBook(ctx, userID, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted", "book_id", bookID, "user_id", userID)
	return nil
}

// ListBooks returns the user's books, optionally filtered by reading status
// and by a title/author search query.
func (s *BookService) ListBooks(ctx context.Context, userID, status, query string) ([]*domain.Book, error) {
	if status != "" && !domain.ReadingStatus(status).Valid() {
		return nil, domainerrors.Validationf("invalid status: %s", status)
	}

	books, err := s.store.ListUserBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	if status != "" {
		filtered := books[:0]
		for _, book := range books {
			if book.Status == domain.ReadingStatus(status) {
				filtered = append(filtered, book)
			}
		}
		books = filtered
	}

	if query != "" {
		books, err = s.filterByQuery(ctx, userID, books, query)
		if err != nil {
			return nil, err
		}
	}

	return books, nil
}

// ListUserBooksPublic returns another user's books for profile viewing.
func (s *BookService) ListUserBooksPublic(ctx context.Context, ownerID string) ([]*domain.Book, error) {
	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	books, err := s.store.ListUserBooks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetShelves returns the user's books grouped by reading status.
func (s *BookService) GetShelves(ctx context.Context, userID string) (*Shelves, error) {
	books, err := s.store.ListUserBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	shelves := &Shelves{
		WantToRead:       []*domain.Book{},
		CurrentlyReading: []*domain.Book{},
		Read:             []*domain.Book{},
	}

	for _, book := range books {
		switch book.Status {
		case domain.StatusWantToRead:
			shelves.WantToRead = append(shelves.WantToRead, book)
		case domain.StatusCurrentlyReading:
			shelves.CurrentlyReading = append(shelves.CurrentlyReading, book)
		case domain.StatusRead:
			shelves.Read = append(shelves.Read, book)
		}
	}

	return shelves, nil
}

// filterByQuery narrows books to those matching the query on title or
// author. The search index answers when available; otherwise a folded
// substring match over the already-loaded books does.
func (s *BookService) filterByQuery(ctx context.Context, userID string, books []*domain.Book, query string) ([]*domain.Book, error) {
	if s.searcher != nil {
		result, err := s.searcher.SearchBooks(ctx, userID, query, len(books), 0)
		if err != nil {
			return nil, fmt.Errorf("search books: %w", err)
		}
		matched := make(map[string]bool, len(result.Hits))
		for _, hit := range result.Hits {
			matched[hit.ID] = true
		}
		filtered := books[:0]
		for _, book := range books {
			if matched[book.ID] {
				filtered = append(filtered, book)
			}
		}
		return filtered, nil
	}

	folded := normalize.Fold(query)
	filtered := books[:0]
	for _, book := range books {
		if strings.Contains(normalize.Fold(book.Title), folded) ||
			strings.Contains(normalize.Fold(book.Author), folded) {
			filtered = append(filtered, book)
		}
	}
	return filtered, nil
}

// enrichBook fills empty metadata fields from Open Library.
// Existing values always win; failures only log.
func (s *BookService) enrichBook(ctx context.Context, book *domain.Book) {
	if s.enricher == nil {
		return
	}
	if book.TotalPages > 0 && book.CoverImageURL != "" && book.PublicationYear > 0 {
		return
	}

	enrichment := s.enricher.EnrichBook(ctx, book.Title, book.Author)

	if book.TotalPages == 0 {
		book.TotalPages = enrichment.TotalPages
	}
	if book.CoverImageURL == "" {
		book.CoverImageURL = enrichment.CoverImageURL
	}
	if book.PublicationYear == 0 {
		book.PublicationYear = enrichment.PublicationYear
	}
}

// recordActivity runs an activity recorder, logging failures instead of
// failing the catalog operation. The catalog is the source of truth; the
// feed is derived and tolerates gaps.
func (s *BookService) recordActivity(bookID string, record func() error) {
	if err := record(); err != nil {
		s.logger.Warn("failed to record activity",
			"book_id", bookID,
			"error", err,
		)
	}
}
