package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Add book",
		Description: "Adds a book to the authenticated user's catalog. Missing metadata is filled from Open Library when available.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the authenticated user's books, optionally filtered by status and search query",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/shelves",
		Summary:     "Get shelves",
		Description: "Returns the authenticated user's books grouped by reading status",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetShelves)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single book from the authenticated user's catalog",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Applies a partial update to a book. Status changes drive activity emission.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book from the authenticated user's catalog",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// CreateBookRequest is the request body for adding a book.
type CreateBookRequest struct {
	Title           string `json:"title" doc:"Book title"`
	Author          string `json:"author" doc:"Book author"`
	Status          string `json:"status,omitempty" enum:"want-to-read,currently-reading,read" doc:"Initial reading status (default want-to-read)"`
	Rating          int    `json:"rating,omitempty" doc:"Rating 0-5, 0 means unrated"`
	Notes           string `json:"notes,omitempty" doc:"Personal notes"`
	TotalPages      int    `json:"total_pages,omitempty" doc:"Page count"`
	CoverImageURL   string `json:"cover_image_url,omitempty" doc:"Cover image URL"`
	PublicationYear int    `json:"publication_year,omitempty" doc:"First publication year"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// UpdateBookRequest is the request body for a partial book update.
type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty" doc:"Book title"`
	Author          *string `json:"author,omitempty" doc:"Book author"`
	Status          *string `json:"status,omitempty" enum:"want-to-read,currently-reading,read" doc:"Reading status"`
	Rating          *int    `json:"rating,omitempty" doc:"Rating 0-5"`
	Notes           *string `json:"notes,omitempty" doc:"Personal notes"`
	TotalPages      *int    `json:"total_pages,omitempty" doc:"Page count"`
	CoverImageURL   *string `json:"cover_image_url,omitempty" doc:"Cover image URL"`
	PublicationYear *int    `json:"publication_year,omitempty" doc:"First publication year"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// BookIDInput identifies a single book.
type BookIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// ListBooksInput contains filters for listing books.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Status        string `query:"status" doc:"Filter by reading status"`
	Query         string `query:"q" doc:"Search query matched against title and author"`
}

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID              string     `json:"id" doc:"Book ID"`
	Title           string     `json:"title" doc:"Book title"`
	Author          string     `json:"author" doc:"Book author"`
	Status          string     `json:"status" doc:"Reading status"`
	Rating          int        `json:"rating,omitempty" doc:"Rating 0-5"`
	Notes           string     `json:"notes,omitempty" doc:"Personal notes"`
	TotalPages      int        `json:"total_pages,omitempty" doc:"Page count"`
	CoverImageURL   string     `json:"cover_image_url,omitempty" doc:"Cover image URL"`
	PublicationYear int        `json:"publication_year,omitempty" doc:"First publication year"`
	FinishedAt      *time.Time `json:"finished_at,omitempty" doc:"When the book was finished"`
	CreatedAt       time.Time  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt       time.Time  `json:"updated_at" doc:"Last update timestamp"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookListResponse contains a list of books.
type BookListResponse struct {
	Books []BookResponse `json:"books" doc:"Books"`
	Total int            `json:"total" doc:"Number of books returned"`
}

// BookListOutput wraps a book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// ShelvesResponse contains books grouped by reading status.
type ShelvesResponse struct {
	WantToRead       []BookResponse `json:"want_to_read" doc:"Backlog"`
	CurrentlyReading []BookResponse `json:"currently_reading" doc:"In progress"`
	Read             []BookResponse `json:"read" doc:"Finished"`
}

// ShelvesOutput wraps the shelves response for Huma.
type ShelvesOutput struct {
	Body ShelvesResponse
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, userID, service.CreateBookRequest{
		Title:           input.Body.Title,
		Author:          input.Body.Author,
		Status:          input.Body.Status,
		Rating:          input.Body.Rating,
		Notes:           input.Body.Notes,
		TotalPages:      input.Body.TotalPages,
		CoverImageURL:   input.Body.CoverImageURL,
		PublicationYear: input.Body.PublicationYear,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, userID, input.Status, input.Query)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: mapBookListResponse(books)}, nil
}

func (s *Server) handleGetShelves(ctx context.Context, input *struct {
	Authorization string `header:"Authorization"`
}) (*ShelvesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Book.GetShelves(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ShelvesOutput{
		Body: ShelvesResponse{
			WantToRead:       mapBooks(shelves.WantToRead),
			CurrentlyReading: mapBooks(shelves.CurrentlyReading),
			Read:             mapBooks(shelves.Read),
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, userID, input.ID, service.UpdateBookRequest{
		Title:           input.Body.Title,
		Author:          input.Body.Author,
		Status:          input.Body.Status,
		Rating:          input.Body.Rating,
		Notes:           input.Body.Notes,
		TotalPages:      input.Body.TotalPages,
		CoverImageURL:   input.Body.CoverImageURL,
		PublicationYear: input.Body.PublicationYear,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Helpers ===

func mapBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		Status:          string(book.Status),
		Rating:          book.Rating,
		Notes:           book.Notes,
		TotalPages:      book.TotalPages,
		CoverImageURL:   book.CoverImageURL,
		PublicationYear: book.PublicationYear,
		FinishedAt:      book.FinishedAt,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

func mapBooks(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, book := range books {
		out[i] = mapBookResponse(book)
	}
	return out
}

func mapBookListResponse(books []*domain.Book) BookListResponse {
	return BookListResponse{
		Books: mapBooks(books),
		Total: len(books),
	}
}
