package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/sse"
)

const (
	bookPrefix       = "book:"
	bookByUserPrefix = "idx:books:user:"
)

// ErrBookNotFound is returned when a book cannot be found, or when it is
// not owned by the requesting user. The two cases are deliberately
// indistinguishable so the API never leaks another user's catalog.
var ErrBookNotFound = errors.New("book not found")

// CreateBook stores a new book with its owner index.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return errors.New("book already exists")
	}

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	userIndexKey := []byte(bookByUserPrefix + book.UserID + ":" + book.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(userIndexKey, []byte{})
	})
	if err != nil {
		return err
	}

	if s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewBookCreatedEvent(book))
	}
	s.indexBook(ctx, book)

	return nil
}

// GetBook retrieves a book by ID regardless of owner.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if book.IsDeleted() {
		return nil, ErrBookNotFound
	}

	return &book, nil
}

// GetUserBook retrieves a book by ID and verifies ownership.
func (s *Store) GetUserBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// UpdateBook updates an existing book. Ownership never changes, so the
// user index needs no maintenance here.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if !exists {
		return ErrBookNotFound
	}

	book.Touch()

	if err := s.set(key, book); err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewBookUpdatedEvent(book))
	}
	s.indexBook(ctx, book)

	return nil
}

// DeleteBook removes a book and its owner index.
func (s *Store) DeleteBook(ctx context.Context, userID, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	book, err := s.GetUserBook(ctx, userID, bookID)
	if err != nil {
		return err
	}

	key := []byte(bookPrefix + bookID)
	userIndexKey := []byte(bookByUserPrefix + userID + ":" + bookID)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete(userIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewBookDeletedEvent(book))
	}
	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteBook(ctx, bookID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove book from index", "book_id", bookID, "error", err)
		}
	}

	return nil
}

// ListUserBooks returns all books owned by userID.
func (s *Store) ListUserBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(bookByUserPrefix + userID + ":")
	var books []*domain.Book

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key format: idx:books:user:{userID}:{bookID}
			key := string(it.Item().Key())
			bookID := key[len(prefix):]
			if bookID == "" {
				continue
			}

			item, err := txn.Get([]byte(bookPrefix + bookID))
			if err != nil {
				continue
			}

			err = item.Value(func(val []byte) error {
				var book domain.Book
				if unmarshalErr := json.Unmarshal(val, &book); unmarshalErr != nil {
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				if book.IsDeleted() {
					return nil
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}

	return books, nil
}

// CountUserBooks returns the total number of books in a user's catalog.
func (s *Store) CountUserBooks(ctx context.Context, userID string) (int, error) {
	return s.countKeys(ctx, []byte(bookByUserPrefix+userID+":"))
}

// CountUserBooksByStatus returns how many of a user's books are in the
// given reading status.
func (s *Store) CountUserBooksByStatus(ctx context.Context, userID string, status domain.ReadingStatus) (int, error) {
	books, err := s.ListUserBooks(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, book := range books {
		if book.Status == status {
			count++
		}
	}
	return count, nil
}
