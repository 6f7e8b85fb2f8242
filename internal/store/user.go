package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/readnestapp/readnest-server/internal/domain"
)

const (
	userPrefix           = "user:"
	userByEmailPrefix    = "idx:users:email:"   // For login lookups
	userByCreatedPrefix  = "idx:users:created:" // For newest-first directory listings
	sessionPrefix        = "session:"
	sessionByUserPrefix  = "idx:sessions:user:"  // For listing user sessions
	sessionByTokenPrefix = "idx:sessions:token:" // For refresh token lookups
)

var (
	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when attempting to create a user with an existing ID.
	ErrUserExists = errors.New("user already exists")
	// ErrEmailExists is returned when attempting to create a user with an email that's already in use.
	ErrEmailExists = errors.New("email already in use")
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session expired")
)

// CreateUser creates a new user account.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	// Normalize email for index lookup
	normalizedEmail := normalizeEmail(user.Email)
	emailKey := []byte(userByEmailPrefix + normalizedEmail)
	createdKey := []byte(userByCreatedPrefix + invertedTimestamp(user.CreatedAt) + ":" + user.ID)

	err = s.update(func(txn *badger.Txn) error {
		// Check if email is already in use
		_, err := txn.Get(emailKey)
		if err == nil {
			return ErrEmailExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email exists: %w", err)
		}

		// Save user
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Create email index
		if err := txn.Set(emailKey, []byte(user.ID)); err != nil {
			return err
		}

		// Create created-at index (key-only, newest first)
		return txn.Set(createdKey, []byte{})
	})
	if err != nil {
		return err
	}

	s.indexUser(ctx, user)
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	key := []byte(userPrefix + id)

	var user domain.User
	if err := s.get(key, &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Check soft delete
	if user.IsDeleted() {
		return nil, ErrUserNotFound
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	normalizedEmail := normalizeEmail(email)
	emailKey := []byte(userByEmailPrefix + normalizedEmail)

	// Look up user ID from email index
	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	// Get the actual user
	return s.GetUser(ctx, userID)
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)

	// Get old user for email index updates
	oldUser, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}

	user.Touch()

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Update email index if email changed
		if oldUser.Email != user.Email {
			// Delete old email index
			oldEmailKey := []byte(userByEmailPrefix + normalizeEmail(oldUser.Email))
			if err := txn.Delete(oldEmailKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			// Check new email isn't in use
			newEmailKey := []byte(userByEmailPrefix + normalizeEmail(user.Email))
			_, err := txn.Get(newEmailKey)
			if err == nil {
				return ErrEmailExists
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check new email: %w", err)
			}

			// Create new email index
			if err := txn.Set(newEmailKey, []byte(user.ID)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.indexUser(ctx, user)
	return nil
}

// ListUsers returns all non-deleted users (for admin view).
func (s *Store) ListUsers(_ context.Context) ([]*domain.User, error) {
	prefix := []byte(userPrefix)
	var users []*domain.User

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var user domain.User
				if unmarshalErr := json.Unmarshal(val, &user); unmarshalErr != nil {
					// Skip malformed users
					return nil //nolint:nilerr // intentionally skip malformed entries
				}

				// Skip deleted users
				if user.IsDeleted() {
					return nil
				}

				users = append(users, &user)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// ListUsersByNewest returns up to limit non-deleted users, newest first.
// Backs the directory listing when no search query is given.
func (s *Store) ListUsersByNewest(ctx context.Context, limit int) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(userByCreatedPrefix)
	var users []*domain.User

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if len(users) >= limit {
				break
			}

			// Key format: idx:users:created:{inverted_ts}:{id}
			key := string(it.Item().Key())
			if len(key) <= len(userByCreatedPrefix)+20 {
				continue
			}
			userID := key[len(userByCreatedPrefix)+20:]

			item, err := txn.Get([]byte(userPrefix + userID))
			if err != nil {
				continue
			}

			var user domain.User
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			}); err != nil {
				continue
			}
			if user.IsDeleted() {
				continue
			}

			users = append(users, &user)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list users by newest: %w", err)
	}

	return users, nil
}

// normalizeEmail normalizes an email address for consistent lookups.
// Lowercases and trims whitespace.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
