package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/search"
	"github.com/readnestapp/readnest-server/internal/store"
)

// Directory limits.
const (
	defaultDirectoryLimit = 20
	maxDirectoryLimit     = 50
)

// UserSearcher finds users by name or email for the member directory.
type UserSearcher interface {
	SearchUsers(ctx context.Context, query string, limit, offset int) (*search.SearchResult, error)
}

// DirectoryService powers the member directory: finding other readers to
// follow. Results always exclude the requester and carry the relationship
// context (am I following them, how many followers do they have) the
// client needs to render a follow button.
type DirectoryService struct {
	store    *store.Store
	searcher UserSearcher // nil falls back to newest-first listing only
	logger   *slog.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(store *store.Store, searcher UserSearcher, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		store:    store,
		searcher: searcher,
		logger:   logger,
	}
}

// DirectoryUser is a user entry in directory search results.
type DirectoryUser struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"created_at"`
	IsFollowing   bool      `json:"is_following"`
	FollowerCount int       `json:"follower_count"`
}

// SearchUsers finds users matching the query on name or email,
// case-insensitively. An empty query returns the newest members, which
// gives an empty search box something useful to show.
func (s *DirectoryService) SearchUsers(ctx context.Context, requesterID, query string, limit int) ([]DirectoryUser, error) {
	if limit <= 0 {
		limit = defaultDirectoryLimit
	}
	if limit > maxDirectoryLimit {
		limit = maxDirectoryLimit
	}

	// Fetch one extra so excluding the requester still fills the page.
	users, err := s.findUsers(ctx, query, limit+1)
	if err != nil {
		return nil, err
	}

	results := make([]DirectoryUser, 0, limit)
	for _, user := range users {
		if len(results) >= limit {
			break
		}
		if user.ID == requesterID {
			continue
		}

		entry, err := s.enrich(ctx, requesterID, user)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}

	return results, nil
}

// findUsers resolves the candidate set, via the search index when there is
// a query and it is available, otherwise by newest members.
func (s *DirectoryService) findUsers(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	if query == "" || s.searcher == nil {
		users, err := s.store.ListUsersByNewest(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		if query == "" {
			return users, nil
		}
		// No index available; the store listing is unfiltered, so bail
		// out loudly rather than return wrong results.
		return nil, errors.New("user search unavailable: no search index configured")
	}

	result, err := s.searcher.SearchUsers(ctx, query, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	users := make([]*domain.User, 0, len(result.Hits))
	for _, hit := range result.Hits {
		user, err := s.store.GetUser(ctx, hit.ID)
		if err != nil {
			// Index can lag behind deletes; skip stale hits.
			if errors.Is(err, store.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("get user %s: %w", hit.ID, err)
		}
		users = append(users, user)
	}

	return users, nil
}

// enrich adds the relationship context for one directory entry.
func (s *DirectoryService) enrich(ctx context.Context, requesterID string, user *domain.User) (DirectoryUser, error) {
	isFollowing, err := s.store.IsFollowing(ctx, requesterID, user.ID)
	if err != nil {
		return DirectoryUser{}, fmt.Errorf("check following %s: %w", user.ID, err)
	}

	followerCount, err := s.store.CountFollowers(ctx, user.ID)
	if err != nil {
		return DirectoryUser{}, fmt.Errorf("count followers %s: %w", user.ID, err)
	}

	return DirectoryUser{
		ID:            user.ID,
		DisplayName:   user.Name(),
		Email:         user.Email,
		CreatedAt:     user.CreatedAt,
		IsFollowing:   isFollowing,
		FollowerCount: followerCount,
	}, nil
}
