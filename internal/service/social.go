package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/readnestapp/readnest-server/internal/domain"
	domainerrors "github.com/readnestapp/readnest-server/internal/errors"
	"github.com/readnestapp/readnest-server/internal/id"
	"github.com/readnestapp/readnest-server/internal/store"
)

// SocialService manages the follow graph between users.
type SocialService struct {
	store      *store.Store
	activities *ActivityService
	logger     *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(store *store.Store, activities *ActivityService, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:      store,
		activities: activities,
		logger:     logger,
	}
}

// ConnectionUser is a user summary on a following or followers list.
type ConnectionUser struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	FollowedAt  time.Time `json:"followed_at"`
}

// Follow creates a follow edge from follower to followee and records a
// follow activity on the follower's log. Following yourself, following
// someone twice, and following a missing user are all rejected.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return domainerrors.Validation("you cannot follow yourself")
	}

	follower, err := s.store.GetUser(ctx, followerID)
	if err != nil {
		return fmt.Errorf("get follower: %w", err)
	}

	followee, err := s.store.GetUser(ctx, followeeID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("get followee: %w", err)
	}

	followID, err := id.Generate("follow")
	if err != nil {
		return fmt.Errorf("generate follow ID: %w", err)
	}

	follow := &domain.Follow{
		ID:         followID,
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}

	if err := s.store.CreateFollow(ctx, follow); err != nil {
		if errors.Is(err, store.ErrSelfFollow) {
			return domainerrors.Validation("you cannot follow yourself")
		}
		if errors.Is(err, store.ErrAlreadyFollowing) {
			return domainerrors.Conflict("already following this user")
		}
		return fmt.Errorf("create follow: %w", err)
	}

	if err := s.activities.RecordFollow(ctx, follower, followee); err != nil {
		s.logger.Warn("failed to record follow activity",
			"follower_id", followerID,
			"followee_id", followeeID,
			"error", err,
		)
	}

	s.logger.Info("user followed",
		"follower_id", followerID,
		"followee_id", followeeID,
	)

	return nil
}

// Unfollow removes a follow edge. Unfollowing someone you don't follow is
// a validation error, not a silent success, so clients learn their state
// is stale.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if err := s.store.DeleteFollow(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, store.ErrNotFollowing) {
			return domainerrors.Validation("you are not following this user")
		}
		return fmt.Errorf("delete follow: %w", err)
	}

	s.logger.Info("user unfollowed",
		"follower_id", followerID,
		"followee_id", followeeID,
	)

	return nil
}

// IsFollowing reports whether follower follows followee.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return s.store.IsFollowing(ctx, followerID, followeeID)
}

// GetFollowing returns the users that userID follows, with follow dates.
func (s *SocialService) GetFollowing(ctx context.Context, userID string) ([]ConnectionUser, error) {
	follows, err := s.store.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return s.resolveConnections(ctx, follows, func(f *domain.Follow) string { return f.FolloweeID })
}

// GetFollowers returns the users following userID, with follow dates.
func (s *SocialService) GetFollowers(ctx context.Context, userID string) ([]ConnectionUser, error) {
	follows, err := s.store.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return s.resolveConnections(ctx, follows, func(f *domain.Follow) string { return f.FollowerID })
}

// GetNetworkStats returns follower, following, and book counts for a user.
func (s *SocialService) GetNetworkStats(ctx context.Context, userID string) (*domain.NetworkStats, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	followers, err := s.store.CountFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}

	following, err := s.store.CountFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}

	totalBooks, err := s.store.CountUserBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	booksRead, err := s.store.CountUserBooksByStatus(ctx, userID, domain.StatusRead)
	if err != nil {
		return nil, fmt.Errorf("count read books: %w", err)
	}

	return &domain.NetworkStats{
		Followers:  followers,
		Following:  following,
		TotalBooks: totalBooks,
		BooksRead:  booksRead,
	}, nil
}

// resolveConnections loads the user on the far side of each follow edge.
// Edges pointing at deleted users are skipped rather than failing the list.
func (s *SocialService) resolveConnections(
	ctx context.Context,
	follows []*domain.Follow,
	otherSide func(*domain.Follow) string,
) ([]ConnectionUser, error) {
	connections := make([]ConnectionUser, 0, len(follows))
	for _, follow := range follows {
		userID := otherSide(follow)
		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("get user %s: %w", userID, err)
		}

		connections = append(connections, ConnectionUser{
			ID:          user.ID,
			DisplayName: user.Name(),
			Email:       user.Email,
			FollowedAt:  follow.CreatedAt,
		})
	}
	return connections, nil
}
