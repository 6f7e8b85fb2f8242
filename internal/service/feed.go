package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/store"
)

// Feed limits.
const (
	defaultFeedLimit = 50
	maxFeedLimit     = 100
)

// FeedService assembles activity feeds. Feeds are computed on read by
// merging the per-user activity logs of everyone the viewer follows, plus
// the viewer's own; nothing is precomputed on write, so follow and unfollow
// take effect on the next fetch.
type FeedService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewFeedService creates a new feed service.
func NewFeedService(store *store.Store, logger *slog.Logger) *FeedService {
	return &FeedService{
		store:  store,
		logger: logger,
	}
}

// GetFeed returns the viewer's home feed: activities from followed users
// and the viewer, newest first.
func (s *FeedService) GetFeed(ctx context.Context, userID string, limit int) ([]*domain.Activity, error) {
	limit = clampFeedLimit(limit)

	follows, err := s.store.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}

	// Own activity always shows up in the home feed.
	userIDs := make([]string, 0, len(follows)+1)
	for _, follow := range follows {
		userIDs = append(userIDs, follow.FolloweeID)
	}
	userIDs = append(userIDs, userID)

	activities, err := s.store.GetFeedActivities(ctx, userIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("get feed activities: %w", err)
	}

	return activities, nil
}

// GetGlobalFeed returns the most recent activities across all users.
// Intended for admin visibility into instance activity.
func (s *FeedService) GetGlobalFeed(ctx context.Context, limit int) ([]*domain.Activity, error) {
	limit = clampFeedLimit(limit)

	activities, err := s.store.GetActivitiesFeed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get global feed: %w", err)
	}
	return activities, nil
}

// clampFeedLimit applies the default and the hard maximum.
func clampFeedLimit(limit int) int {
	if limit <= 0 {
		return defaultFeedLimit
	}
	if limit > maxFeedLimit {
		return maxFeedLimit
	}
	return limit
}
