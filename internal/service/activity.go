package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/id"
	"github.com/readnestapp/readnest-server/internal/store"
)

// ActivityService manages social activity recording and retrieval.
// Each recorder denormalizes actor and subject context into the activity so
// feeds render without extra lookups. Broadcasting to SSE clients happens
// inside the store when the activity is persisted.
type ActivityService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(store *store.Store, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		store:  store,
		logger: logger,
	}
}

// RecordBookAdded creates an activity when a user adds a book to their catalog.
func (s *ActivityService) RecordBookAdded(ctx context.Context, user *domain.User, book *domain.Book) error {
	activity, err := s.newBookActivity(user, book, domain.ActivityBookAdded, "added")
	if err != nil {
		return err
	}
	return s.record(ctx, activity)
}

// RecordBookStarted creates an activity when a book moves to currently-reading.
func (s *ActivityService) RecordBookStarted(ctx context.Context, user *domain.User, book *domain.Book) error {
	activity, err := s.newBookActivity(user, book, domain.ActivityBookStarted, "started reading")
	if err != nil {
		return err
	}
	return s.record(ctx, activity)
}

// RecordBookFinished creates an activity when a book moves to read.
func (s *ActivityService) RecordBookFinished(ctx context.Context, user *domain.User, book *domain.Book) error {
	activity, err := s.newBookActivity(user, book, domain.ActivityBookFinished, "finished reading")
	if err != nil {
		return err
	}
	return s.record(ctx, activity)
}

// RecordBookRated creates an activity when a book's rating changes to 4 or
// higher. Callers own the threshold check; this just records.
func (s *ActivityService) RecordBookRated(ctx context.Context, user *domain.User, book *domain.Book) error {
	activity, err := s.newBookActivity(user, book, domain.ActivityBookRated, "rated")
	if err != nil {
		return err
	}
	activity.Rating = book.Rating
	return s.record(ctx, activity)
}

// RecordFollow creates an activity when one user follows another.
func (s *ActivityService) RecordFollow(ctx context.Context, follower, followee *domain.User) error {
	activityID, err := id.Generate("act")
	if err != nil {
		return fmt.Errorf("generate activity ID: %w", err)
	}

	activity := &domain.Activity{
		ID:              activityID,
		UserID:          follower.ID,
		Type:            domain.ActivityFollow,
		Action:          "followed",
		CreatedAt:       time.Now(),
		UserDisplayName: follower.Name(),
		TargetUserID:    followee.ID,
		TargetUserName:  followee.Name(),
	}

	return s.record(ctx, activity)
}

// GetUserActivities retrieves recent activities for a specific user,
// newest first.
func (s *ActivityService) GetUserActivities(ctx context.Context, userID string, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.GetUserActivities(ctx, userID, limit)
}

// newBookActivity builds the common shape shared by all book activities.
func (s *ActivityService) newBookActivity(user *domain.User, book *domain.Book, activityType domain.ActivityType, action string) (*domain.Activity, error) {
	activityID, err := id.Generate("act")
	if err != nil {
		return nil, fmt.Errorf("generate activity ID: %w", err)
	}

	return &domain.Activity{
		ID:              activityID,
		UserID:          user.ID,
		Type:            activityType,
		Action:          action,
		CreatedAt:       time.Now(),
		UserDisplayName: user.Name(),
		BookID:          book.ID,
		BookTitle:       book.Title,
		BookAuthor:      book.Author,
	}, nil
}

// record persists the activity and logs it.
func (s *ActivityService) record(ctx context.Context, activity *domain.Activity) error {
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	s.logger.Info("activity recorded",
		"type", activity.Type,
		"user_id", activity.UserID,
		"book_id", activity.BookID,
		"target_user_id", activity.TargetUserID,
	)

	return nil
}
