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
	"github.com/readnestapp/readnest-server/internal/store"
)

// ProfileService assembles user profile views and handles profile updates.
type ProfileService struct {
	store  *store.Store
	social *SocialService
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *store.Store, social *SocialService, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		social: social,
		logger: logger,
	}
}

// UserProfile is the public view of a user, with network stats and the
// viewer's relationship to them.
type UserProfile struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"display_name"`
	Email       string               `json:"email"`
	CreatedAt   time.Time            `json:"created_at"`
	Stats       *domain.NetworkStats `json:"stats"`
	IsFollowing bool                 `json:"is_following"`
}

// UpdateProfileRequest contains a partial profile update.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
}

// GetProfile returns the public profile of userID as seen by viewerID.
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, userID string) (*UserProfile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	stats, err := s.social.GetNetworkStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewerID != "" && viewerID != userID {
		isFollowing, err = s.store.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			return nil, fmt.Errorf("check following: %w", err)
		}
	}

	return &UserProfile{
		ID:          user.ID,
		DisplayName: user.Name(),
		Email:       user.Email,
		CreatedAt:   user.CreatedAt,
		Stats:       stats,
		IsFollowing: isFollowing,
	}, nil
}

// UpdateProfile applies a partial update to the user's own profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	// omitempty skips min=1 for a pointer at "", so check it here.
	if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) == "" {
		return nil, domainerrors.Validation("display_name cannot be empty")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID)

	return user, nil
}
