package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readnestapp/readnest-server/internal/color"
	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's own profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Applies a partial update to the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user profile",
		Description: "Returns a user's public profile with network stats and the viewer's relationship",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUserProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/books",
		Summary:     "List user's books",
		Description: "Returns another user's book catalog for profile viewing",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserActivities",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/activities",
		Summary:     "List user's activities",
		Description: "Returns a user's recent activity log, newest first",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserActivities)
}

// === DTOs ===

// UpdateProfileRequest is the request body for a partial profile update.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" doc:"Public display name"`
	FirstName   *string `json:"first_name,omitempty" doc:"First name"`
	LastName    *string `json:"last_name,omitempty" doc:"Last name"`
}

// UpdateProfileInput wraps the profile update for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// ProfileResponse is a user's public profile with relationship context.
type ProfileResponse struct {
	ID          string               `json:"id" doc:"User ID"`
	DisplayName string               `json:"display_name" doc:"Display name"`
	Email       string               `json:"email" doc:"Email address"`
	AvatarColor string               `json:"avatar_color" doc:"Deterministic avatar hex color"`
	CreatedAt   time.Time            `json:"created_at" doc:"When the user joined"`
	Stats       NetworkStatsResponse `json:"stats" doc:"Network counters"`
	IsFollowing bool                 `json:"is_following" doc:"Whether the viewer follows this user"`
}

// ProfileOutput wraps a profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// ActivityResponse represents one activity log entry.
type ActivityResponse struct {
	ID              string    `json:"id" doc:"Activity ID"`
	UserID          string    `json:"user_id" doc:"Acting user ID"`
	Type            string    `json:"type" doc:"Activity type"`
	Action          string    `json:"action" doc:"Human-readable verb phrase"`
	CreatedAt       time.Time `json:"created_at" doc:"When the activity happened"`
	UserDisplayName string    `json:"user_display_name,omitempty" doc:"Acting user's display name"`
	BookID          string    `json:"book_id,omitempty" doc:"Subject book ID"`
	BookTitle       string    `json:"book_title,omitempty" doc:"Subject book title"`
	BookAuthor      string    `json:"book_author,omitempty" doc:"Subject book author"`
	Rating          int       `json:"rating,omitempty" doc:"Rating for book_rated activities"`
	TargetUserID    string    `json:"target_user_id,omitempty" doc:"Followed user ID for follow activities"`
	TargetUserName  string    `json:"target_user_name,omitempty" doc:"Followed user name for follow activities"`
}

// ActivityListResponse contains a list of activities.
type ActivityListResponse struct {
	Activities []ActivityResponse `json:"activities" doc:"Activities, newest first"`
	Total      int                `json:"total" doc:"Number of activities returned"`
}

// ActivityListOutput wraps an activity list for Huma.
type ActivityListOutput struct {
	Body ActivityListResponse
}

// UserActivitiesInput identifies a user and a page size.
type UserActivitiesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
	Limit         int    `query:"limit" doc:"Max activities (default 50)"`
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *struct {
	Authorization string `header:"Authorization"`
}) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Profile.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		DisplayName: input.Body.DisplayName,
		FirstName:   input.Body.FirstName,
		LastName:    input.Body.LastName,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleGetUserProfile(ctx context.Context, input *UserIDInput) (*ProfileOutput, error) {
	viewerID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfile(ctx, viewerID, input.ID)
	if err != nil {
		return nil, err
	}

	stats := NetworkStatsResponse{}
	if profile.Stats != nil {
		stats = NetworkStatsResponse{
			Followers:  profile.Stats.Followers,
			Following:  profile.Stats.Following,
			TotalBooks: profile.Stats.TotalBooks,
			BooksRead:  profile.Stats.BooksRead,
		}
	}

	return &ProfileOutput{
		Body: ProfileResponse{
			ID:          profile.ID,
			DisplayName: profile.DisplayName,
			Email:       profile.Email,
			AvatarColor: color.ForUser(profile.ID),
			CreatedAt:   profile.CreatedAt,
			Stats:       stats,
			IsFollowing: profile.IsFollowing,
		},
	}, nil
}

func (s *Server) handleListUserBooks(ctx context.Context, input *UserIDInput) (*BookListOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListUserBooksPublic(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: mapBookListResponse(books)}, nil
}

func (s *Server) handleListUserActivities(ctx context.Context, input *UserActivitiesInput) (*ActivityListOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	activities, err := s.services.Activity.GetUserActivities(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ActivityListOutput{Body: mapActivityList(activities)}, nil
}

// === Helpers ===

func mapUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.Name(),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		AvatarColor: color.ForUser(user.ID),
		IsRoot:      user.IsRoot,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

func mapActivityList(activities []*domain.Activity) ActivityListResponse {
	out := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		out[i] = ActivityResponse{
			ID:              a.ID,
			UserID:          a.UserID,
			Type:            string(a.Type),
			Action:          a.Action,
			CreatedAt:       a.CreatedAt,
			UserDisplayName: a.UserDisplayName,
			BookID:          a.BookID,
			BookTitle:       a.BookTitle,
			BookAuthor:      a.BookAuthor,
			Rating:          a.Rating,
			TargetUserID:    a.TargetUserID,
			TargetUserName:  a.TargetUserName,
		}
	}
	return ActivityListResponse{Activities: out, Total: len(out)}
}
