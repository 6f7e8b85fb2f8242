package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readnestapp/readnest-server/internal/color"
	"github.com/readnestapp/readnest-server/internal/service"
)

func (s *Server) registerDirectoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/search",
		Summary:     "Search users",
		Description: "Finds users by name or email. An empty query browses the newest members.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchUsers)
}

// === DTOs ===

// SearchUsersInput contains the directory search parameters.
type SearchUsersInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query matched against display name and email"`
	Limit         int    `query:"limit" doc:"Max results (default 20, max 50)"`
}

// DirectoryUserResponse is a user entry in search results.
type DirectoryUserResponse struct {
	ID            string    `json:"id" doc:"User ID"`
	DisplayName   string    `json:"display_name" doc:"Display name"`
	Email         string    `json:"email" doc:"Email address"`
	AvatarColor   string    `json:"avatar_color" doc:"Deterministic avatar hex color"`
	CreatedAt     time.Time `json:"created_at" doc:"When the user joined"`
	IsFollowing   bool      `json:"is_following" doc:"Whether the requester follows this user"`
	FollowerCount int       `json:"follower_count" doc:"Number of followers"`
}

// DirectoryListResponse contains directory search results.
type DirectoryListResponse struct {
	Users []DirectoryUserResponse `json:"users" doc:"Matching users"`
	Total int                     `json:"total" doc:"Number of users returned"`
}

// DirectoryListOutput wraps the search results for Huma.
type DirectoryListOutput struct {
	Body DirectoryListResponse
}

// === Handlers ===

func (s *Server) handleSearchUsers(ctx context.Context, input *SearchUsersInput) (*DirectoryListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	results, err := s.services.Directory.SearchUsers(ctx, userID, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &DirectoryListOutput{Body: mapDirectoryList(results)}, nil
}

// === Helpers ===

func mapDirectoryList(results []service.DirectoryUser) DirectoryListResponse {
	users := make([]DirectoryUserResponse, len(results))
	for i, u := range results {
		users[i] = DirectoryUserResponse{
			ID:            u.ID,
			DisplayName:   u.DisplayName,
			Email:         u.Email,
			AvatarColor:   color.ForUser(u.ID),
			CreatedAt:     u.CreatedAt,
			IsFollowing:   u.IsFollowing,
			FollowerCount: u.FollowerCount,
		}
	}
	return DirectoryListResponse{Users: users, Total: len(users)}
}
