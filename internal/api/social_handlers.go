package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readnestapp/readnest-server/internal/service"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "followUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}/follow",
		Summary:     "Follow user",
		Description: "Creates a follow edge from the authenticated user to the target user",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFollowUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollowUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}/follow",
		Summary:     "Unfollow user",
		Description: "Removes the follow edge from the authenticated user to the target user",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnfollowUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowing",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/following",
		Summary:     "List following",
		Description: "Returns the users the target user follows",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFollowing)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/followers",
		Summary:     "List followers",
		Description: "Returns the users following the target user",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFollowers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNetworkStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/stats",
		Summary:     "Get network stats",
		Description: "Returns follower, following, and book counts for a user",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetNetworkStats)
}

// === DTOs ===

// UserIDInput identifies a target user.
type UserIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
}

// ConnectionResponse is a user entry on a following or followers list.
type ConnectionResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	Email       string    `json:"email" doc:"Email address"`
	FollowedAt  time.Time `json:"followed_at" doc:"When the follow was created"`
}

// ConnectionListResponse contains a list of connections.
type ConnectionListResponse struct {
	Users []ConnectionResponse `json:"users" doc:"Connected users"`
	Total int                  `json:"total" doc:"Number of users returned"`
}

// ConnectionListOutput wraps a connection list for Huma.
type ConnectionListOutput struct {
	Body ConnectionListResponse
}

// NetworkStatsResponse contains a user's network counters.
type NetworkStatsResponse struct {
	Followers  int `json:"followers" doc:"Number of followers"`
	Following  int `json:"following" doc:"Number of users followed"`
	TotalBooks int `json:"total_books" doc:"Total books in catalog"`
	BooksRead  int `json:"books_read" doc:"Books marked read"`
}

// NetworkStatsOutput wraps the stats response for Huma.
type NetworkStatsOutput struct {
	Body NetworkStatsResponse
}

// === Handlers ===

func (s *Server) handleFollowUser(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.Follow(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Following user"}}, nil
}

func (s *Server) handleUnfollowUser(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.Unfollow(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Unfollowed user"}}, nil
}

func (s *Server) handleListFollowing(ctx context.Context, input *UserIDInput) (*ConnectionListOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	connections, err := s.services.Social.GetFollowing(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ConnectionListOutput{Body: mapConnectionList(connections)}, nil
}

func (s *Server) handleListFollowers(ctx context.Context, input *UserIDInput) (*ConnectionListOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	connections, err := s.services.Social.GetFollowers(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ConnectionListOutput{Body: mapConnectionList(connections)}, nil
}

func (s *Server) handleGetNetworkStats(ctx context.Context, input *UserIDInput) (*NetworkStatsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	stats, err := s.services.Social.GetNetworkStats(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &NetworkStatsOutput{
		Body: NetworkStatsResponse{
			Followers:  stats.Followers,
			Following:  stats.Following,
			TotalBooks: stats.TotalBooks,
			BooksRead:  stats.BooksRead,
		},
	}, nil
}

// === Helpers ===

func mapConnectionList(connections []service.ConnectionUser) ConnectionListResponse {
	users := make([]ConnectionResponse, len(connections))
	for i, c := range connections {
		users[i] = ConnectionResponse{
			ID:          c.ID,
			DisplayName: c.DisplayName,
			Email:       c.Email,
			FollowedAt:  c.FollowedAt,
		}
	}
	return ConnectionListResponse{Users: users, Total: len(users)}
}
