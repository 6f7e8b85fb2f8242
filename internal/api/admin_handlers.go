package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGlobalFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/feed",
		Summary:     "Get global feed",
		Description: "Returns all activities across every user, newest first. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGlobalFeed)
}

func (s *Server) handleGetGlobalFeed(ctx context.Context, input *FeedInput) (*ActivityListOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	activities, err := s.services.Feed.GetGlobalFeed(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ActivityListOutput{Body: mapActivityList(activities)}, nil
}
