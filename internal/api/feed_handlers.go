package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get activity feed",
		Description: "Returns the authenticated user's feed: their own activities merged with those of everyone they follow, newest first",
		Tags:        []string{"Feed"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFeed)
}

// FeedInput contains feed pagination parameters.
type FeedInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" doc:"Max activities (default 50, max 100)"`
}

func (s *Server) handleGetFeed(ctx context.Context, input *FeedInput) (*ActivityListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	activities, err := s.services.Feed.GetFeed(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ActivityListOutput{Body: mapActivityList(activities)}, nil
}
