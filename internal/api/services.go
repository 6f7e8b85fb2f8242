package api

import (
	"github.com/readnestapp/readnest-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Session   *service.SessionService
	Book      *service.BookService
	Social    *service.SocialService
	Feed      *service.FeedService
	Directory *service.DirectoryService
	Profile   *service.ProfileService
	Activity  *service.ActivityService
}
