package providers

import (
	"github.com/samber/do/v2"

	"github.com/readnestapp/readnest-server/internal/auth"
	"github.com/readnestapp/readnest-server/internal/logger"
	"github.com/readnestapp/readnest-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideActivityService provides the activity log service.
func ProvideActivityService(i do.Injector) (*service.ActivityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewActivityService(storeHandle.Store, log.Logger), nil
}

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	activityService := do.MustInvoke[*service.ActivityService](i)
	olHandle := do.MustInvoke[*OpenLibraryClientHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A typed nil inside the interface would defeat the service's nil check.
	var enricher service.Enricher
	if olHandle.Client != nil {
		enricher = olHandle.Client
	}

	return service.NewBookService(
		storeHandle.Store,
		activityService,
		enricher,
		indexHandle.SearchIndex,
		log.Logger,
	), nil
}

// ProvideSocialService provides the follow graph service.
func ProvideSocialService(i do.Injector) (*service.SocialService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	activityService := do.MustInvoke[*service.ActivityService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSocialService(storeHandle.Store, activityService, log.Logger), nil
}

// ProvideFeedService provides the activity feed service.
func ProvideFeedService(i do.Injector) (*service.FeedService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedService(storeHandle.Store, log.Logger), nil
}

// ProvideDirectoryService provides the member directory service.
func ProvideDirectoryService(i do.Injector) (*service.DirectoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDirectoryService(storeHandle.Store, indexHandle.SearchIndex, log.Logger), nil
}

// ProvideProfileService provides the user profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	socialService := do.MustInvoke[*service.SocialService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, socialService, log.Logger), nil
}
