package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/readnestapp/readnest-server/internal/config"
	"github.com/readnestapp/readnest-server/internal/logger"
	"github.com/readnestapp/readnest-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index and wires it to the store
// so user and book writes are indexed automatically.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Metadata.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded backfills the index when it is empty but the
// store holds data, for instance after a mapping version bump wiped it.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	users, err := storeHandle.ListUsers(ctx)
	if err != nil || len(users) == 0 {
		return
	}

	log.Info("Search index is empty but users exist, triggering initial reindex",
		"user_count", len(users),
	)

	go func() {
		reindexCtx := context.Background()

		var docs []*search.SearchDocument
		for _, user := range users {
			docs = append(docs, search.UserToSearchDocument(user))

			books, err := storeHandle.ListUserBooks(reindexCtx, user.ID)
			if err != nil {
				log.Warn("Reindex skipped a user's books", "user_id", user.ID, "error", err)
				continue
			}
			for _, book := range books {
				docs = append(docs, search.BookToSearchDocument(book))
			}
		}

		if err := indexHandle.IndexDocuments(docs); err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}

		count, _ := indexHandle.DocumentCount()
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
