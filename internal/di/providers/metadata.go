package providers

import (
	"github.com/samber/do/v2"

	"github.com/readnestapp/readnest-server/internal/config"
	"github.com/readnestapp/readnest-server/internal/logger"
	"github.com/readnestapp/readnest-server/internal/metadata/openlibrary"
)

// OpenLibraryClientHandle wraps the Open Library client. Client is nil when
// enrichment is disabled by configuration.
type OpenLibraryClientHandle struct {
	Client *openlibrary.Client
}

// ProvideOpenLibraryClient provides the book metadata enrichment client.
func ProvideOpenLibraryClient(i do.Injector) (*OpenLibraryClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.OpenLibrary.Enabled {
		log.Info("Open Library enrichment disabled by configuration")
		return &OpenLibraryClientHandle{Client: nil}, nil
	}

	client := openlibrary.NewClient(cfg.OpenLibrary.BaseURL, log.Logger)
	log.Info("Open Library enrichment enabled")

	return &OpenLibraryClientHandle{Client: client}, nil
}
