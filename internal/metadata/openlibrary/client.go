package openlibrary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://openlibrary.org"

// coversBaseURL serves cover images by Open Library cover ID.
const coversBaseURL = "https://covers.openlibrary.org/b/id"

// Client provides access to the Open Library search API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	baseURL     string
}

// NewClient creates a new Open Library client.
// baseURL overrides the public endpoint, mainly for tests; empty uses the default.
// Open Library asks for no more than 1 request per second from bots.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
		baseURL:     baseURL,
	}
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
