package sources

import (
	"context"

	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/pkg/httpclient"
)

// Fetcher retrieves one source shape and maps it onto canonical listings.
// Concrete implementations live in shape-specific files (e.g., csv.go).
type Fetcher interface {
	Type() string
	Fetch(ctx context.Context, src Source) ([]domain.Listing, error)
}

// FetcherRegistry resolves the fetcher implementation for a given source.
type FetcherRegistry interface {
	FetcherFor(src Source) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
