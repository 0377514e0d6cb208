package providers

import (
	"context"
)

// Provider defines the interface for a movie metadata provider.
//
// Payloads are returned as received or as assembled by the provider and are
// not guaranteed to be well formed; callers validate their shape.
type Provider interface {
	Name() string
	// Search returns {"result_count": n, "results": [{"name","url","poster"}, ...]}.
	Search(ctx context.Context, title string) ([]byte, error)
	// Details returns {"name","description","url","poster", ...} for the best match.
	Details(ctx context.Context, title string) ([]byte, error)
}
