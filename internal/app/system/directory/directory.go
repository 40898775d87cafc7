// internal/app/system/directory/directory.go

// Package directory defines the boundary to the third-party business-search
// API. The application only depends on the Client interface; the concrete
// HTTP client lives behind it and its internals (endpoints, payloads,
// authentication) are this package's private concern.
package directory

import "context"

// Query describes a business search.
type Query struct {
	Term       string // e.g., "plumber"
	Location   string // e.g., "Columbia, MO"
	Category   string
	MaxResults int // upper bound on returned businesses; must be > 0
}

// Business is one search result row.
type Business struct {
	Name     string
	Phone    string
	Email    string
	Website  string
	Address  string
	Category string
	Rating   float64
}

// Client searches a business directory. Implementations must honor
// Query.MaxResults and respect context cancellation.
type Client interface {
	Search(ctx context.Context, q Query) ([]Business, error)
}
