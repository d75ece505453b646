// Package source fetches graph snapshots from the site backend or from disk.
//
// [HTTPSource] talks to the backend's snapshot endpoint (default
// [DefaultURL]) with retries and an optional response cache. [FileSource]
// reads a snapshot file, and [Watcher] re-reads it whenever it changes.
package source

import (
	"context"
	"strings"

	"github.com/matzehuels/sitegraph/pkg/graph"
)

// DefaultURL is the snapshot endpoint of a locally running backend.
const DefaultURL = "http://localhost:9778/graph"

// FetchErrorMessage is what interactive front ends show when a fetch fails.
const FetchErrorMessage = "Error fetching data from backend"

// Source produces graph snapshots.
type Source interface {
	Fetch(ctx context.Context) (graph.Snapshot, error)
	// String names the location, for logs and cache keys.
	String() string
}

// IsURL reports whether loc should be fetched over HTTP.
func IsURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// Open returns an HTTPSource for URLs and a FileSource otherwise.
func Open(loc string, opts ...HTTPOption) (Source, error) {
	if IsURL(loc) {
		return NewHTTPSource(loc, opts...)
	}
	return NewFileSource(loc)
}
