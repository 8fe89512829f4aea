package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached data-source response.
type Key struct {
	// Endpoint is the request path (e.g. "/data", "/data/count").
	Endpoint string

	// Query holds the request query parameters (e.g. limit/offset/columns).
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: rowview:endpoint:param1=val1:param2=val2
//
// Example:
//
//	rowview:data:limit=10000:offset=20000
func (k Key) String() string {
	parts := []string{"rowview"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Query.Get(name)))
		}
	}

	return strings.Join(parts, ":")
}
