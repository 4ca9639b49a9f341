package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key generates a deterministic cache key for a request URL.
// Query parameters are sorted so that equivalent URLs map to the same key.
//
// Format: pubchem:host/path:param1=val1:param2=val2
func Key(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable URLs still get a stable key.
		return "pubchem:" + rawURL
	}

	parts := []string{"pubchem", u.Host + u.Path}

	if len(u.Query()) > 0 {
		query := u.Query()
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, query.Get(k)))
		}
	}

	return strings.Join(parts, ":")
}
