// Package search filters the catalog snapshot as the operator types.
package search

import (
	"strings"

	"MiniStoreConsole/internal/backend"
)

// Match returns products whose name or category contains query, ignoring case.
// A blank query matches nothing. Surrounding spaces are part of the match.
func Match(products []backend.Product, query string) []backend.Product {
	if strings.TrimSpace(query) == "" {
		return []backend.Product{}
	}
	q := strings.ToLower(query)

	out := make([]backend.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			(p.Category != "" && strings.Contains(strings.ToLower(p.Category), q)) {
			out = append(out, p)
		}
	}
	return out
}
