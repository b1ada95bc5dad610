// Package cache holds the persistent lookup caches and the port decorators
// that consult them before calling the mapping service.
package cache

import (
	"fmt"
	"meeting-point-service/internal/platform/db"
	"strings"
)

// uniqueKeys trims keys and drops empties and duplicates, keeping order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// memberOf renders "column matches one of keys" for the dialect, with bind
// parameters numbered from first.
//
// SQLite does not support binding slices directly in an IN (...) clause.
// Only the placeholder structure is interpolated; all values remain parameterized.
func memberOf(d db.Dialect, column string, first int, keys []string) (string, []any) {
	if d == db.Postgres {
		return fmt.Sprintf("%s = ANY(%s::text[])", column, d.Placeholder(first)), []any{keys}
	}

	ph := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		ph[i] = d.Placeholder(first + i)
		args[i] = k
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(ph, ",")), args
}
