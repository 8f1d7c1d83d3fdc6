// Package dedup keeps reference-table migrations idempotent: rows already
// persisted by natural key are filtered out, and the remainder is
// deduplicated first-occurrence-wins before insertion.
package dedup

import "strings"

// Key normalizes a natural key for comparison.
func Key(s string) string {
	return strings.TrimSpace(s)
}

// Set builds a membership set from already-persisted natural keys.
func Set(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = Key(k); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Filter drops rows whose key is empty or already in existing, then drops
// later duplicates within the batch itself. Running the same source against
// the same target twice therefore yields an empty second batch.
func Filter[T any](rows []T, key func(T) string, existing map[string]struct{}) []T {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := Key(key(row))
		if k == "" {
			continue
		}
		if _, ok := existing[k]; ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}
