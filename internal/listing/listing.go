// Package listing emulates sorted, paginated directory listings on top of a
// backend that returns unordered, unpaginated entries.
package listing

import (
	"fmt"
	"sort"
	"strings"
)

// Ascending is the sort order that sorts low to high; any other value
// sorts high to low.
const Ascending = "ASC"

// Page sorts items on sortField and returns the slice for the requested
// page plus the pre-pagination total. The sort is stable, so ties keep
// their original relative order. An out-of-range page yields an empty
// slice, not an error.
func Page(items []map[string]any, sortField, sortOrder string, page, perPage int) ([]map[string]any, int) {
	total := len(items)

	sorted := make([]map[string]any, total)
	copy(sorted, items)

	if sortField != "" {
		asc := sortOrder == Ascending
		sort.SliceStable(sorted, func(i, j int) bool {
			c := compare(sorted[i][sortField], sorted[j][sortField])
			if asc {
				return c < 0
			}
			return c > 0
		})
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	start := (page - 1) * perPage
	if start >= total {
		return []map[string]any{}, total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return sorted[start:end], total
}

// compare is a three-way comparison over loosely typed field values.
// Two numbers compare numerically; everything else compares on its
// string form, with absent values ordered first.
func compare(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
