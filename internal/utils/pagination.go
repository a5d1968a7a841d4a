// Package utils contains small shared helpers with no project dependencies.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 integer, falling back to def when s is
// empty or malformed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ClampPage normalizes a page/pageSize pair: page floors at 1, pageSize
// floors at 1 and caps at max.
func ClampPage(page, pageSize, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if max > 0 && pageSize > max {
		pageSize = max
	}
	return page, pageSize
}
