package model

import "strings"

// CategoryAll disables the category filter. "All" is accepted as well.
const CategoryAll = "all"

type CatalogQuery struct {
	Search   string `json:"search" form:"search"`
	Category string `json:"category" form:"category"`
}

// CategoryFilter returns the category to match exactly, or "" when the
// filter is disabled.
func (q CatalogQuery) CategoryFilter() string {
	if q.Category == CategoryAll || q.Category == "All" {
		return ""
	}
	return q.Category
}

// Matches reports whether a satisfies both constraints of q: a
// case-insensitive substring match on the title and an exact category match.
func (q CatalogQuery) Matches(a Automation) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(q.Search)) {
		return false
	}
	if c := q.CategoryFilter(); c != "" && a.Category != c {
		return false
	}
	return true
}
