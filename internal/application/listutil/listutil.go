package listutil

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 200
)

// PageParams is the requested page of a listing.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// PageInfo describes the page returned alongside a slice of rows.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ParseLimit reads a positive integer from q[key].
// POST: def when missing or not a positive integer, otherwise at most max
func ParseLimit(q url.Values, key string, def, max int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n < 1 {
		return def
	}
	return min(n, max)
}

// ParsePageParams reads page and per_page.
// POST: Page >= 1 and 1 <= PerPage <= MaxPerPage
func ParsePageParams(q url.Values) PageParams {
	return PageParams{
		Page:    ParseLimit(q, "page", 1, int(^uint(0)>>1)),
		PerPage: ParseLimit(q, "per_page", DefaultPerPage, MaxPerPage),
	}
}

// Paginate slices items to the requested page. A page past the end
// is clamped to the last page.
func Paginate[T any](items []T, p PageParams) ([]T, PageInfo) {
	perPage := p.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(items)
	pages := max((total+perPage-1)/perPage, 1)
	page := min(max(p.Page, 1), pages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	info := PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
	return items[start:end], info
}
