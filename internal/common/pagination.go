package common

import (
	"net/http"
	"strconv"
)

// maxPerPage caps the page size so a single request cannot drag the whole
// catalog out of Postgres.
const maxPerPage = 100

// Pagination is the list-response metadata envelope.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
}

// ParsePagination reads page and limit query parameters. Page defaults to 1,
// perPage to defaultPerPage, and perPage is clamped to maxPerPage.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
