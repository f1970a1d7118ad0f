package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	"mediawatch/internal/domain/entity"
)

// Params are the 1-based page and the page size.
type Params struct {
	Page  int
	Limit int
}

// ParseQueryParams reads page and limit from the query string. Missing
// values take the configured defaults.
func ParseQueryParams(r *http.Request, cfg Config) (Params, error) {
	params := Params{Page: cfg.DefaultPage, Limit: cfg.DefaultLimit}
	q := r.URL.Query()

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, &entity.ValidationError{Field: "page", Message: "page must be a positive integer"}
		}
		params.Page = page
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > cfg.MaxLimit {
			return params, &entity.ValidationError{
				Field:   "limit",
				Message: fmt.Sprintf("limit must be between 1 and %d", cfg.MaxLimit),
			}
		}
		params.Limit = limit
	}

	return params, nil
}
