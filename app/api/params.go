package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/factoryops/inventory/models"
)

// PathID parses a positive numeric path value.
func PathID(r *http.Request, name string) (uint, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", models.ErrInvalidInput, name, raw)
	}
	return uint(id), nil
}

// Page bounds a list endpoint: Default is used when no limit is sent and
// larger limits are cut down to Max.
type Page struct {
	Default int
	Max     int
}

// Parse reads offset and limit from the query string. Anything that is not a
// non-negative offset or a positive limit is rejected as invalid input.
func (p Page) Parse(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()

	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("%w: offset must be a non-negative integer, got %q", models.ErrInvalidInput, raw)
		}
	}

	limit = p.Default
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("%w: limit must be a positive integer, got %q", models.ErrInvalidInput, raw)
		}
	}
	return offset, min(limit, p.Max), nil
}
