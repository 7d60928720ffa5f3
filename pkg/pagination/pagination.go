package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/qbazz/storefront/pkg/errors"
)

// Params holds the window requested through the limit and offset query parameters.
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// FromRequest extracts limit/offset from r. A missing limit uses def; values
// above max are rejected rather than clamped.
func FromRequest(r *http.Request, def, max int) (Params, error) {
	p := Params{Limit: def}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > max {
			return Params{}, apperrors.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", max))
		}
		p.Limit = v
	}

	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Params{}, apperrors.InvalidInput("offset must be a non-negative integer")
		}
		p.Offset = v
	}

	return p, nil
}

// Apply returns the items inside the window.
func Apply[T any](items []T, p Params) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}
