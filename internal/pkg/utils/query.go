package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
)

// DefaultLimit is applied when a list request carries no limit
const DefaultLimit = 100

// MaxLimit is the largest limit a list request may ask for
const MaxLimit = 1000

// ParseLimit reads the "limit" query parameter, clamping it to [1, MaxLimit]
func ParseLimit(r *http.Request) int {
	limit := parseIntQuery(r.URL.Query().Get("limit"), DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}

// ParseDateQuery reads an optional RFC3339 or YYYY-MM-DD query parameter
func ParseDateQuery(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, errors.BadRequest(name + " must be an RFC3339 timestamp or YYYY-MM-DD date")
	}
	return &t, nil
}

func parseIntQuery(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
