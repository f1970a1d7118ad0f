// Package params reads and validates request parameters shared by the API
// handlers. Every failure is an *entity.ValidationError or a date range
// error, so respond.SafeError answers 400.
package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mediawatch/internal/domain/entity"
	"mediawatch/pkg/daterange"
)

// Query parameter names of the date range.
const (
	StartDate = "start_date"
	EndDate   = "end_date"
)

// DateRange parses start_date and end_date. Future bounds are rejected and a
// date-only end of today is clamped to now.
func DateRange(r *http.Request, now time.Time) (daterange.Range, error) {
	q := r.URL.Query()
	return daterange.ParseAndValidate(q.Get(StartDate), q.Get(EndDate), now, false)
}

// Int parses an optional integer query parameter.
func Int(r *http.Request, name string, def int) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &entity.ValidationError{Field: name, Message: name + " must be an integer"}
	}
	return n, nil
}

// DecodeJSON decodes the request body into v. An empty body leaves v
// untouched. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &entity.ValidationError{Field: "body", Message: "request body too large"}
		}
		return &entity.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return nil
}
