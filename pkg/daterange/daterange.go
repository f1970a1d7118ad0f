// Package daterange parses and validates the start/end date pairs accepted by
// the dashboard API and its clients.
//
// Dates may be given as YYYY-MM-DD or as RFC 3339 timestamps. Values without a
// zone are interpreted as UTC. A date-only end bound covers the whole day.
package daterange

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the date-only wire format.
const DateLayout = "2006-01-02"

// Validation errors. Their messages are part of the API contract.
var (
	ErrStartAfterEnd = errors.New("Start date must be before end date")
	ErrStartInFuture = errors.New("Start date cannot be in the future")
	ErrEndInFuture   = errors.New("End date cannot be in the future")
	ErrInvalidFormat = errors.New("invalid date format: use YYYY-MM-DD or RFC 3339")
)

// Range is an inclusive time interval. A nil bound is open.
type Range struct {
	Start *time.Time
	End   *time.Time
	// EndDateOnly is set by Parse when the end bound carried no time of day.
	EndDateOnly bool
}

// IsZero reports whether both bounds are open.
func (r Range) IsZero() bool { return r.Start == nil && r.End == nil }

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses one bound. dateOnly reports whether the value carried no
// time of day.
func ParseTime(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, ErrInvalidFormat
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, ErrInvalidFormat
}

// Parse builds a Range from optional textual bounds. Empty strings leave the
// corresponding bound open. A date-only end is moved to the last nanosecond
// of that day.
func Parse(start, end string) (Range, error) {
	var r Range
	if strings.TrimSpace(start) != "" {
		t, _, err := ParseTime(start)
		if err != nil {
			return Range{}, err
		}
		r.Start = &t
	}
	if strings.TrimSpace(end) != "" {
		t, dateOnly, err := ParseTime(end)
		if err != nil {
			return Range{}, err
		}
		if dateOnly {
			t = EndOfDay(t)
		}
		r.End = &t
		r.EndDateOnly = dateOnly
	}
	return r, nil
}

// Validate checks start <= end and, unless allowFuture is set, that neither
// bound lies after now. A date-only end bound of today is allowed because it
// is clamped to now afterwards; an explicit timestamp after now is not.
func (r Range) Validate(now time.Time, allowFuture bool) error {
	now = now.UTC()
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return ErrStartAfterEnd
	}
	if allowFuture {
		return nil
	}
	if r.Start != nil && r.Start.After(now) {
		return ErrStartInFuture
	}
	if r.End != nil && r.End.After(now) && !(r.EndDateOnly && sameDay(*r.End, now)) {
		return ErrEndInFuture
	}
	return nil
}

// Clamp returns a copy whose end bound does not exceed now.
func (r Range) Clamp(now time.Time) Range {
	if r.End != nil && r.End.After(now) {
		n := now.UTC()
		r.End = &n
	}
	return r
}

// ParseAndValidate combines Parse, Validate and Clamp.
func ParseAndValidate(start, end string, now time.Time, allowFuture bool) (Range, error) {
	r, err := Parse(start, end)
	if err != nil {
		return Range{}, err
	}
	if err := r.Validate(now, allowFuture); err != nil {
		return Range{}, err
	}
	if allowFuture {
		return r, nil
	}
	return r.Clamp(now), nil
}

// LastDays returns the range covering the last n days up to now.
func LastDays(n int, now time.Time) Range {
	now = now.UTC()
	start := now.AddDate(0, 0, -n)
	return Range{Start: &start, End: &now}
}

// EndOfDay returns the last nanosecond of t's UTC day.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// StartOfDay returns midnight of t's UTC day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// IsRangeError reports whether err comes from parsing or validating a range.
func IsRangeError(err error) bool {
	return errors.Is(err, ErrStartAfterEnd) ||
		errors.Is(err, ErrStartInFuture) ||
		errors.Is(err, ErrEndInFuture) ||
		errors.Is(err, ErrInvalidFormat)
}
