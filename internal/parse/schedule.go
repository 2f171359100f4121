package parse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"room-status-backend/internal/availability"
)

const (
	// clockLayout matches the calendar's 12-hour times, e.g. "9:00AM" or
	// "12:30PM". No leading zero on the hour.
	clockLayout = "3:04PM"

	// noBookings is the one-cell sentinel row the calendar shows for an
	// empty day.
	noBookings = "No bookings made."

	rangeDelimiter = " - "
)

var (
	// ErrMalformedTime indicates a time-of-day cell that does not parse.
	// This means the upstream page format changed, so the whole row is
	// untrustworthy and the error propagates.
	ErrMalformedTime = errors.New("malformed time of day")
	// ErrMalformedRange indicates a booking range cell that does not split
	// into exactly two parseable times.
	ErrMalformedRange = errors.New("malformed booking range")
)

// Row is one scraped table row: either the single-cell sentinel or a
// two-cell (time range, reason) pair.
type Row []string

// At parses a bare 12-hour clock string onto the given calendar date in
// the facility's timezone.
func At(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, clock)
	}
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// DaySchedule converts the scraped rows for one room and date into a
// validated schedule. Sentinel rows are skipped; any malformed row fails
// the whole day, since a partial schedule would silently read as free
// time. Row order is preserved and then checked, not trusted.
func DaySchedule(rows []Row, date time.Time, loc *time.Location) (availability.Schedule, error) {
	sched := make(availability.Schedule, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == noBookings {
			continue
		}
		if len(row) != 2 {
			return nil, fmt.Errorf("%w: expected 2 cells, got %d", ErrMalformedRange, len(row))
		}
		parts := strings.Split(row[0], rangeDelimiter)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedRange, row[0])
		}
		start, err := At(date, parts[0], loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRange, err)
		}
		end, err := At(date, parts[1], loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRange, err)
		}
		sched = append(sched, availability.Interval{Start: start, End: end, Reason: row[1]})
	}
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	return sched, nil
}
