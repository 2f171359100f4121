package availability

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrIntervalBounds indicates a booking whose start does not precede
	// its end.
	ErrIntervalBounds = errors.New("booking start must precede its end")
	// ErrScheduleOrder indicates a schedule whose intervals are not in
	// chronological order, or overlap beyond exact adjacency. The
	// inference scan depends on ordering, so this fails loudly instead of
	// producing a wrong status.
	ErrScheduleOrder = errors.New("schedule intervals out of order")
)

// Interval is one booking of a room: a half-open-feeling but
// inclusive-on-both-ends time range plus the free-text reason the booker
// supplied. Reason is carried verbatim.
type Interval struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

// Schedule is the ordered list of bookings for one room on one date.
type Schedule []Interval

// Validate checks the invariants the inference scan relies on: every
// interval has Start < End, starts are ascending, and no interval begins
// before the previous one ends. Exactly touching intervals are fine.
func (s Schedule) Validate() error {
	for i, iv := range s {
		if !iv.Start.Before(iv.End) {
			return fmt.Errorf("%w: %s >= %s", ErrIntervalBounds,
				iv.Start.Format("15:04"), iv.End.Format("15:04"))
		}
		if i == 0 {
			continue
		}
		prev := s[i-1]
		if iv.Start.Before(prev.End) {
			return fmt.Errorf("%w: booking at %s starts before previous one ends",
				ErrScheduleOrder, iv.Start.Format("15:04"))
		}
	}
	return nil
}

// Status is the answer to "is the room busy right now?".
//
// Booked=false, Until=nil: free, no further booking today.
// Booked=false, Until=T: free until the booking starting at T.
// Booked=true, Until=T: busy until T, with back-to-back bookings merged.
// Booked=true with a nil Until is never produced.
type Status struct {
	Booked bool       `json:"booked"`
	Until  *time.Time `json:"until,omitempty"`
}

// Infer computes the current status from an ordered schedule with a single
// scan. Past intervals are skipped; an interval containing now (boundaries
// inclusive) marks the room busy and later intervals that start exactly
// where the busy run ends extend it. The first future interval that does
// not extend anything settles the answer, so the scan stops there.
func Infer(s Schedule, now time.Time) Status {
	var st Status
	for _, iv := range s {
		switch {
		case iv.End.Before(now):
			// already over
			continue
		case !iv.Start.After(now):
			// now falls inside this booking
			st.Booked = true
			end := iv.End
			st.Until = &end
		case !st.Booked:
			// free until the first future booking begins
			start := iv.Start
			st.Until = &start
			return st
		case iv.Start.Equal(*st.Until):
			// back-to-back with the current busy run
			end := iv.End
			st.Until = &end
		default:
			// gap after the busy run; nothing later matters
			return st
		}
	}
	return st
}
