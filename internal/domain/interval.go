package domain

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Interval half-open time range [Start, End) in minutes since midnight
type Interval struct {
	Start int
	End   int
}

// NewInterval builds [start, start+duration)
func NewInterval(start types.TimeString, durationMinutes int) (Interval, error) {
	s, err := start.Minutes()
	if err != nil {
		return Interval{}, err
	}
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	return Interval{Start: s, End: s + durationMinutes}, nil
}

// NewIntervalFromBounds builds [start, end)
func NewIntervalFromBounds(start, end types.TimeString) (Interval, error) {
	s, err := start.Minutes()
	if err != nil {
		return Interval{}, err
	}
	e, err := end.Minutes()
	if err != nil {
		return Interval{}, err
	}
	if e <= s {
		return Interval{}, fmt.Errorf("end %s must be after start %s", end, start)
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether two intervals share at least one minute.
// Touching intervals (one ends where the other starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Duration length of the interval in minutes
func (i Interval) Duration() int {
	return i.End - i.Start
}
