// Package slots turns a weekly schedule into bookable slot starts.
package slots

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// GenerateSlots returns the start times of every slot on date, in order.
//
// Starts are emitted at window start, then every slotDuration+break minutes,
// while the start is strictly before window end. Emission is bounded by the
// start only: the last slot may run past closing time.
//
// A nil config, a closed day or a malformed window yields an empty slice.
func GenerateSlots(cfg *domain.ScheduleConfig, date time.Time) []types.TimeString {
	result := make([]types.TimeString, 0)

	window, open := cfg.Window(date.Weekday())
	if !open {
		return result
	}

	step := cfg.Step()
	if cfg.SlotDurationMinutes <= 0 || step <= 0 {
		return result
	}

	start := window.StartTime.MustMinutes()
	end := window.EndTime.MustMinutes()

	for t := start; t < end; t += step {
		slot, err := types.TimeStringFromMinutes(t)
		if err != nil {
			break
		}
		result = append(result, slot)
	}

	return result
}

// FullDaySlot returns the single slot spanning the whole open window on date.
// Used for resources booked as a whole (a venue for an event).
func FullDaySlot(cfg *domain.ScheduleConfig, date time.Time) (types.TimeString, int, bool) {
	window, open := cfg.Window(date.Weekday())
	if !open {
		return "", 0, false
	}

	start := window.StartTime.MustMinutes()
	end := window.EndTime.MustMinutes()

	return window.StartTime, end - start, true
}

// Contains reports whether start is one of the generated slots.
func Contains(slots []types.TimeString, start types.TimeString) bool {
	startMinutes, err := start.Minutes()
	if err != nil {
		return false
	}
	for _, s := range slots {
		if s.MustMinutes() == startMinutes {
			return true
		}
	}
	return false
}
