package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// DayWindow opening hours for one weekday
type DayWindow struct {
	IsOpen    bool
	StartTime types.TimeString
	EndTime   types.TimeString
}

// ScheduleConfig weekly opening hours and slot granularity of a tenant
// Supports hierarchical configuration:
// 1. Resource-specific (tenant_id, resource_id)
// 2. Tenant-wide (tenant_id, NULL)
type ScheduleConfig struct {
	ID                       int64
	TenantID                 string
	ResourceID               *string // NULL = config for all resources of the tenant
	SlotDurationMinutes      int
	BreakBetweenSlotsMinutes int
	WeeklyWindows            map[time.Weekday]DayWindow
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// IsTenantWide returns true if this configuration applies to every resource of the tenant
func (c *ScheduleConfig) IsTenantWide() bool {
	return c.ResourceID == nil
}

// Window returns the opening window for a weekday.
// A malformed config never fails the caller: a missing day, a closed day,
// an unparsable time or start >= end are all reported as closed.
func (c *ScheduleConfig) Window(weekday time.Weekday) (DayWindow, bool) {
	if c == nil || c.WeeklyWindows == nil {
		return DayWindow{}, false
	}

	w, ok := c.WeeklyWindows[weekday]
	if !ok || !w.IsOpen {
		return DayWindow{}, false
	}

	start, err := w.StartTime.Minutes()
	if err != nil {
		return DayWindow{}, false
	}
	end, err := w.EndTime.Minutes()
	if err != nil {
		return DayWindow{}, false
	}
	if start >= end {
		return DayWindow{}, false
	}

	return w, true
}

// Step distance between two consecutive slot starts
func (c *ScheduleConfig) Step() int {
	return c.SlotDurationMinutes + c.BreakBetweenSlotsMinutes
}

// Validate checks a config before it is written
func (c *ScheduleConfig) Validate() error {
	if c.SlotDurationMinutes < MinSlotDurationMinutes || c.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slotDurationMinutes must be between %d and %d",
			ErrInvalidSchedule, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	if c.BreakBetweenSlotsMinutes < 0 || c.BreakBetweenSlotsMinutes > MaxBreakBetweenSlotsMinutes {
		return fmt.Errorf("%w: breakBetweenSlotsMinutes must be between 0 and %d",
			ErrInvalidSchedule, MaxBreakBetweenSlotsMinutes)
	}

	for _, day := range AllWeekdays {
		w, ok := c.WeeklyWindows[day]
		if !ok {
			return fmt.Errorf("%w: %s is missing", ErrInvalidSchedule, day)
		}
		if !w.IsOpen {
			continue
		}
		start, err := w.StartTime.Minutes()
		if err != nil {
			return fmt.Errorf("%w: %s startTime: %v", ErrInvalidSchedule, day, err)
		}
		end, err := w.EndTime.Minutes()
		if err != nil {
			return fmt.Errorf("%w: %s endTime: %v", ErrInvalidSchedule, day, err)
		}
		if start >= end {
			return fmt.Errorf("%w: %s startTime must be before endTime", ErrInvalidSchedule, day)
		}
	}

	return nil
}
