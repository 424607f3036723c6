package domain

import (
	"errors"
	"time"
)

// Lifecycle constants
const (
	// PaymentHoldMinutes how long a pending reservation waits for payment
	PaymentHoldMinutes = 60
)

// Business validation constants
const (
	MinSlotDurationMinutes      = 5
	MaxSlotDurationMinutes      = 480 // 8 hours
	MaxBreakBetweenSlotsMinutes = 240
	MinCustomerNameLength       = 2
	MaxCustomerNameLength       = 100
	MinPhoneDigits              = 8
	MaxPhoneDigits              = 15
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxServicesPerReservation   = 10
	DefaultMaxPartySize         = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// AllWeekdays every day a schedule must define
var AllWeekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// ActiveStatuses statuses that hold a slot
var ActiveStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
}

// TerminalStatuses statuses that never change again
var TerminalStatuses = []ReservationStatus{
	StatusCancelled,
	StatusExpired,
}

// ErrInvalidSchedule returned by ScheduleConfig.Validate
var ErrInvalidSchedule = errors.New("domain: invalid schedule config")
