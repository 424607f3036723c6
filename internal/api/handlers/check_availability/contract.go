package check_availability

import (
	"context"

	getAvailableSlots "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
)

type SlotChecker interface {
	CheckSlot(ctx context.Context, req *getAvailableSlots.CheckRequest) (bool, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
