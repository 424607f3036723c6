package check_availability

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// AvailabilityResponse HTTP модель ответа
type AvailabilityResponse struct {
	Available bool `json:"available"`
}

// ToUseCaseRequest формирует запрос к use case из параметров URL
func ToUseCaseRequest(slug, resourceID, dateStr, startTimeStr, durationStr string) (*getAvailableSlots.CheckRequest, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(startTimeStr)
	if err != nil {
		return nil, err
	}

	duration, err := strconv.Atoi(durationStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.CheckRequest{
		TenantSlug:      slug,
		ResourceID:      resourceID,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: duration,
	}, nil
}
