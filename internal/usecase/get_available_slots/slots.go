package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
	"github.com/m04kA/SMC-BookingEngine/internal/service/slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// candidateStarts возвращает начала слотов и длительность брони для ресурса
// Для площадки это единственный слот на всё рабочее окно
func candidateStarts(cfg *domain.ScheduleConfig, isVenue bool, date time.Time, duration int) ([]types.TimeString, int) {
	if isVenue {
		start, windowLength, open := slots.FullDaySlot(cfg, date)
		if !open {
			return []types.TimeString{}, duration
		}
		return []types.TimeString{start}, windowLength
	}
	return slots.GenerateSlots(cfg, date), duration
}

// dropStarted убирает слоты, которые уже начались (только для сегодняшней даты)
func dropStarted(starts []types.TimeString, date, now time.Time) []types.TimeString {
	if !isSameDay(date, now) {
		return starts
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	result := make([]types.TimeString, 0, len(starts))
	for _, s := range starts {
		if s.MustMinutes() > nowMinutes {
			result = append(result, s)
		}
	}
	return result
}

// markAvailability проверяет каждый слот на пересечение с активными бронированиями
// Если бронирования получить не удалось (fetched == false), все слоты заняты
func markAvailability(
	starts []types.TimeString,
	duration int,
	reservations []*domain.Reservation,
	fetched bool,
	now time.Time,
) []Slot {
	result := make([]Slot, 0, len(starts))

	for _, start := range starts {
		candidate, err := domain.NewInterval(start, duration)
		if err != nil || candidate.End > types.MinutesPerDay {
			// Бронь не может закончиться после полуночи
			continue
		}
		end, _ := types.TimeStringFromMinutes(candidate.End)

		result = append(result, Slot{
			StartTime: start,
			EndTime:   end,
			Available: fetched && availability.FindConflict(reservations, candidate, now) == nil,
		})
	}

	return result
}
