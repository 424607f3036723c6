package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Checker проверяет, свободен ли интервал на ресурсе
type Checker struct {
	repo         ReservationRepository
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewChecker создает новый экземпляр проверки доступности
func NewChecker(repo ReservationRepository, metrics Metrics, logger Logger) *Checker {
	return &Checker{
		repo:         repo,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// IsAvailable возвращает true, если интервал [start, start+duration) не пересекается
// ни с одним активным бронированием ресурса на дату.
// Работает в режиме fail-closed: любая ошибка означает "занято".
func (c *Checker) IsAvailable(
	ctx context.Context,
	tenantID, resourceID string,
	date time.Time,
	start types.TimeString,
	durationMinutes int,
) bool {
	available, err := c.Check(ctx, tenantID, resourceID, date, start, durationMinutes)
	if err != nil {
		c.logger.Error("IsAvailable: fail closed for tenant=%s, resource=%s, date=%s, start=%s: %v",
			tenantID, resourceID, date.Format(domain.DateFormat), start, err)
		if c.metrics != nil {
			c.metrics.FailClosed()
		}
		return false
	}
	return available
}

// Check то же, что IsAvailable, но возвращает ошибку хранилища вызывающему
// Используется внутри транзакции создания бронирования
func (c *Checker) Check(
	ctx context.Context,
	tenantID, resourceID string,
	date time.Time,
	start types.TimeString,
	durationMinutes int,
) (bool, error) {
	candidate, err := domain.NewInterval(start, durationMinutes)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	reservations, err := c.repo.GetActiveForDay(ctx, tenantID, resourceID, date)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFetchReservations, err)
	}

	return FindConflict(reservations, candidate, c.timeProvider.Now()) == nil, nil
}

// FindConflict возвращает первое бронирование, пересекающееся с candidate
// Граничащие интервалы (одно заканчивается там, где начинается другое) не конфликтуют.
// Отменённые, истёкшие и просроченные pending бронирования слот не занимают.
func FindConflict(reservations []*domain.Reservation, candidate domain.Interval, now time.Time) *domain.Reservation {
	for _, r := range reservations {
		if !r.BlocksSlot(now) {
			continue
		}

		interval, err := r.Interval()
		if err != nil {
			// Повреждённая запись не должна освобождать слот
			return r
		}

		if interval.Overlaps(candidate) {
			return r
		}
	}
	return nil
}
