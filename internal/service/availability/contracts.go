package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// ReservationRepository источник бронирований ресурса на дату
type ReservationRepository interface {
	// GetActiveForDay возвращает pending и confirmed бронирования; в транзакции строки блокируются
	GetActiveForDay(ctx context.Context, tenantID, resourceID string, date time.Time) ([]*domain.Reservation, error)
}

// Metrics счётчик отказов в режиме fail-closed
type Metrics interface {
	FailClosed()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
