package expiration

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	reservationRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/reservation"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	ExpireOverdue(ctx context.Context, scope reservationRepo.ExpireScope, now time.Time) ([]*domain.Reservation, error)
}

// Notifier публикует событие об истечении бронирования
type Notifier interface {
	ReservationExpired(ctx context.Context, r *domain.Reservation)
}

// Metrics счётчик истёкших бронирований
type Metrics interface {
	Expired(count int)
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
