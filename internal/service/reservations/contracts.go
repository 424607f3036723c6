package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/expiration"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
	Confirm(ctx context.Context, id string, now time.Time) (*domain.Reservation, error)
	Cancel(ctx context.Context, id string, expected domain.ReservationStatus, by domain.CancelledBy, reason *string, now time.Time) (*domain.Reservation, error)
	MarkPaymentFailed(ctx context.Context, id string, now time.Time) (*domain.Reservation, error)
	MarkExpirationNotified(ctx context.Context, id string, now time.Time) (*domain.Reservation, error)
}

// Sweeper истекает просроченные бронирования перед чтением
type Sweeper interface {
	Sweep(ctx context.Context, scope expiration.Scope) ([]*domain.Reservation, error)
	SweepOne(ctx context.Context, reservationID string) (*domain.Reservation, error)
}

// TenantDirectoryClient интерфейс клиента для Tenant Directory
type TenantDirectoryClient interface {
	GetTenantByID(ctx context.Context, tenantID string) (*tenantdirectory.Tenant, error)
}

// Notifier публикует события об изменении статуса
type Notifier interface {
	ReservationConfirmed(ctx context.Context, r *domain.Reservation)
	ReservationCancelled(ctx context.Context, r *domain.Reservation)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
