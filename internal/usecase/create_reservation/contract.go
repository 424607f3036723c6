package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/expiration"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	LockSlot(ctx context.Context, tenantID, resourceID string, date time.Time) error
}

// ScheduleStore интерфейс хранилища расписаний
type ScheduleStore interface {
	GetWithHierarchy(ctx context.Context, tenantID, resourceID string) (*domain.ScheduleConfig, error)
}

// TenantDirectoryClient интерфейс клиента для Tenant Directory
type TenantDirectoryClient interface {
	GetTenantBySlug(ctx context.Context, slug string) (*tenantdirectory.Tenant, error)
}

// AvailabilityChecker проверка пересечений с активными бронированиями
type AvailabilityChecker interface {
	Check(ctx context.Context, tenantID, resourceID string, date time.Time, start types.TimeString, durationMinutes int) (bool, error)
}

// Sweeper истекает просроченные pending бронирования перед проверкой слота
// Expire не публикует событий, Publish вызывается только после фиксации транзакции
type Sweeper interface {
	Expire(ctx context.Context, scope expiration.Scope) ([]*domain.Reservation, error)
	Publish(ctx context.Context, expired []*domain.Reservation)
}

// Notifier публикует событие о созданном бронировании
type Notifier interface {
	ReservationCreated(ctx context.Context, r *domain.Reservation)
}

// Metrics счётчики бронирований
type Metrics interface {
	ReservationCreated(status string)
	SlotConflict()
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
