package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// GetActiveForDay получает pending и confirmed бронирования ресурса на дату
	GetActiveForDay(ctx context.Context, tenantID, resourceID string, date time.Time) ([]*domain.Reservation, error)
}

// ScheduleStore интерфейс хранилища расписаний
type ScheduleStore interface {
	// GetWithHierarchy получает расписание ресурса, а при его отсутствии - общее расписание арендатора
	GetWithHierarchy(ctx context.Context, tenantID, resourceID string) (*domain.ScheduleConfig, error)
}

// TenantDirectoryClient интерфейс клиента для Tenant Directory
type TenantDirectoryClient interface {
	GetTenantBySlug(ctx context.Context, slug string) (*tenantdirectory.Tenant, error)
}

// AvailabilityChecker проверка одного интервала в режиме fail-closed
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, tenantID, resourceID string, date time.Time, start types.TimeString, durationMinutes int) bool
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
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
