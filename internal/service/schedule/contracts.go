package schedule

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
)

// ScheduleStore интерфейс хранилища расписаний (репозиторий или кэш над ним)
type ScheduleStore interface {
	GetByTenantAndResource(ctx context.Context, tenantID string, resourceID *string) (*domain.ScheduleConfig, error)
	GetWithHierarchy(ctx context.Context, tenantID, resourceID string) (*domain.ScheduleConfig, error)
	Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error)
}

// TenantDirectoryClient интерфейс клиента для Tenant Directory
type TenantDirectoryClient interface {
	GetTenantByID(ctx context.Context, tenantID string) (*tenantdirectory.Tenant, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
