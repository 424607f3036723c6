package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
)

// UseCase use case для получения слотов ресурса с признаком доступности
type UseCase struct {
	reservationRepo ReservationRepository
	scheduleStore   ScheduleStore
	tenantClient    TenantDirectoryClient
	checker         AvailabilityChecker
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	scheduleStore ScheduleStore,
	tenantClient TenantDirectoryClient,
	checker AvailabilityChecker,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		scheduleStore:   scheduleStore,
		tenantClient:    tenantClient,
		checker:         checker,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения слотов
// Слот доступен, если бронь на суммарную длительность услуг не пересекается с активными бронированиями
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: tenant=%s, resource=%s, date=%s, services=%v",
		req.TenantSlug, req.ResourceID, req.Date.Format(domain.DateFormat), req.ServiceIDs)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	if isDateInPast(req.Date, now) {
		uc.logger.Warn("GetAvailableSlots: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	// 3. Получаем арендатора и ресурс
	tenant, err := uc.tenant(ctx, req.TenantSlug)
	if err != nil {
		return nil, err
	}
	resource, err := resolveResource(tenant, req.ResourceID)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: resource id=%s not found in tenant=%s", req.ResourceID, tenant.ID)
		return nil, err
	}

	// 4. Длительность брони по выбранным услугам
	duration, err := servicesDuration(tenant, resource.ID, req.ServiceIDs)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, err
	}

	resp := &Response{
		Date:            req.Date,
		TenantID:        tenant.ID,
		ResourceID:      resource.ID,
		DurationMinutes: duration,
		Slots:           []Slot{},
	}

	// 5. Получаем расписание с учетом иерархии
	cfg, err := uc.scheduleStore.GetWithHierarchy(ctx, tenant.ID, resource.ID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			uc.logger.Info("GetAvailableSlots: no schedule for tenant=%s, resource=%s", tenant.ID, resource.ID)
			return resp, nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	// 6. Генерируем слоты и убираем уже начавшиеся
	starts, duration := candidateStarts(cfg, resource.IsVenue(), req.Date, duration)
	starts = dropStarted(starts, req.Date, now)
	resp.DurationMinutes = duration
	if len(starts) == 0 {
		uc.logger.Info("GetAvailableSlots: closed or no slots left on %s", req.Date.Format(domain.DateFormat))
		return resp, nil
	}

	// 7. Получаем активные бронирования; при ошибке все слоты считаются занятыми
	reservations, err := uc.reservationRepo.GetActiveForDay(ctx, tenant.ID, resource.ID, req.Date)
	fetched := err == nil
	if err != nil {
		uc.logger.Error("GetAvailableSlots: fail closed, failed to get reservations: %v", err)
		if uc.metrics != nil {
			uc.metrics.FailClosed()
		}
	}

	// 8. Вычисляем доступность для каждого слота
	resp.Slots = markAvailability(starts, duration, reservations, fetched, now)

	uc.logger.Info("GetAvailableSlots: generated %d slots for tenant=%s, resource=%s, date=%s",
		len(resp.Slots), tenant.ID, resource.ID, req.Date.Format(domain.DateFormat))

	return resp, nil
}

// CheckSlot проверяет, свободен ли интервал [startTime, startTime+duration) на ресурсе
// Ошибка хранилища означает "занято"; ошибки возвращаются только для некорректного запроса
func (uc *UseCase) CheckSlot(ctx context.Context, req *CheckRequest) (bool, error) {
	uc.logger.Info("CheckSlot: tenant=%s, resource=%s, date=%s, start=%s, duration=%d",
		req.TenantSlug, req.ResourceID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes)

	if err := validateCheckRequest(req); err != nil {
		uc.logger.Warn("CheckSlot: validation failed: %v", err)
		return false, err
	}

	tenant, err := uc.tenant(ctx, req.TenantSlug)
	if err != nil {
		return false, err
	}
	resource, err := resolveResource(tenant, req.ResourceID)
	if err != nil {
		uc.logger.Warn("CheckSlot: resource id=%s not found in tenant=%s", req.ResourceID, tenant.ID)
		return false, err
	}

	return uc.checker.IsAvailable(ctx, tenant.ID, resource.ID, req.Date, req.StartTime, req.DurationMinutes), nil
}

func (uc *UseCase) tenant(ctx context.Context, slug string) (*tenantdirectory.Tenant, error) {
	tenant, err := uc.tenantClient.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, tenantdirectory.ErrTenantNotFound) {
			uc.logger.Warn("tenant slug=%s not found", slug)
			return nil, ErrTenantNotFound
		}
		uc.logger.Error("failed to get tenant slug=%s: %v", slug, err)
		return nil, fmt.Errorf("%w: failed to get tenant: %v", ErrInternal, err)
	}
	return tenant, nil
}
