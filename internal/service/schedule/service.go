package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/schedule/models"
)

// Service сервис для работы с расписаниями арендаторов
type Service struct {
	store        ScheduleStore
	tenantClient TenantDirectoryClient
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	store ScheduleStore,
	tenantClient TenantDirectoryClient,
	logger Logger,
) *Service {
	return &Service{
		store:        store,
		tenantClient: tenantClient,
		logger:       logger,
	}
}

// Get получает действующее расписание
// Для ресурса применяется иерархия: расписание ресурса > общее расписание арендатора
// Доступно только владельцам арендатора
func (s *Service) Get(ctx context.Context, req *models.GetScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Get: fetching schedule for tenant=%s, resource=%v by user=%d",
		req.TenantID, req.ResourceID, req.UserID)

	if _, err := s.ownedTenant(ctx, "Get", req.TenantID, req.ResourceID, req.UserID); err != nil {
		return nil, err
	}

	var (
		cfg *domain.ScheduleConfig
		err error
	)
	if req.ResourceID != nil {
		cfg, err = s.store.GetWithHierarchy(ctx, req.TenantID, *req.ResourceID)
	} else {
		cfg, err = s.store.GetByTenantAndResource(ctx, req.TenantID, nil)
	}
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			s.logger.Warn("Get: no schedule for tenant=%s, resource=%v", req.TenantID, req.ResourceID)
			return nil, ErrConfigNotFound
		}
		s.logger.Error("Get: repository error: %v", err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainConfig(cfg)
	resp.Inherited = req.ResourceID != nil && cfg.IsTenantWide()

	s.logger.Info("Get: successfully fetched schedule id=%d (inherited: %t)", cfg.ID, resp.Inherited)
	return resp, nil
}

// Update создаёт или заменяет расписание уровня (tenant, resource)
// Доступно только владельцам арендатора; кэш уровня сбрасывается хранилищем
func (s *Service) Update(ctx context.Context, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Update: updating schedule for tenant=%s, resource=%v by user=%d",
		req.TenantID, req.ResourceID, req.UserID)

	// 1. Валидируем входные данные
	cfg, err := req.ToDomainConfig()
	if err != nil {
		s.logger.Warn("Update: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Проверяем права доступа и принадлежность ресурса
	if _, err := s.ownedTenant(ctx, "Update", req.TenantID, req.ResourceID, req.UserID); err != nil {
		return nil, err
	}

	// 3. Сохраняем
	saved, err := s.store.Upsert(ctx, cfg)
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully saved schedule id=%d", saved.ID)
	return models.FromDomainConfig(saved), nil
}

// ownedTenant получает арендатора и проверяет, что пользователь его владелец
func (s *Service) ownedTenant(ctx context.Context, op, tenantID string, resourceID *string, userID int64) (*tenantdirectory.Tenant, error) {
	if userID <= 0 {
		return nil, ErrAccessDenied
	}

	tenant, err := s.tenantClient.GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantdirectory.ErrTenantNotFound) {
			s.logger.Warn("%s: tenant id=%s not found", op, tenantID)
			return nil, ErrTenantNotFound
		}
		s.logger.Error("%s: failed to get tenant id=%s: %v", op, tenantID, err)
		return nil, fmt.Errorf("%w: failed to get tenant: %v", ErrInternal, err)
	}

	if !tenant.IsOwner(userID) {
		s.logger.Warn("%s: user=%d is not an owner of tenant=%s", op, userID, tenantID)
		return nil, ErrAccessDenied
	}

	if resourceID != nil {
		if _, ok := tenant.FindResource(*resourceID); !ok {
			s.logger.Warn("%s: resource id=%s not found in tenant=%s", op, *resourceID, tenantID)
			return nil, ErrResourceNotFound
		}
	}

	return tenant, nil
}
