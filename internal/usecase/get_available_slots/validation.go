package get_available_slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.TenantSlug) == "" {
		return fmt.Errorf("%w: tenant slug is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.ResourceID) == "" {
		return fmt.Errorf("%w: resourceId is required", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if len(req.ServiceIDs) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}
	if len(req.ServiceIDs) > domain.MaxServicesPerReservation {
		return fmt.Errorf("%w: at most %d services allowed", ErrInvalidInput, domain.MaxServicesPerReservation)
	}

	seen := make(map[string]struct{}, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate service id %q", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

// validateCheckRequest валидирует запрос на проверку интервала
func validateCheckRequest(req *CheckRequest) error {
	if strings.TrimSpace(req.TenantSlug) == "" || strings.TrimSpace(req.ResourceID) == "" {
		return fmt.Errorf("%w: tenant slug and resourceId are required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}
	return nil
}

// resolveResource ищет активный ресурс арендатора
func resolveResource(tenant *tenantdirectory.Tenant, resourceID string) (*tenantdirectory.Resource, error) {
	resource, ok := tenant.FindResource(resourceID)
	if !ok || !resource.IsActive {
		return nil, ErrResourceNotFound
	}
	return resource, nil
}

// servicesDuration суммарная длительность выбранных услуг ресурса
func servicesDuration(tenant *tenantdirectory.Tenant, resourceID string, ids []string) (int, error) {
	total := 0
	for _, id := range ids {
		svc, ok := tenant.FindService(id)
		if !ok || !svc.IsActive || !svc.OfferedBy(resourceID) {
			return 0, fmt.Errorf("%w: id=%s", ErrServiceNotFound, id)
		}
		total += svc.DurationMinutes
	}
	return total, nil
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return dateOnly.Before(nowOnly)
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
