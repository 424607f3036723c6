package update_schedule

import "github.com/m04kA/SMC-BookingEngine/internal/service/schedule/models"

// UpdateScheduleRequest HTTP request model
// weeklyWindows: ключи - дни недели ("monday"), отсутствующий день считается выходным
type UpdateScheduleRequest struct {
	ResourceID               *string                     `json:"resourceId,omitempty"`
	SlotDurationMinutes      int                         `json:"slotDurationMinutes"`
	BreakBetweenSlotsMinutes int                         `json:"breakBetweenSlotsMinutes"`
	WeeklyWindows            map[string]models.DayWindow `json:"weeklyWindows"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateScheduleRequest) ToServiceRequest(tenantID string, userID int64) *models.UpdateScheduleRequest {
	return &models.UpdateScheduleRequest{
		UserID:                   userID,
		TenantID:                 tenantID,
		ResourceID:               r.ResourceID,
		SlotDurationMinutes:      r.SlotDurationMinutes,
		BreakBetweenSlotsMinutes: r.BreakBetweenSlotsMinutes,
		WeeklyWindows:            r.WeeklyWindows,
	}
}
