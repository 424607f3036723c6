package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Request модели

// DayWindow окно работы на один день недели
type DayWindow struct {
	IsOpen    bool   `json:"isOpen"`
	StartTime string `json:"startTime,omitempty"` // "09:00"
	EndTime   string `json:"endTime,omitempty"`   // "18:00"
}

// GetScheduleRequest запрос на получение расписания
// Без ResourceID возвращается общее расписание арендатора
type GetScheduleRequest struct {
	UserID     int64   `json:"userId"`
	TenantID   string  `json:"tenantId"`
	ResourceID *string `json:"resourceId,omitempty"`
}

// UpdateScheduleRequest запрос на замену расписания
// Ключи WeeklyWindows - названия дней недели в нижнем регистре ("monday")
type UpdateScheduleRequest struct {
	UserID                   int64                `json:"userId"`
	TenantID                 string               `json:"tenantId"`
	ResourceID               *string              `json:"resourceId,omitempty"` // NULL = для всех ресурсов
	SlotDurationMinutes      int                  `json:"slotDurationMinutes"`
	BreakBetweenSlotsMinutes int                  `json:"breakBetweenSlotsMinutes"`
	WeeklyWindows            map[string]DayWindow `json:"weeklyWindows"`
}

// ToDomainConfig конвертирует request в domain модель
func (r *UpdateScheduleRequest) ToDomainConfig() (*domain.ScheduleConfig, error) {
	windows := make(map[time.Weekday]domain.DayWindow, len(r.WeeklyWindows))
	for name, w := range r.WeeklyWindows {
		day, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		windows[day] = domain.DayWindow{
			IsOpen:    w.IsOpen,
			StartTime: types.TimeString(w.StartTime),
			EndTime:   types.TimeString(w.EndTime),
		}
	}

	return &domain.ScheduleConfig{
		TenantID:                 r.TenantID,
		ResourceID:               r.ResourceID,
		SlotDurationMinutes:      r.SlotDurationMinutes,
		BreakBetweenSlotsMinutes: r.BreakBetweenSlotsMinutes,
		WeeklyWindows:            windows,
	}, nil
}

// Response модели

// ScheduleResponse ответ с данными расписания
type ScheduleResponse struct {
	ID                       int64                `json:"id"`
	TenantID                 string               `json:"tenantId"`
	ResourceID               *string              `json:"resourceId,omitempty"`
	Inherited                bool                 `json:"inherited"` // запрошен ресурс, но действует общее расписание
	SlotDurationMinutes      int                  `json:"slotDurationMinutes"`
	BreakBetweenSlotsMinutes int                  `json:"breakBetweenSlotsMinutes"`
	WeeklyWindows            map[string]DayWindow `json:"weeklyWindows"`
	CreatedAt                time.Time            `json:"createdAt"`
	UpdatedAt                time.Time            `json:"updatedAt"`
}

// Методы конвертации

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.ScheduleConfig) *ScheduleResponse {
	if c == nil {
		return nil
	}

	windows := make(map[string]DayWindow, len(c.WeeklyWindows))
	for day, w := range c.WeeklyWindows {
		windows[strings.ToLower(day.String())] = DayWindow{
			IsOpen:    w.IsOpen,
			StartTime: w.StartTime.String(),
			EndTime:   w.EndTime.String(),
		}
	}

	return &ScheduleResponse{
		ID:                       c.ID,
		TenantID:                 c.TenantID,
		ResourceID:               c.ResourceID,
		SlotDurationMinutes:      c.SlotDurationMinutes,
		BreakBetweenSlotsMinutes: c.BreakBetweenSlotsMinutes,
		WeeklyWindows:            windows,
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
	}
}
