package get_available_slots

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель слота
type SlotResponse struct {
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "10:45"
	Available bool   `json:"available"`
}

// AvailableSlotsResponse HTTP модель ответа
type AvailableSlotsResponse struct {
	Date            string         `json:"date"` // "2025-10-15"
	TenantID        string         `json:"tenantId"`
	ResourceID      string         `json:"resourceId"`
	DurationMinutes int            `json:"durationMinutes"`
	Slots           []SlotResponse `json:"slots"`
}

// ToUseCaseRequest формирует запрос к use case из параметров URL
func ToUseCaseRequest(slug, resourceID, dateStr, serviceIDsStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	serviceIDs := SplitIDs(serviceIDsStr)
	if len(serviceIDs) == 0 {
		return nil, errors.New("serviceIds is empty")
	}

	return &getAvailableSlots.Request{
		TenantSlug: slug,
		ResourceID: resourceID,
		Date:       date,
		ServiceIDs: serviceIDs,
	}, nil
}

// SplitIDs разбирает список ID через запятую, пустые элементы пропускаются
func SplitIDs(s string) []string {
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, len(resp.Slots))
	for i, s := range resp.Slots {
		slots[i] = SlotResponse{
			StartTime: s.StartTime.String(),
			EndTime:   s.EndTime.String(),
			Available: s.Available,
		}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		TenantID:        resp.TenantID,
		ResourceID:      resp.ResourceID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
