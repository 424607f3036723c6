package list_reservations

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// По умолчанию владельцу возвращаются бронирования во всех статусах
func ToServiceRequest(tenantID string, userID int64, query url.Values) (*models.ListReservationsRequest, error) {
	req := &models.ListReservationsRequest{
		UserID:   userID,
		TenantID: tenantID,
	}

	if resourceID := query.Get("resourceId"); resourceID != "" {
		req.ResourceID = &resourceID
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	// date - сокращение для from=to=date
	if dateStr := query.Get("date"); dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, err
		}
		req.DateFrom = &date
		req.DateTo = &date
	}

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			return nil, err
		}
		req.DateFrom = &from
	}

	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			return nil, err
		}
		req.DateTo = &to
	}

	if activeOnlyStr := query.Get("activeOnly"); activeOnlyStr != "" {
		activeOnly, err := strconv.ParseBool(activeOnlyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid activeOnly value: %w", err)
		}
		req.ActiveOnly = activeOnly
	}

	return req, nil
}
