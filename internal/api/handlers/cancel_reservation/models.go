package cancel_reservation

import (
	"strings"

	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations/models"
)

// CancelReservationRequest HTTP request model
type CancelReservationRequest struct {
	Phone  string  `json:"phone"`
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelReservationRequest) ToServiceRequest() *models.CustomerCancelRequest {
	return &models.CustomerCancelRequest{
		Phone:  strings.TrimSpace(r.Phone),
		Reason: r.Reason,
	}
}
