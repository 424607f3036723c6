package owner_cancel_reservation

import "github.com/m04kA/SMC-BookingEngine/internal/service/reservations/models"

// OwnerCancelRequest HTTP request model, тело опционально
type OwnerCancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *OwnerCancelRequest) ToServiceRequest(userID int64) *models.OwnerCancelRequest {
	return &models.OwnerCancelRequest{
		UserID: userID,
		Reason: r.Reason,
	}
}
