package get_owner_reservation

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations/models"
)

type ReservationService interface {
	GetForOwner(ctx context.Context, id string, userID int64) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
