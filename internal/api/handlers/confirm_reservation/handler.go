package confirm_reservation

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations"
)

const (
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgCannotConfirm    = "подтвердить можно только ожидающее бронирование"
	msgStoreUnavailable = "сервис бронирования временно недоступен, попробуйте позже"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID := mux.Vars(r)["reservationId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id}/confirm - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	reservation, err := h.service.Confirm(r.Context(), reservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound),
			errors.Is(err, reservations.ErrTenantNotFound):
			h.logger.Warn("PATCH /reservations/{id}/confirm - Not found: id=%s, error=%v", reservationID, err)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/confirm - Access denied: id=%s, user_id=%d", reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrIllegalTransition):
			h.logger.Warn("PATCH /reservations/{id}/confirm - Illegal transition: id=%s", reservationID)
			handlers.RespondConflict(w, msgCannotConfirm)

		case errors.Is(err, reservations.ErrStoreUnavailable):
			h.logger.Error("PATCH /reservations/{id}/confirm - Store unavailable: id=%s, error=%v", reservationID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("PATCH /reservations/{id}/confirm - Failed to confirm reservation: id=%s, error=%v", reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/confirm - Reservation confirmed: id=%s, user_id=%d", reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
