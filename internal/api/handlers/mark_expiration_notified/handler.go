package mark_expiration_notified

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
	msgNotExpired       = "бронирование не истекло"
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

// Handle PATCH /api/v1/reservations/{reservationId}/expiration-notified
// Повторный вызов для уже отмеченного бронирования возвращает 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID := mux.Vars(r)["reservationId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id}/expiration-notified - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	reservation, err := h.service.MarkExpirationNotified(r.Context(), reservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound),
			errors.Is(err, reservations.ErrTenantNotFound):
			h.logger.Warn("PATCH /reservations/{id}/expiration-notified - Not found: id=%s, error=%v", reservationID, err)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/expiration-notified - Access denied: id=%s, user_id=%d", reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrNotExpired):
			h.logger.Warn("PATCH /reservations/{id}/expiration-notified - Not expired: id=%s", reservationID)
			handlers.RespondConflict(w, msgNotExpired)

		case errors.Is(err, reservations.ErrStoreUnavailable):
			h.logger.Error("PATCH /reservations/{id}/expiration-notified - Store unavailable: id=%s, error=%v", reservationID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("PATCH /reservations/{id}/expiration-notified - Failed to mark reservation: id=%s, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/expiration-notified - Marked: id=%s, user_id=%d", reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
