package cancel_reservation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingPhone       = "телефон обязателен"
	msgInvalidData        = "некорректные данные отмены"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "телефон не совпадает с указанным при бронировании"
	msgCannotCancel       = "бронирование уже завершено и не может быть отменено"
	msgStoreUnavailable   = "сервис бронирования временно недоступен, попробуйте позже"
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

// Handle POST /api/v1/reservations/{reservationId}/cancel
// Клиент подтверждает право на отмену номером телефона из бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID := mux.Vars(r)["reservationId"]

	var req CancelReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Phone) == "" {
		h.logger.Warn("POST /reservations/{id}/cancel - Missing phone: id=%s", reservationID)
		handlers.RespondBadRequest(w, msgMissingPhone)
		return
	}

	reservation, err := h.service.CancelByCustomer(r.Context(), reservationID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("POST /reservations/{id}/cancel - Invalid data: id=%s, error=%v", reservationID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/cancel - Reservation not found: id=%s", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("POST /reservations/{id}/cancel - Phone mismatch: id=%s", reservationID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrIllegalTransition):
			h.logger.Warn("POST /reservations/{id}/cancel - Illegal transition: id=%s", reservationID)
			handlers.RespondConflict(w, msgCannotCancel)

		case errors.Is(err, reservations.ErrStoreUnavailable):
			h.logger.Error("POST /reservations/{id}/cancel - Store unavailable: id=%s, error=%v", reservationID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("POST /reservations/{id}/cancel - Failed to cancel reservation: id=%s, error=%v", reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/cancel - Reservation cancelled by customer: id=%s", reservationID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
