package create_reservation

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	createReservation "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgValidationFailed   = "ошибка валидации данных бронирования"
	msgTenantNotFound     = "заведение не найдено"
	msgResourceNotFound   = "ресурс не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgSlotConflict       = "выбранное время уже занято"
	msgStoreUnavailable   = "сервис бронирования временно недоступен, попробуйте позже"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/venues/{slug}/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /venues/{slug}/reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(slug))
	if err != nil {
		var validationErr *createReservation.ValidationError

		switch {
		case errors.As(err, &validationErr):
			h.logger.Warn("POST /venues/{slug}/reservations - Validation failed: slug=%s, error=%v", slug, err)
			handlers.RespondValidationError(w, msgValidationFailed, validationErr.Fields)

		// Подмена tenantId не раскрывает существование чужого арендатора
		case errors.Is(err, createReservation.ErrTenantNotFound),
			errors.Is(err, createReservation.ErrIdentityMismatch):
			h.logger.Warn("POST /venues/{slug}/reservations - Tenant not found or mismatch: slug=%s, error=%v", slug, err)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, createReservation.ErrResourceNotFound):
			h.logger.Warn("POST /venues/{slug}/reservations - Resource not found: slug=%s, resource_id=%s", slug, req.ResourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, createReservation.ErrServiceNotFound):
			h.logger.Warn("POST /venues/{slug}/reservations - Service not found: slug=%s, services=%v", slug, req.ServiceIDs)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createReservation.ErrSlotConflict):
			h.logger.Warn("POST /venues/{slug}/reservations - Slot conflict: slug=%s, resource_id=%s, date=%s, start=%s",
				slug, req.ResourceID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createReservation.ErrStoreUnavailable):
			h.logger.Error("POST /venues/{slug}/reservations - Store unavailable: slug=%s, error=%v", slug, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("POST /venues/{slug}/reservations - Failed to create reservation: slug=%s, error=%v", slug, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /venues/{slug}/reservations - Reservation created: id=%s, slug=%s, status=%s",
		result.ReservationID, slug, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
