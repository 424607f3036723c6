package check_availability

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
)

const (
	msgInvalidParams    = "некорректные параметры запроса, ожидается date=YYYY-MM-DD, startTime=HH:MM и durationMinutes"
	msgTenantNotFound   = "заведение не найдено"
	msgResourceNotFound = "ресурс не найден"
)

type Handler struct {
	checker SlotChecker
	logger  Logger
}

func NewHandler(checker SlotChecker, logger Logger) *Handler {
	return &Handler{
		checker: checker,
		logger:  logger,
	}
}

// Handle GET /api/v1/venues/{slug}/resources/{resourceId}/availability
// Query params: date, startTime, durationMinutes (все обязательны)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slug := vars["slug"]
	resourceID := vars["resourceId"]
	query := r.URL.Query()

	useCaseReq, err := ToUseCaseRequest(slug, resourceID, query.Get("date"), query.Get("startTime"), query.Get("durationMinutes"))
	if err != nil {
		h.logger.Warn("GET /venues/{slug}/resources/{id}/availability - Invalid params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	available, err := h.checker.CheckSlot(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /venues/{slug}/resources/{id}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, getAvailableSlots.ErrTenantNotFound):
			h.logger.Warn("GET /venues/{slug}/resources/{id}/availability - Tenant not found: slug=%s", slug)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, getAvailableSlots.ErrResourceNotFound):
			h.logger.Warn("GET /venues/{slug}/resources/{id}/availability - Resource not found: slug=%s, resource_id=%s",
				slug, resourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		default:
			h.logger.Error("GET /venues/{slug}/resources/{id}/availability - Failed to check slot: slug=%s, error=%v", slug, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, AvailabilityResponse{Available: available})
}
