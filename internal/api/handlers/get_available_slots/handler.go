package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
)

const (
	msgMissingDate       = "дата обязательна"
	msgMissingServiceIDs = "необходимо выбрать хотя бы одну услугу"
	msgInvalidParams     = "некорректные параметры запроса, ожидается date=YYYY-MM-DD и serviceIds=a,b"
	msgDateInPast        = "дата в прошлом"
	msgTenantNotFound    = "заведение не найдено"
	msgResourceNotFound  = "ресурс не найден"
	msgServiceNotFound   = "услуга не найдена"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/venues/{slug}/resources/{resourceId}/available-slots
// Query params: date (required, YYYY-MM-DD), serviceIds (required, через запятую)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slug := vars["slug"]
	resourceID := vars["resourceId"]

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /venues/{slug}/resources/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	serviceIDsStr := r.URL.Query().Get("serviceIds")
	if serviceIDsStr == "" {
		h.logger.Warn("GET /venues/{slug}/resources/{id}/available-slots - Missing service IDs")
		handlers.RespondBadRequest(w, msgMissingServiceIDs)
		return
	}

	useCaseReq, err := ToUseCaseRequest(slug, resourceID, dateStr, serviceIDsStr)
	if err != nil {
		h.logger.Warn("GET /venues/{slug}/resources/{id}/available-slots - Invalid params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /venues/{slug}/resources/{id}/available-slots - Date in past: slug=%s, date=%s", slug, dateStr)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /venues/{slug}/resources/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, getAvailableSlots.ErrTenantNotFound):
			h.logger.Warn("GET /venues/{slug}/resources/{id}/available-slots - Tenant not found: slug=%s", slug)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, getAvailableSlots.ErrResourceNotFound):
			h.logger.Warn("GET /venues/{slug}/resources/{id}/available-slots - Resource not found: slug=%s, resource_id=%s",
				slug, resourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /venues/{slug}/resources/{id}/available-slots - Service not found: slug=%s, services=%s",
				slug, serviceIDsStr)
			handlers.RespondNotFound(w, msgServiceNotFound)

		default:
			h.logger.Error("GET /venues/{slug}/resources/{id}/available-slots - Failed to get slots: slug=%s, resource_id=%s, error=%v",
				slug, resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /venues/{slug}/resources/{id}/available-slots - Slots retrieved: slug=%s, resource_id=%s, slots_count=%d",
		slug, resourceID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
