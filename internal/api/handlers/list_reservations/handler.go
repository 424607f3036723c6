package list_reservations

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
	msgInvalidParams    = "некорректные параметры запроса"
	msgTenantNotFound   = "заведение не найдено"
	msgForbidden        = "доступ запрещен"
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

// Handle GET /api/v1/tenants/{tenantId}/reservations
// Query params: resourceId, from, to, date, status, activeOnly (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenantId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /tenants/{id}/reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := ToServiceRequest(tenantID, userID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/reservations - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /tenants/{id}/reservations - Invalid input: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, reservations.ErrTenantNotFound):
			h.logger.Warn("GET /tenants/{id}/reservations - Tenant not found: tenant_id=%s", tenantID)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /tenants/{id}/reservations - Access denied: tenant_id=%s, user_id=%d", tenantID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrStoreUnavailable):
			h.logger.Error("GET /tenants/{id}/reservations - Store unavailable: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondServiceUnavailable(w, msgStoreUnavailable)

		default:
			h.logger.Error("GET /tenants/{id}/reservations - Failed to list reservations: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tenants/{id}/reservations - Reservations retrieved: tenant_id=%s, user_id=%d, count=%d",
		tenantID, userID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
