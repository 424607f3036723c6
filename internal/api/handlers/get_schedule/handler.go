package get_schedule

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/service/schedule/models"
)

const (
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "расписание не настроено"
	msgTenantNotFound   = "заведение не найдено"
	msgResourceNotFound = "ресурс не найден"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/tenants/{tenantId}/schedule
// Query params: resourceId (опционально, без него возвращается общее расписание)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenantId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /tenants/{id}/schedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq := &models.GetScheduleRequest{
		UserID:   userID,
		TenantID: tenantID,
	}
	if resourceID := r.URL.Query().Get("resourceId"); resourceID != "" {
		serviceReq.ResourceID = &resourceID
	}

	result, err := h.service.Get(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrConfigNotFound):
			h.logger.Info("GET /tenants/{id}/schedule - Schedule not found: tenant_id=%s", tenantID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrTenantNotFound):
			h.logger.Warn("GET /tenants/{id}/schedule - Tenant not found: tenant_id=%s", tenantID)
			handlers.RespondNotFound(w, msgTenantNotFound)

		case errors.Is(err, schedule.ErrResourceNotFound):
			h.logger.Warn("GET /tenants/{id}/schedule - Resource not found: tenant_id=%s", tenantID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("GET /tenants/{id}/schedule - Access denied: tenant_id=%s, user_id=%d", tenantID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /tenants/{id}/schedule - Failed to get schedule: tenant_id=%s, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tenants/{id}/schedule - Schedule retrieved: tenant_id=%s, schedule_id=%d", tenantID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
