package mark_expiration_notified

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations"
	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	err error
}

func (f *fakeService) MarkExpirationNotified(_ context.Context, id string, _ int64) (*models.ReservationResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReservationResponse{ID: id, Status: "expired", ExpirationNotificationSent: true}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "marked", wantStatus: http.StatusOK},
		{name: "not expired", err: reservations.ErrNotExpired, wantStatus: http.StatusConflict},
		{name: "not found", err: reservations.ErrReservationNotFound, wantStatus: http.StatusNotFound},
		{name: "not owner", err: reservations.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "store down", err: reservations.ErrStoreUnavailable, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPatch, "/api/v1/reservations/r-1/expiration-notified", nil)
			r = mux.SetURLVars(r, map[string]string{"reservationId": "r-1"})
			r = r.WithContext(middleware.WithUserID(r.Context(), 42))
			w := httptest.NewRecorder()

			NewHandler(&fakeService{err: tt.err}, nopLogger{}).Handle(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err == nil {
				assert.Contains(t, w.Body.String(), `"expirationNotificationSent":true`)
			}
		})
	}
}
