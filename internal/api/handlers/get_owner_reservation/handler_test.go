package get_owner_reservation

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

func (f *fakeService) GetForOwner(_ context.Context, id string, _ int64) (*models.ReservationResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReservationResponse{ID: id, Customer: models.CustomerResponse{Name: "Anna", Phone: "+79990001122"}}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		withUser   bool
		err        error
		wantStatus int
	}{
		{name: "owner sees contacts", withUser: true, wantStatus: http.StatusOK},
		{name: "no user", wantStatus: http.StatusUnauthorized},
		{name: "not owner", withUser: true, err: reservations.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "not found", withUser: true, err: reservations.ErrReservationNotFound, wantStatus: http.StatusNotFound},
		{name: "store down", withUser: true, err: reservations.ErrStoreUnavailable, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/r-1/details", nil)
			r = mux.SetURLVars(r, map[string]string{"reservationId": "r-1"})
			if tt.withUser {
				r = r.WithContext(middleware.WithUserID(r.Context(), 42))
			}
			w := httptest.NewRecorder()

			NewHandler(&fakeService{err: tt.err}, nopLogger{}).Handle(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"phone":"+79990001122"`)
			}
		})
	}
}
