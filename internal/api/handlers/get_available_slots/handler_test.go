package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	got  *getAvailableSlots.Request
	resp *getAvailableSlots.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.got = req
	return f.resp, f.err
}

func serve(uc GetAvailableSlotsUseCase, query string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/venues/barber/resources/master/available-slots?"+query, nil)
	r = mux.SetURLVars(r, map[string]string{"slug": "barber", "resourceId": "master"})
	w := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(w, r)
	return w
}

func TestHandle_Success(t *testing.T) {
	date := time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &getAvailableSlots.Response{
		Date:            date,
		TenantID:        "t-1",
		ResourceID:      "master",
		DurationMinutes: 45,
		Slots: []getAvailableSlots.Slot{
			{StartTime: types.TimeString("09:00"), EndTime: types.TimeString("09:45"), Available: true},
			{StartTime: types.TimeString("09:15"), EndTime: types.TimeString("10:00"), Available: false},
		},
	}}

	w := serve(uc, "date=2025-10-16&serviceIds=haircut,%20beard,")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, []string{"haircut", "beard"}, uc.got.ServiceIDs)
	assert.True(t, uc.got.Date.Equal(date))

	var body AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2025-10-16", body.Date)
	require.Len(t, body.Slots, 2)
	assert.Equal(t, "09:45", body.Slots[0].EndTime)
	assert.False(t, body.Slots[1].Available)
}

func TestHandle_BadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "missing date", query: "serviceIds=haircut"},
		{name: "missing services", query: "date=2025-10-16"},
		{name: "bad date", query: "date=16.10.2025&serviceIds=haircut"},
		{name: "only commas", query: "date=2025-10-16&serviceIds=,,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			w := serve(uc, tt.query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, uc.got)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{err: getAvailableSlots.ErrInvalidDate, wantStatus: http.StatusBadRequest},
		{err: getAvailableSlots.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{err: getAvailableSlots.ErrTenantNotFound, wantStatus: http.StatusNotFound},
		{err: getAvailableSlots.ErrResourceNotFound, wantStatus: http.StatusNotFound},
		{err: getAvailableSlots.ErrServiceNotFound, wantStatus: http.StatusNotFound},
		{err: getAvailableSlots.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := serve(&fakeUseCase{err: tt.err}, "date=2025-10-16&serviceIds=haircut")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
