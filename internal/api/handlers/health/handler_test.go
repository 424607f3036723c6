package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(context.Context) error {
	return f.err
}

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}

func TestHandle(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		w := httptest.NewRecorder()

		NewHandler(fakePinger{}, nopLogger{}).Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		w := httptest.NewRecorder()

		NewHandler(fakePinger{err: errors.New("connection refused")}, nopLogger{}).
			Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
