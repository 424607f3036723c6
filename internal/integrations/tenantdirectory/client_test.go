package tenantdirectory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const tenantJSON = `{
	"id": "t-1",
	"slug": "barber-one",
	"name": "Barber One",
	"requires_payment": true,
	"currency": "RUB",
	"owner_ids": [42],
	"resources": [
		{"id": "r-1", "tenant_id": "t-1", "name": "Ivan", "kind": "professional", "is_active": true},
		{"id": "r-2", "tenant_id": "t-2", "name": "Other", "kind": "professional", "is_active": true}
	],
	"services": [
		{"id": "s-1", "name": "Haircut", "duration_minutes": 30, "price": "1500.00", "is_active": true}
	]
}`

func TestClient_GetTenantBySlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/tenants/by-slug/barber-one":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(tenantJSON))
		case "/internal/tenants/by-slug/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":500,"message":"db down"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nopLogger{})

	t.Run("found", func(t *testing.T) {
		tenant, err := client.GetTenantBySlug(context.Background(), "barber-one")
		require.NoError(t, err)
		assert.Equal(t, "t-1", tenant.ID)
		assert.True(t, tenant.RequiresPayment)
		assert.True(t, tenant.IsOwner(42))
		assert.False(t, tenant.IsOwner(7))

		svc, ok := tenant.FindService("s-1")
		require.True(t, ok)
		assert.True(t, decimal.RequireFromString("1500").Equal(svc.Price))

		_, ok = tenant.FindResource("r-1")
		assert.True(t, ok)
		_, ok = tenant.FindResource("r-2")
		assert.False(t, ok, "resource of another tenant")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := client.GetTenantBySlug(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.GetTenantBySlug(context.Background(), "broken")
		assert.ErrorIs(t, err, ErrInvalidResponse)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, 100*time.Millisecond, nopLogger{})
	_, err := client.GetTenantByID(context.Background(), "t-1")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestCatalogService_OfferedBy(t *testing.T) {
	all := CatalogService{ID: "s-1"}
	assert.True(t, all.OfferedBy("r-1"))

	limited := CatalogService{ID: "s-2", ResourceIDs: []string{"r-2"}}
	assert.False(t, limited.OfferedBy("r-1"))
	assert.True(t, limited.OfferedBy("r-2"))
}
