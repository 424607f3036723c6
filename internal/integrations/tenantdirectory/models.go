package tenantdirectory

import (
	"github.com/shopspring/decimal"
)

// ResourceKind тип бронируемого ресурса
type ResourceKind string

const (
	ResourceKindProfessional ResourceKind = "professional" // мастер, слоты по расписанию
	ResourceKindVenue        ResourceKind = "venue"        // площадка целиком, один слот на весь день
)

// Tenant арендатор (заведение) из Tenant Directory
type Tenant struct {
	ID              string           `json:"id"`
	Slug            string           `json:"slug"`
	Name            string           `json:"name"`
	RequiresPayment bool             `json:"requires_payment"`
	Currency        string           `json:"currency"`
	OwnerIDs        []int64          `json:"owner_ids"`
	Resources       []Resource       `json:"resources"`
	Services        []CatalogService `json:"services"`
}

// Resource мастер или площадка, на которую бронируется слот
type Resource struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenant_id"`
	Name         string       `json:"name"`
	Kind         ResourceKind `json:"kind"`
	IsActive     bool         `json:"is_active"`
	MaxPartySize int          `json:"max_party_size"` // только для venue, 0 = domain.DefaultMaxPartySize
}

// CatalogService услуга из каталога арендатора
type CatalogService struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
	IsActive        bool            `json:"is_active"`
	ResourceIDs     []string        `json:"resource_ids"` // пусто = услугу оказывают все ресурсы
}

// ErrorResponse модель ошибки от Tenant Directory
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IsOwner проверяет, является ли пользователь владельцем арендатора
func (t *Tenant) IsOwner(userID int64) bool {
	for _, id := range t.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// FindResource ищет ресурс по ID среди ресурсов арендатора
// Ресурс другого арендатора считается ненайденным
func (t *Tenant) FindResource(resourceID string) (*Resource, bool) {
	for i := range t.Resources {
		r := &t.Resources[i]
		if r.ID == resourceID && (r.TenantID == "" || r.TenantID == t.ID) {
			return r, true
		}
	}
	return nil, false
}

// FindService ищет услугу каталога по ID
func (t *Tenant) FindService(serviceID string) (*CatalogService, bool) {
	for i := range t.Services {
		if t.Services[i].ID == serviceID {
			return &t.Services[i], true
		}
	}
	return nil, false
}

// IsVenue площадка бронируется целиком
func (r *Resource) IsVenue() bool {
	return r.Kind == ResourceKindVenue
}

// PartySizeLimit максимальное количество гостей для площадки
func (r *Resource) PartySizeLimit(defaultLimit int) int {
	if r.MaxPartySize > 0 {
		return r.MaxPartySize
	}
	return defaultLimit
}

// OfferedBy проверяет, оказывает ли ресурс данную услугу
func (s *CatalogService) OfferedBy(resourceID string) bool {
	if len(s.ResourceIDs) == 0 {
		return true
	}
	for _, id := range s.ResourceIDs {
		if id == resourceID {
			return true
		}
	}
	return false
}
