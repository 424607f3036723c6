package create_reservation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request модель запроса на создание бронирования
// Дата и время приходят строками: ошибки формата попадают в ValidationError по полям
type Request struct {
	TenantSlug string   // slug публичной страницы (доверенный источник арендатора)
	TenantID   *string  // tenantId из тела запроса (опционально, только для сверки)
	ResourceID string   // ID мастера или площадки
	Date       string   // "2025-10-15"
	StartTime  string   // "10:00"
	ServiceIDs []string // Выбранные услуги (1..10)
	Customer   Customer // Контактные данные клиента
}

// Customer контактные данные клиента
type Customer struct {
	Name      string
	Phone     string
	Email     *string
	Notes     *string
	PartySize int // Количество гостей (только для площадки)
}

// PaymentPrompt данные для оплаты, если арендатор требует предоплату
type PaymentPrompt struct {
	Amount    decimal.Decimal
	Currency  string
	ExpiresAt time.Time
}

// Response модель ответа с созданным бронированием
type Response struct {
	ReservationID        string
	TenantID             string
	ResourceID           string
	Status               string
	Date                 time.Time
	StartTime            types.TimeString
	EndTime              types.TimeString
	TotalDurationMinutes int
	TotalPrice           decimal.Decimal
	PaymentPrompt        *PaymentPrompt // nil, если оплата не требуется
	CreatedAt            time.Time
}
