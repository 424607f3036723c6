package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	createReservation "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	TenantID   *string         `json:"tenantId,omitempty"` // Сверяется с заведением из URL
	ResourceID string          `json:"resourceId"`
	Date       string          `json:"date"`      // "2025-10-15"
	StartTime  string          `json:"startTime"` // "10:00"
	ServiceIDs []string        `json:"serviceIds"`
	Customer   CustomerRequest `json:"customer"`
}

// CustomerRequest контактные данные клиента
type CustomerRequest struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	PartySize int     `json:"partySize,omitempty"`
}

// PaymentPromptResponse данные для оплаты
type PaymentPromptResponse struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	ExpiresAt string `json:"expiresAt"` // RFC 3339
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ReservationID        string                 `json:"reservationId"`
	TenantID             string                 `json:"tenantId"`
	ResourceID           string                 `json:"resourceId"`
	Status               string                 `json:"status"`
	Date                 string                 `json:"date"`
	StartTime            string                 `json:"startTime"`
	EndTime              string                 `json:"endTime"`
	TotalDurationMinutes int                    `json:"totalDurationMinutes"`
	TotalPrice           string                 `json:"totalPrice"`
	PaymentPrompt        *PaymentPromptResponse `json:"paymentPrompt,omitempty"`
	CreatedAt            string                 `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Формат даты и времени проверяет use case, чтобы вернуть ошибки по полям
func (r *CreateReservationRequest) ToUseCaseRequest(slug string) *createReservation.Request {
	return &createReservation.Request{
		TenantSlug: slug,
		TenantID:   r.TenantID,
		ResourceID: r.ResourceID,
		Date:       r.Date,
		StartTime:  r.StartTime,
		ServiceIDs: r.ServiceIDs,
		Customer: createReservation.Customer{
			Name:      r.Customer.Name,
			Phone:     r.Customer.Phone,
			Email:     r.Customer.Email,
			Notes:     r.Customer.Notes,
			PartySize: r.Customer.PartySize,
		},
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	result := &ReservationResponse{
		ReservationID:        resp.ReservationID,
		TenantID:             resp.TenantID,
		ResourceID:           resp.ResourceID,
		Status:               resp.Status,
		Date:                 resp.Date.Format(domain.DateFormat),
		StartTime:            resp.StartTime.String(),
		EndTime:              resp.EndTime.String(),
		TotalDurationMinutes: resp.TotalDurationMinutes,
		TotalPrice:           resp.TotalPrice.StringFixed(2),
		CreatedAt:            resp.CreatedAt.UTC().Format(time.RFC3339),
	}

	if resp.PaymentPrompt != nil {
		result.PaymentPrompt = &PaymentPromptResponse{
			Amount:    resp.PaymentPrompt.Amount.StringFixed(2),
			Currency:  resp.PaymentPrompt.Currency,
			ExpiresAt: resp.PaymentPrompt.ExpiresAt.UTC().Format(time.RFC3339),
		}
	}

	return result
}
