package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// ListReservationsRequest запрос на получение бронирований арендатора
type ListReservationsRequest struct {
	UserID     int64      `json:"userId"`
	TenantID   string     `json:"tenantId"`
	ResourceID *string    `json:"resourceId,omitempty"` // Фильтр по ресурсу (опционально)
	DateFrom   *time.Time `json:"dateFrom,omitempty"`   // Начало периода (опционально)
	DateTo     *time.Time `json:"dateTo,omitempty"`     // Конец периода (опционально)
	Status     *string    `json:"status,omitempty"`     // Фильтр по статусу (опционально)
	ActiveOnly bool       `json:"activeOnly,omitempty"` // Только pending и confirmed
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListReservationsRequest) ToDomainFilter() (domain.ReservationsFilter, error) {
	filter := domain.ReservationsFilter{
		TenantID:   r.TenantID,
		ResourceID: r.ResourceID,
		DateFrom:   r.DateFrom,
		DateTo:     r.DateTo,
		ActiveOnly: r.ActiveOnly,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// CustomerCancelRequest отмена клиентом; телефон должен совпасть с указанным при бронировании
type CustomerCancelRequest struct {
	Phone  string  `json:"phone"`
	Reason *string `json:"reason,omitempty"`
}

// OwnerCancelRequest отмена владельцем арендатора
type OwnerCancelRequest struct {
	UserID int64   `json:"userId"`
	Reason *string `json:"reason,omitempty"`
}

// Response модели

// ServiceResponse снимок услуги в бронировании
type ServiceResponse struct {
	ServiceID       string `json:"serviceId"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	Price           string `json:"price"`
}

// CustomerResponse данные клиента
type CustomerResponse struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	PartySize int     `json:"partySize"`
}

// PaymentResponse данные платежа
type PaymentResponse struct {
	Status   string `json:"status"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID                   string            `json:"id"`
	TenantID             string            `json:"tenantId"`
	ResourceID           string            `json:"resourceId"`
	BookingDate          string            `json:"bookingDate"` // "2025-10-15"
	StartTime            string            `json:"startTime"`   // "10:00"
	EndTime              string            `json:"endTime"`
	TotalDurationMinutes int               `json:"totalDurationMinutes"`
	TotalPrice           string            `json:"totalPrice"`
	Services             []ServiceResponse `json:"services"`
	Customer             CustomerResponse  `json:"customer"`

	Status                     string           `json:"status"`
	Payment                    *PaymentResponse `json:"payment,omitempty"`
	ExpiresAt                  *string          `json:"expiresAt,omitempty"` // RFC 3339
	NeedsNotification          bool             `json:"needsNotification"`
	ExpirationNotificationSent bool             `json:"expirationNotificationSent"`

	ConfirmedAt        *string `json:"confirmedAt,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO для владельца
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                   r.ID,
		TenantID:             r.TenantID,
		ResourceID:           r.ResourceID,
		BookingDate:          r.Date.Format(domain.DateFormat),
		StartTime:            r.StartTime.String(),
		EndTime:              r.EndTime.String(),
		TotalDurationMinutes: r.TotalDurationMinutes,
		TotalPrice:           r.TotalPrice.StringFixed(2),
		Services:             make([]ServiceResponse, len(r.Services)),
		Customer: CustomerResponse{
			Name:      r.Customer.Name,
			Phone:     r.Customer.Phone,
			Email:     r.Customer.Email,
			Notes:     r.Customer.Notes,
			PartySize: r.Customer.PartySize,
		},
		Status:                     string(r.Status),
		NeedsNotification:          r.NeedsNotification(),
		ExpirationNotificationSent: r.ExpirationNotificationSent,
		ExpiresAt:                  formatTime(r.ExpiresAt),
		ConfirmedAt:                formatTime(r.ConfirmedAt),
		CancelledAt:                formatTime(r.CancelledAt),
		CancellationReason:         r.CancellationReason,
		CreatedAt:                  r.CreatedAt,
		UpdatedAt:                  r.UpdatedAt,
	}

	for i, s := range r.Services {
		resp.Services[i] = ServiceResponse{
			ServiceID:       s.ServiceID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price.StringFixed(2),
		}
	}

	if r.Payment != nil {
		resp.Payment = &PaymentResponse{
			Status:   string(r.Payment.Status),
			Amount:   r.Payment.Amount.StringFixed(2),
			Currency: r.Payment.Currency,
		}
	}

	if r.CancelledBy != nil {
		by := string(*r.CancelledBy)
		resp.CancelledBy = &by
	}

	return resp
}

// FromDomainReservationPublic конвертирует domain модель в DTO для публичной страницы
// Контакты клиента не раскрываются
func FromDomainReservationPublic(r *domain.Reservation) *ReservationResponse {
	resp := FromDomainReservation(r)
	if resp == nil {
		return nil
	}
	resp.Customer = CustomerResponse{
		Name:      r.Customer.Name,
		PartySize: r.Customer.PartySize,
	}
	resp.NeedsNotification = false
	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}
	for _, r := range reservations {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r))
	}
	return resp
}

// ToDomainStatus конвертирует строку в domain.ReservationStatus
func ToDomainStatus(status string) (domain.ReservationStatus, error) {
	switch domain.ReservationStatus(status) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled, domain.StatusExpired:
		return domain.ReservationStatus(status), nil
	default:
		return "", ErrInvalidStatus
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
