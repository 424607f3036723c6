package notifier

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Ключи маршрутизации событий бронирования
const (
	KeyReservationCreated   = "reservation.created"
	KeyReservationConfirmed = "reservation.confirmed"
	KeyReservationCancelled = "reservation.cancelled"
	KeyReservationExpired   = "reservation.expired"
)

const eventVersion = 1

// Event конверт события, по формату совпадает с событиями платёжного сервиса
type Event struct {
	Event      string           `json:"event"`
	Version    int              `json:"version"`
	OccurredAt time.Time        `json:"occurred_at"`
	Data       ReservationEvent `json:"data"`
}

// ReservationEvent данные бронирования для диспетчера уведомлений
type ReservationEvent struct {
	ReservationID string  `json:"reservation_id"`
	TenantID      string  `json:"tenant_id"`
	ResourceID    string  `json:"resource_id"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Status        string  `json:"status"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	TotalPrice    string  `json:"total_price"`
	PaymentStatus *string `json:"payment_status,omitempty"`
	ExpiresAt     *string `json:"expires_at,omitempty"`
	CancelledBy   *string `json:"cancelled_by,omitempty"`
	Reason        *string `json:"reason,omitempty"`
}

func newEvent(key string, r *domain.Reservation, now time.Time) Event {
	data := ReservationEvent{
		ReservationID: r.ID,
		TenantID:      r.TenantID,
		ResourceID:    r.ResourceID,
		Date:          r.Date.Format(domain.DateFormat),
		StartTime:     r.StartTime.String(),
		EndTime:       r.EndTime.String(),
		Status:        string(r.Status),
		CustomerName:  r.Customer.Name,
		CustomerPhone: r.Customer.Phone,
		CustomerEmail: r.Customer.Email,
		TotalPrice:    r.TotalPrice.StringFixed(2),
		Reason:        r.CancellationReason,
	}

	if r.Payment != nil {
		status := string(r.Payment.Status)
		data.PaymentStatus = &status
	}
	if r.ExpiresAt != nil {
		expiresAt := r.ExpiresAt.UTC().Format(time.RFC3339)
		data.ExpiresAt = &expiresAt
	}
	if r.CancelledBy != nil {
		by := string(*r.CancelledBy)
		data.CancelledBy = &by
	}

	return Event{
		Event:      key,
		Version:    eventVersion,
		OccurredAt: now.UTC(),
		Data:       data,
	}
}
