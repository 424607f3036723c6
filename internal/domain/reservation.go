package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusExpired   ReservationStatus = "expired"
)

// PaymentStatus state of the payment attached to a reservation
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// CancelledBy who cancelled the reservation
type CancelledBy string

const (
	CancelledByCustomer CancelledBy = "customer"
	CancelledByOwner    CancelledBy = "owner"
)

// Payment is present only on reservations of tenants that require payment.
// A reservation without payment has Payment == nil ("none").
type Payment struct {
	Status   PaymentStatus
	Amount   decimal.Decimal
	Currency string
}

// ServiceSelection snapshot of a catalog service taken at booking time
type ServiceSelection struct {
	ServiceID       string
	Name            string
	DurationMinutes int
	Price           decimal.Decimal
}

// Customer snapshot captured once at creation, never updated
type Customer struct {
	Name      string
	Phone     string
	Email     *string
	Notes     *string
	PartySize int
}

// Reservation a customer's claim on one slot of one resource
type Reservation struct {
	ID         string
	TenantID   string
	ResourceID string

	Date                 time.Time
	StartTime            types.TimeString
	EndTime              types.TimeString
	TotalDurationMinutes int // sum of Services durations
	TotalPrice           decimal.Decimal
	Services             []ServiceSelection

	Customer Customer

	Status                     ReservationStatus
	Payment                    *Payment
	ExpiresAt                  *time.Time // set only while pending payment
	ExpirationNotificationSent bool

	ConfirmedAt        *time.Time
	CancelledAt        *time.Time
	CancelledBy        *CancelledBy
	CancellationReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequiresPayment returns true if the reservation carries a payment
func (r *Reservation) RequiresPayment() bool {
	return r.Payment != nil
}

// IsActive returns true if the reservation holds its slot (pending or confirmed)
func (r *Reservation) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// IsFinal returns true for cancelled and expired reservations
func (r *Reservation) IsFinal() bool {
	return r.Status == StatusCancelled || r.Status == StatusExpired
}

// CanBeConfirmed returns true if the reservation can move to confirmed
func (r *Reservation) CanBeConfirmed() bool {
	return r.Status == StatusPending
}

// CanBeCancelled returns true if the reservation can move to cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// IsOverdue returns true if a pending reservation passed its payment deadline
func (r *Reservation) IsOverdue(now time.Time) bool {
	return r.Status == StatusPending && r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// BlocksSlot returns true if the reservation still occupies its interval at now
func (r *Reservation) BlocksSlot(now time.Time) bool {
	return r.IsActive() && !r.IsOverdue(now)
}

// NeedsNotification returns true if the owner still has to tell the customer about expiration
func (r *Reservation) NeedsNotification() bool {
	return r.Status == StatusExpired && !r.ExpirationNotificationSent
}

// Interval returns the occupied [start, end) interval in minutes since midnight.
// For a whole-day venue it is longer than TotalDurationMinutes.
func (r *Reservation) Interval() (Interval, error) {
	return NewIntervalFromBounds(r.StartTime, r.EndTime)
}

// ReservationsFilter filter for listing reservations of a tenant
type ReservationsFilter struct {
	TenantID   string             // Required
	ResourceID *string            // nil = all resources
	DateFrom   *time.Time         // inclusive, nil = no lower bound
	DateTo     *time.Time         // inclusive, nil = no upper bound
	Status     *ReservationStatus // nil = any status
	ActiveOnly bool               // only pending and confirmed
}

// IsSingleDay returns true if the filter targets exactly one date
func (f ReservationsFilter) IsSingleDay() bool {
	return f.DateFrom != nil && f.DateTo != nil && f.DateFrom.Equal(*f.DateTo)
}
