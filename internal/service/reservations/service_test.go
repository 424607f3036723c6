package reservations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	reservationRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/expiration"
	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations/models"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
)

const (
	ownerID    int64 = 42
	strangerID int64 = 7
)

var createdAt = time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)

// clock общее текущее время для сервиса и sweeper
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memoryRepo хранилище с семантикой условных UPDATE
type memoryRepo struct {
	mu    sync.Mutex
	items map[string]*domain.Reservation
	err   error
}

func newMemoryRepo(items ...*domain.Reservation) *memoryRepo {
	repo := &memoryRepo{items: make(map[string]*domain.Reservation)}
	for _, r := range items {
		repo.items[r.ID] = r
	}
	return repo
}

func (m *memoryRepo) snapshot(r *domain.Reservation) *domain.Reservation {
	copied := *r
	if r.Payment != nil {
		p := *r.Payment
		copied.Payment = &p
	}
	return &copied
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return m.snapshot(r), nil
}

func (m *memoryRepo) List(_ context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	result := make([]*domain.Reservation, 0)
	for _, r := range m.items {
		if r.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		result = append(result, m.snapshot(r))
	}
	return result, nil
}

func (m *memoryRepo) Confirm(_ context.Context, id string, now time.Time) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.Status != domain.StatusPending || r.IsOverdue(now) {
		return nil, reservationRepo.ErrStatusChanged
	}
	r.Status = domain.StatusConfirmed
	r.ExpiresAt = nil
	r.ConfirmedAt = &now
	if r.Payment != nil {
		r.Payment.Status = domain.PaymentPaid
	}
	return m.snapshot(r), nil
}

func (m *memoryRepo) Cancel(_ context.Context, id string, expected domain.ReservationStatus, by domain.CancelledBy, reason *string, now time.Time) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.Status != expected || (expected == domain.StatusPending && r.IsOverdue(now)) {
		return nil, reservationRepo.ErrStatusChanged
	}
	r.Status = domain.StatusCancelled
	r.CancelledAt = &now
	r.CancelledBy = &by
	r.CancellationReason = reason
	r.ExpiresAt = nil
	if r.Payment != nil && r.Payment.Status == domain.PaymentPending {
		r.Payment.Status = domain.PaymentFailed
	}
	return m.snapshot(r), nil
}

func (m *memoryRepo) MarkPaymentFailed(_ context.Context, id string, _ time.Time) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.Status != domain.StatusPending || r.Payment == nil || r.Payment.Status != domain.PaymentPending {
		return nil, reservationRepo.ErrStatusChanged
	}
	r.Payment.Status = domain.PaymentFailed
	return m.snapshot(r), nil
}

func (m *memoryRepo) MarkExpirationNotified(_ context.Context, id string, _ time.Time) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.Status != domain.StatusExpired {
		return nil, reservationRepo.ErrStatusChanged
	}
	r.ExpirationNotificationSent = true
	return m.snapshot(r), nil
}

func (m *memoryRepo) expire(now time.Time, id *string) []*domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range m.items {
		if id != nil && r.ID != *id {
			continue
		}
		if r.IsOverdue(now) {
			r.Status = domain.StatusExpired
			if r.Payment != nil && r.Payment.Status == domain.PaymentPending {
				r.Payment.Status = domain.PaymentFailed
			}
			result = append(result, m.snapshot(r))
		}
	}
	return result
}

type memorySweeper struct {
	repo  *memoryRepo
	clock *clock
}

func (s *memorySweeper) Sweep(_ context.Context, _ expiration.Scope) ([]*domain.Reservation, error) {
	return s.repo.expire(s.clock.Now(), nil), nil
}

func (s *memorySweeper) SweepOne(_ context.Context, id string) (*domain.Reservation, error) {
	expired := s.repo.expire(s.clock.Now(), &id)
	if len(expired) == 0 {
		return nil, nil
	}
	return expired[0], nil
}

type fakeTenants struct{}

func (fakeTenants) GetTenantByID(_ context.Context, id string) (*tenantdirectory.Tenant, error) {
	if id != "t-1" {
		return nil, tenantdirectory.ErrTenantNotFound
	}
	return &tenantdirectory.Tenant{ID: "t-1", OwnerIDs: []int64{ownerID}}, nil
}

type recordingNotifier struct {
	confirmed []string
	cancelled []string
}

func (n *recordingNotifier) ReservationConfirmed(_ context.Context, r *domain.Reservation) {
	n.confirmed = append(n.confirmed, r.ID)
}

func (n *recordingNotifier) ReservationCancelled(_ context.Context, r *domain.Reservation) {
	n.cancelled = append(n.cancelled, r.ID)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func pendingReservation(id string) *domain.Reservation {
	expiresAt := createdAt.Add(domain.PaymentHoldMinutes * time.Minute)
	return &domain.Reservation{
		ID:                   id,
		TenantID:             "t-1",
		ResourceID:           "r-1",
		Date:                 time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
		StartTime:            "10:00",
		EndTime:              "10:30",
		TotalDurationMinutes: 30,
		TotalPrice:           decimal.RequireFromString("1500"),
		Customer:             domain.Customer{Name: "Ivan", Phone: "+7 (999) 000-11-22", PartySize: 1},
		Status:               domain.StatusPending,
		Payment:              &domain.Payment{Status: domain.PaymentPending, Amount: decimal.RequireFromString("1500"), Currency: "RUB"},
		ExpiresAt:            &expiresAt,
		CreatedAt:            createdAt,
	}
}

func confirmedReservation(id string) *domain.Reservation {
	r := pendingReservation(id)
	r.Status = domain.StatusConfirmed
	r.Payment = nil
	r.ExpiresAt = nil
	return r
}

type fixture struct {
	svc      *Service
	repo     *memoryRepo
	clock    *clock
	notifier *recordingNotifier
}

func newFixture(items ...*domain.Reservation) *fixture {
	repo := newMemoryRepo(items...)
	clk := &clock{now: createdAt.Add(10 * time.Minute)}
	notifier := &recordingNotifier{}

	svc := NewService(repo, &memorySweeper{repo: repo, clock: clk}, fakeTenants{}, notifier, nopLogger{})
	svc.timeProvider = clk

	return &fixture{svc: svc, repo: repo, clock: clk, notifier: notifier}
}

func TestService_ExpiresAfterPaymentHold(t *testing.T) {
	f := newFixture(pendingReservation("res-1"))
	ctx := context.Background()

	// T+61m: срок оплаты истёк
	f.clock.Set(createdAt.Add(61 * time.Minute))

	list, err := f.svc.List(ctx, &models.ListReservationsRequest{TenantID: "t-1", UserID: ownerID})
	require.NoError(t, err)
	require.Len(t, list.Reservations, 1)
	assert.Equal(t, "expired", list.Reservations[0].Status)
	assert.True(t, list.Reservations[0].NeedsNotification)
	assert.Equal(t, "failed", list.Reservations[0].Payment.Status)

	_, err = f.svc.Confirm(ctx, "res-1", ownerID)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = f.svc.RecordPaymentOutcome(ctx, "res-1", true)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestService_ExpiresOnDirectConfirmWithoutPriorRead(t *testing.T) {
	f := newFixture(pendingReservation("res-1"))
	f.clock.Set(createdAt.Add(61 * time.Minute))

	_, err := f.svc.RecordPaymentOutcome(context.Background(), "res-1", true)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, domain.StatusExpired, f.repo.items["res-1"].Status)
	assert.Empty(t, f.notifier.confirmed)
}

func TestService_PaymentOutcome(t *testing.T) {
	t.Run("paid confirms", func(t *testing.T) {
		f := newFixture(pendingReservation("res-1"))

		resp, err := f.svc.RecordPaymentOutcome(context.Background(), "res-1", true)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Status)
		assert.Equal(t, "paid", resp.Payment.Status)
		assert.Nil(t, resp.ExpiresAt)
		assert.Equal(t, []string{"res-1"}, f.notifier.confirmed)
	})

	t.Run("failed keeps pending until expiry", func(t *testing.T) {
		f := newFixture(pendingReservation("res-1"))

		resp, err := f.svc.RecordPaymentOutcome(context.Background(), "res-1", false)
		require.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "failed", resp.Payment.Status)

		_, err = f.svc.RecordPaymentOutcome(context.Background(), "res-1", false)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("reservation without payment", func(t *testing.T) {
		f := newFixture(confirmedReservation("res-1"))

		_, err := f.svc.RecordPaymentOutcome(context.Background(), "res-1", true)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})
}

func TestService_Confirm(t *testing.T) {
	f := newFixture(pendingReservation("res-1"), confirmedReservation("res-2"))
	ctx := context.Background()

	_, err := f.svc.Confirm(ctx, "res-1", strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.Confirm(ctx, "res-1", ownerID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)

	_, err = f.svc.Confirm(ctx, "res-2", ownerID)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = f.svc.Confirm(ctx, "missing", ownerID)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestService_Cancel(t *testing.T) {
	t.Run("customer with matching phone", func(t *testing.T) {
		f := newFixture(pendingReservation("res-1"))

		resp, err := f.svc.CancelByCustomer(context.Background(), "res-1", &models.CustomerCancelRequest{
			Phone:  "79990001122",
			Reason: ptr.Ptr("changed plans"),
		})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "customer", *resp.CancelledBy)
		assert.Equal(t, "failed", resp.Payment.Status)
		assert.Empty(t, resp.Customer.Phone, "public view hides contacts")
		assert.Equal(t, []string{"res-1"}, f.notifier.cancelled)
	})

	t.Run("customer with wrong phone", func(t *testing.T) {
		f := newFixture(pendingReservation("res-1"))

		_, err := f.svc.CancelByCustomer(context.Background(), "res-1", &models.CustomerCancelRequest{Phone: "+70000000000"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("owner cancels confirmed", func(t *testing.T) {
		f := newFixture(confirmedReservation("res-1"))

		resp, err := f.svc.CancelByOwner(context.Background(), "res-1", &models.OwnerCancelRequest{UserID: ownerID})
		require.NoError(t, err)
		assert.Equal(t, "owner", *resp.CancelledBy)

		_, err = f.svc.CancelByOwner(context.Background(), "res-1", &models.OwnerCancelRequest{UserID: ownerID})
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("reason too long", func(t *testing.T) {
		f := newFixture(confirmedReservation("res-1"))
		long := make([]rune, domain.MaxCancellationReasonLength+1)
		for i := range long {
			long[i] = 'a'
		}

		_, err := f.svc.CancelByOwner(context.Background(), "res-1", &models.OwnerCancelRequest{
			UserID: ownerID,
			Reason: ptr.Ptr(string(long)),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_ConcurrentCancelAndExpire(t *testing.T) {
	f := newFixture(pendingReservation("res-1"))
	ctx := context.Background()

	// отмена прочитала pending, но к моменту обновления срок уже истёк
	r, err := f.repo.GetByID(ctx, "res-1")
	require.NoError(t, err)

	f.clock.Set(createdAt.Add(61 * time.Minute))
	f.repo.expire(f.clock.Now(), nil)

	_, err = f.svc.cancel(ctx, r, domain.CancelledByCustomer, nil)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, domain.StatusExpired, f.repo.items["res-1"].Status)
	assert.Nil(t, f.repo.items["res-1"].CancelledAt)
}

func TestService_MarkExpirationNotified(t *testing.T) {
	f := newFixture(pendingReservation("res-1"), confirmedReservation("res-2"))
	ctx := context.Background()

	_, err := f.svc.MarkExpirationNotified(ctx, "res-2", ownerID)
	assert.ErrorIs(t, err, ErrNotExpired)

	f.clock.Set(createdAt.Add(2 * time.Hour))

	resp, err := f.svc.MarkExpirationNotified(ctx, "res-1", ownerID)
	require.NoError(t, err)
	assert.True(t, resp.ExpirationNotificationSent)
	assert.False(t, resp.NeedsNotification)

	// повторный вызов - успешный no-op, флаг не сбрасывается
	resp, err = f.svc.MarkExpirationNotified(ctx, "res-1", ownerID)
	require.NoError(t, err)
	assert.True(t, resp.ExpirationNotificationSent)

	_, err = f.svc.MarkExpirationNotified(ctx, "res-1", strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_StoreUnavailable(t *testing.T) {
	f := newFixture(pendingReservation("res-1"))
	f.repo.err = reservationRepo.ErrStoreUnavailable

	_, err := f.svc.GetByID(context.Background(), "res-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestService_ListValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.List(context.Background(), &models.ListReservationsRequest{
		TenantID: "t-1",
		UserID:   ownerID,
		Status:   ptr.Ptr("archived"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.List(context.Background(), &models.ListReservationsRequest{TenantID: "t-2", UserID: ownerID})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}
