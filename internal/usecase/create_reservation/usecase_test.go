package create_reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	reservationRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
	"github.com/m04kA/SMC-BookingEngine/internal/service/expiration"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Среда, 15 октября 2025, 08:00
var testNow = time.Date(2025, 10, 15, 8, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type memoryRepo struct {
	mu       sync.Mutex
	items    []*domain.Reservation
	lockErr  error
	createFn func(*domain.Reservation) error
}

func (m *memoryRepo) Create(_ context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createFn != nil {
		if err := m.createFn(r); err != nil {
			return err
		}
	}
	m.items = append(m.items, r)
	return nil
}

func (m *memoryRepo) LockSlot(context.Context, string, string, time.Time) error {
	return m.lockErr
}

func (m *memoryRepo) GetActiveForDay(_ context.Context, tenantID, resourceID string, date time.Time) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range m.items {
		if r.TenantID == tenantID && r.ResourceID == resourceID && r.Date.Equal(date) && r.IsActive() {
			result = append(result, r)
		}
	}
	return result, nil
}

// ExpireOverdue эмулирует условный UPDATE sweeper'а
func (m *memoryRepo) ExpireOverdue(_ context.Context, scope reservationRepo.ExpireScope, now time.Time) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Reservation, 0)
	for _, r := range m.items {
		if scope.TenantID != nil && *scope.TenantID != r.TenantID {
			continue
		}
		if scope.ResourceID != nil && *scope.ResourceID != r.ResourceID {
			continue
		}
		if scope.DateFrom != nil && r.Date.Before(*scope.DateFrom) {
			continue
		}
		if scope.DateTo != nil && r.Date.After(*scope.DateTo) {
			continue
		}
		if r.IsOverdue(now) {
			r.Status = domain.StatusExpired
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

// snapshot и restore эмулируют откат транзакции
func (m *memoryRepo) snapshot() []domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make([]domain.Reservation, 0, len(m.items))
	for _, r := range m.items {
		saved = append(saved, *r)
	}
	return saved
}

func (m *memoryRepo) restore(saved []domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = m.items[:0]
	for i := range saved {
		r := saved[i]
		m.items = append(m.items, &r)
	}
}

func (m *memoryRepo) find(id string) *domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.items {
		if r.ID == id {
			copied := *r
			return &copied
		}
	}
	return nil
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// memoryChecker проверка доступности поверх memoryRepo с фиксированным временем
type memoryChecker struct {
	repo *memoryRepo
}

func (c memoryChecker) Check(ctx context.Context, tenantID, resourceID string, date time.Time, start types.TimeString, duration int) (bool, error) {
	candidate, err := domain.NewInterval(start, duration)
	if err != nil {
		return false, err
	}
	reservations, err := c.repo.GetActiveForDay(ctx, tenantID, resourceID, date)
	if err != nil {
		return false, err
	}
	return availability.FindConflict(reservations, candidate, testNow) == nil, nil
}

type nopSweeper struct{}

func (nopSweeper) Expire(context.Context, expiration.Scope) ([]*domain.Reservation, error) {
	return nil, nil
}

func (nopSweeper) Publish(context.Context, []*domain.Reservation) {}

type failingSweeper struct{ err error }

func (f failingSweeper) Expire(context.Context, expiration.Scope) ([]*domain.Reservation, error) {
	return nil, f.err
}

func (failingSweeper) Publish(context.Context, []*domain.Reservation) {}

type expiredRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (e *expiredRecorder) ReservationExpired(_ context.Context, r *domain.Reservation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids = append(e.ids, r.ID)
}

// serialTx выполняет транзакции по одной, как advisory блокировка слота
// При ошибке состояние repo откатывается
type serialTx struct {
	mu        sync.Mutex
	repo      *memoryRepo
	commitErr error
}

func (s *serialTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.repo.snapshot()
	err := fn(ctx)
	if err == nil {
		err = s.commitErr
	}
	if err != nil {
		s.repo.restore(saved)
	}
	return err
}

type fakeTenants struct {
	tenants map[string]*tenantdirectory.Tenant
}

func (f fakeTenants) GetTenantBySlug(_ context.Context, slug string) (*tenantdirectory.Tenant, error) {
	t, ok := f.tenants[slug]
	if !ok {
		return nil, tenantdirectory.ErrTenantNotFound
	}
	return t, nil
}

type fakeSchedules struct {
	configs map[string]*domain.ScheduleConfig
	err     error
}

func (f fakeSchedules) GetWithHierarchy(_ context.Context, _ string, resourceID string) (*domain.ScheduleConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	cfg, ok := f.configs[resourceID]
	if !ok {
		return nil, scheduleRepo.ErrConfigNotFound
	}
	return cfg, nil
}

type countingNotifier struct {
	mu      sync.Mutex
	created []string
}

func (n *countingNotifier) ReservationCreated(_ context.Context, r *domain.Reservation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, r.ID)
}

type countingMetrics struct {
	mu        sync.Mutex
	created   map[string]int
	conflicts int
}

func (m *countingMetrics) ReservationCreated(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[status]++
}

func (m *countingMetrics) SlotConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func weekly(start, end types.TimeString) map[time.Weekday]domain.DayWindow {
	windows := make(map[time.Weekday]domain.DayWindow)
	for _, day := range domain.AllWeekdays {
		windows[day] = domain.DayWindow{IsOpen: true, StartTime: start, EndTime: end}
	}
	windows[time.Sunday] = domain.DayWindow{IsOpen: false}
	return windows
}

func newTenant(requiresPayment bool) *tenantdirectory.Tenant {
	return &tenantdirectory.Tenant{
		ID:              "t-1",
		Slug:            "barber",
		RequiresPayment: requiresPayment,
		Currency:        "RUB",
		Resources: []tenantdirectory.Resource{
			{ID: "master", TenantID: "t-1", Kind: tenantdirectory.ResourceKindProfessional, IsActive: true},
			{ID: "hall", TenantID: "t-1", Kind: tenantdirectory.ResourceKindVenue, IsActive: true, MaxPartySize: 50},
			{ID: "retired", TenantID: "t-1", Kind: tenantdirectory.ResourceKindProfessional, IsActive: false},
		},
		Services: []tenantdirectory.CatalogService{
			{ID: "haircut", Name: "Haircut", DurationMinutes: 30, Price: decimal.RequireFromString("1500"), IsActive: true},
			{ID: "beard", Name: "Beard", DurationMinutes: 15, Price: decimal.RequireFromString("700.50"), IsActive: true},
			{ID: "long", Name: "Long", DurationMinutes: 90, Price: decimal.RequireFromString("4000"), IsActive: true},
			{ID: "banquet", Name: "Banquet", DurationMinutes: 60, Price: decimal.RequireFromString("30000"), IsActive: true, ResourceIDs: []string{"hall"}},
			{ID: "archived", Name: "Archived", DurationMinutes: 30, Price: decimal.RequireFromString("1"), IsActive: false},
		},
	}
}

type fixture struct {
	uc       *UseCase
	repo     *memoryRepo
	tx       *serialTx
	notifier *countingNotifier
	metrics  *countingMetrics
}

func newFixture(tenant *tenantdirectory.Tenant, schedules fakeSchedules) *fixture {
	repo := &memoryRepo{}
	tx := &serialTx{repo: repo}
	notifier := &countingNotifier{}
	metrics := &countingMetrics{created: make(map[string]int)}

	uc := NewUseCase(
		repo,
		schedules,
		fakeTenants{tenants: map[string]*tenantdirectory.Tenant{tenant.Slug: tenant}},
		memoryChecker{repo: repo},
		nopSweeper{},
		notifier,
		metrics,
		tx,
		nopLogger{},
	)
	uc.timeProvider = fixedTime{now: testNow}

	return &fixture{uc: uc, repo: repo, tx: tx, notifier: notifier, metrics: metrics}
}

func defaultSchedules() fakeSchedules {
	return fakeSchedules{configs: map[string]*domain.ScheduleConfig{
		"master": {TenantID: "t-1", SlotDurationMinutes: 15, WeeklyWindows: weekly("09:00", "18:00")},
		"hall":   {TenantID: "t-1", SlotDurationMinutes: 60, WeeklyWindows: weekly("12:00", "23:00")},
	}}
}

func request(start string, services ...string) *Request {
	return &Request{
		TenantSlug: "barber",
		ResourceID: "master",
		Date:       "2025-10-16",
		StartTime:  start,
		ServiceIDs: services,
		Customer: Customer{
			Name:  "  Ivan   Petrov ",
			Phone: "+7 (999) 123-45-67",
			Email: ptr.Ptr("ivan@example.com"),
		},
	}
}

func TestExecute_AdjacentSucceedsOverlapConflicts(t *testing.T) {
	f := newFixture(newTenant(false), defaultSchedules())
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, request("10:00", "haircut"))
	require.NoError(t, err)
	assert.Equal(t, "confirmed", first.Status)
	assert.Equal(t, types.TimeString("10:30"), first.EndTime)
	assert.Nil(t, first.PaymentPrompt)

	second, err := f.uc.Execute(ctx, request("10:30", "haircut"))
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("11:00"), second.EndTime)

	_, err = f.uc.Execute(ctx, request("10:15", "haircut"))
	assert.ErrorIs(t, err, ErrSlotConflict)

	assert.Equal(t, 2, f.repo.count())
	assert.Len(t, f.notifier.created, 2)
	assert.Equal(t, 2, f.metrics.created["confirmed"])
	assert.Equal(t, 1, f.metrics.conflicts)
}

func TestExecute_PaymentGatedStatus(t *testing.T) {
	f := newFixture(newTenant(true), defaultSchedules())

	resp, err := f.uc.Execute(context.Background(), request("11:00", "haircut", "beard"))
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 45, resp.TotalDurationMinutes)
	assert.True(t, decimal.RequireFromString("2200.50").Equal(resp.TotalPrice))
	require.NotNil(t, resp.PaymentPrompt)
	assert.Equal(t, testNow.Add(60*time.Minute), resp.PaymentPrompt.ExpiresAt)
	assert.True(t, resp.TotalPrice.Equal(resp.PaymentPrompt.Amount))
	assert.Equal(t, "RUB", resp.PaymentPrompt.Currency)

	stored := f.repo.items[0]
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, domain.PaymentPending, stored.Payment.Status)
	assert.Equal(t, testNow, stored.CreatedAt)
	assert.Equal(t, "Ivan Petrov", stored.Customer.Name)
	assert.Len(t, stored.Services, 2)
	assert.NotEmpty(t, stored.ID)
}

func TestExecute_ServerSideIdentity(t *testing.T) {
	t.Run("forged tenant id", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())
		req := request("10:00", "haircut")
		req.TenantID = ptr.Ptr("t-2")

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrIdentityMismatch)
		assert.Zero(t, f.repo.count())
	})

	t.Run("matching tenant id", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())
		req := request("10:00", "haircut")
		req.TenantID = ptr.Ptr("t-1")

		_, err := f.uc.Execute(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("resource of another tenant", func(t *testing.T) {
		tenant := newTenant(false)
		tenant.Resources = append(tenant.Resources, tenantdirectory.Resource{ID: "foreign", TenantID: "t-2", IsActive: true})
		f := newFixture(tenant, defaultSchedules())
		req := request("10:00", "haircut")
		req.ResourceID = "foreign"

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("inactive resource", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())
		req := request("10:00", "haircut")
		req.ResourceID = "retired"

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())
		req := request("10:00", "haircut")
		req.TenantSlug = "nope"

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrTenantNotFound)
	})
}

func TestExecute_ServiceSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		services []string
	}{
		{name: "unknown service", services: []string{"massage"}},
		{name: "inactive service", services: []string{"archived"}},
		{name: "service not offered by resource", services: []string{"banquet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(newTenant(false), defaultSchedules())

			_, err := f.uc.Execute(context.Background(), request("10:00", tt.services...))
			assert.ErrorIs(t, err, ErrServiceNotFound)
		})
	}
}

func TestExecute_FieldValidation(t *testing.T) {
	f := newFixture(newTenant(false), defaultSchedules())

	req := &Request{
		TenantSlug: "barber",
		ResourceID: "master",
		Date:       "16.10.2025",
		StartTime:  "25:00",
		ServiceIDs: []string{"haircut", "haircut"},
		Customer: Customer{
			Name:  " I ",
			Phone: "12-34",
			Email: ptr.Ptr("not-an-email"),
		},
	}

	_, err := f.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, fieldDate)
	assert.Contains(t, verr.Fields, fieldStartTime)
	assert.Contains(t, verr.Fields, fieldServiceIDs)
	assert.Contains(t, verr.Fields, fieldName)
	assert.Contains(t, verr.Fields, fieldPhone)
	assert.Contains(t, verr.Fields, fieldEmail)
	assert.NotContains(t, verr.Fields, fieldNotes)
}

func TestExecute_ScheduleValidation(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		start     string
		services  []string
		wantField string
	}{
		{name: "date in the past", date: "2025-10-14", start: "10:00", services: []string{"haircut"}, wantField: fieldDate},
		{name: "closed day", date: "2025-10-19", start: "10:00", services: []string{"haircut"}, wantField: fieldDate},
		{name: "not a slot start", date: "2025-10-16", start: "10:05", services: []string{"haircut"}, wantField: fieldStartTime},
		{name: "before opening", date: "2025-10-16", start: "08:45", services: []string{"haircut"}, wantField: fieldStartTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(newTenant(false), defaultSchedules())
			req := request(tt.start, tt.services...)
			req.Date = tt.date

			_, err := f.uc.Execute(context.Background(), req)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tt.wantField)
		})
	}
}

func TestExecute_TodaySlotAlreadyStarted(t *testing.T) {
	f := newFixture(newTenant(false), defaultSchedules())
	f.uc.timeProvider = fixedTime{now: time.Date(2025, 10, 15, 10, 20, 0, 0, time.UTC)}

	req := request("10:15", "haircut")
	req.Date = "2025-10-15"

	_, err := f.uc.Execute(context.Background(), req)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, fieldStartTime)

	req = request("10:30", "haircut")
	req.Date = "2025-10-15"
	_, err = f.uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_NoScheduleMeansClosed(t *testing.T) {
	f := newFixture(newTenant(false), fakeSchedules{configs: map[string]*domain.ScheduleConfig{}})

	_, err := f.uc.Execute(context.Background(), request("10:00", "haircut"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, fieldDate)
}

func TestExecute_ClosingAndMidnightBoundaries(t *testing.T) {
	t.Run("overrun past closing is allowed", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())

		resp, err := f.uc.Execute(context.Background(), request("17:45", "long"))
		require.NoError(t, err)
		assert.Equal(t, types.TimeString("19:15"), resp.EndTime)
	})

	t.Run("overrun past midnight is rejected", func(t *testing.T) {
		schedules := fakeSchedules{configs: map[string]*domain.ScheduleConfig{
			"master": {TenantID: "t-1", SlotDurationMinutes: 60, WeeklyWindows: weekly("20:00", "24:00")},
		}}
		f := newFixture(newTenant(false), schedules)

		_, err := f.uc.Execute(context.Background(), request("23:00", "long"))
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, fieldStartTime)
	})
}

func TestExecute_WholeVenue(t *testing.T) {
	venueRequest := func(start string, partySize int) *Request {
		req := request(start, "banquet")
		req.ResourceID = "hall"
		req.Customer.PartySize = partySize
		return req
	}

	t.Run("spans the whole window", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())

		resp, err := f.uc.Execute(context.Background(), venueRequest("12:00", 30))
		require.NoError(t, err)
		assert.Equal(t, 60, resp.TotalDurationMinutes, "sum of selected services")
		assert.Equal(t, types.TimeString("23:00"), resp.EndTime)
		assert.Equal(t, 30, f.repo.items[0].Customer.PartySize)

		occupied, err := f.repo.items[0].Interval()
		require.NoError(t, err)
		assert.Equal(t, 11*60, occupied.Duration(), "whole window is held")

		_, err = f.uc.Execute(context.Background(), venueRequest("12:00", 10))
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("start must be window start", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())

		_, err := f.uc.Execute(context.Background(), venueRequest("13:00", 10))
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, fieldStartTime)
	})

	t.Run("party size over limit", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())

		_, err := f.uc.Execute(context.Background(), venueRequest("12:00", 51))
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, fieldPartySize)
	})
}

func TestExecute_StoreErrors(t *testing.T) {
	t.Run("store unavailable", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())
		f.repo.lockErr = reservationRepo.ErrStoreUnavailable

		_, err := f.uc.Execute(context.Background(), request("10:00", "haircut"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Empty(t, f.notifier.created)
	})

	t.Run("exclusion constraint", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())
		f.repo.createFn = func(*domain.Reservation) error {
			return reservationRepo.ErrSlotConflict
		}

		_, err := f.uc.Execute(context.Background(), request("10:00", "haircut"))
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("serialization failure on commit", func(t *testing.T) {
		f := newFixture(newTenant(false), defaultSchedules())
		f.tx.commitErr = &pq.Error{Code: "40001"}

		_, err := f.uc.Execute(context.Background(), request("10:00", "haircut"))
		assert.ErrorIs(t, err, ErrSlotConflict)
		assert.Empty(t, f.notifier.created)
	})

	t.Run("schedule store failure", func(t *testing.T) {
		f := newFixture(newTenant(false), fakeSchedules{err: scheduleRepo.ErrExecQuery})

		_, err := f.uc.Execute(context.Background(), request("10:00", "haircut"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestExecute_ConcurrentCreatesHaveOneWinner(t *testing.T) {
	f := newFixture(newTenant(false), defaultSchedules())

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), request("14:00", "haircut"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrSlotConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, f.repo.count())
}

// overduePending неоплаченная бронь, созданная вчера и не очищенная sweeper'ом
func overduePending(id, start string) *domain.Reservation {
	createdAt := testNow.Add(-26 * time.Hour)
	expiresAt := createdAt.Add(domain.PaymentHoldMinutes * time.Minute)
	startTime := types.TimeString(start)
	end, _ := startTime.AddMinutes(30)
	return &domain.Reservation{
		ID:                   id,
		TenantID:             "t-1",
		ResourceID:           "master",
		Date:                 time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC),
		StartTime:            startTime,
		EndTime:              end,
		TotalDurationMinutes: 30,
		Status:               domain.StatusPending,
		ExpiresAt:            &expiresAt,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}
}

func TestExecute_ExpiresOverduePendingInTransaction(t *testing.T) {
	f := newFixture(newTenant(false), defaultSchedules())
	events := &expiredRecorder{}
	f.uc.sweeper = expiration.NewSweeper(f.repo, events, nil, nopLogger{})
	f.repo.items = append(f.repo.items, overduePending("overdue-1", "10:00"))

	resp, err := f.uc.Execute(context.Background(), request("10:00", "haircut"))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	old := f.repo.find("overdue-1")
	require.NotNil(t, old)
	assert.Equal(t, domain.StatusExpired, old.Status)
	assert.Equal(t, []string{"overdue-1"}, events.ids)
}

func TestExecute_NoExpiredEventWhenTransactionRollsBack(t *testing.T) {
	f := newFixture(newTenant(false), defaultSchedules())
	events := &expiredRecorder{}
	f.uc.sweeper = expiration.NewSweeper(f.repo, events, nil, nopLogger{})

	_, err := f.uc.Execute(context.Background(), request("10:00", "haircut"))
	require.NoError(t, err)

	f.repo.items = append(f.repo.items, overduePending("overdue-1", "14:00"))

	// 10:15 пересекается с 10:00-10:30: транзакция откатывается вместе с истечением
	_, err = f.uc.Execute(context.Background(), request("10:15", "haircut"))
	require.ErrorIs(t, err, ErrSlotConflict)
	assert.Empty(t, events.ids)
	assert.Equal(t, domain.StatusPending, f.repo.find("overdue-1").Status)

	_, err = f.uc.Execute(context.Background(), request("11:00", "haircut"))
	require.NoError(t, err)
	assert.Equal(t, []string{"overdue-1"}, events.ids)
	assert.Equal(t, domain.StatusExpired, f.repo.find("overdue-1").Status)
}

func TestExecute_SweepFailureAbortsCreate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "store unavailable", err: reservationRepo.ErrStoreUnavailable, wantErr: ErrStoreUnavailable},
		{name: "unexpected", err: errors.New("boom"), wantErr: ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(newTenant(false), defaultSchedules())
			f.uc.sweeper = failingSweeper{err: tt.err}

			_, err := f.uc.Execute(context.Background(), request("10:00", "haircut"))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.repo.count())
			assert.Empty(t, f.notifier.created)
		})
	}
}
