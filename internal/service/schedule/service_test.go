package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/schedule/models"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
)

const ownerID int64 = 42

type fakeStore struct {
	configs  map[string]*domain.ScheduleConfig
	upserted []*domain.ScheduleConfig
	err      error
}

func key(resourceID *string) string {
	if resourceID == nil {
		return ""
	}
	return *resourceID
}

func (s *fakeStore) GetByTenantAndResource(_ context.Context, _ string, resourceID *string) (*domain.ScheduleConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg, ok := s.configs[key(resourceID)]
	if !ok {
		return nil, scheduleRepo.ErrConfigNotFound
	}
	return cfg, nil
}

func (s *fakeStore) GetWithHierarchy(ctx context.Context, tenantID, resourceID string) (*domain.ScheduleConfig, error) {
	cfg, err := s.GetByTenantAndResource(ctx, tenantID, &resourceID)
	if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
		return s.GetByTenantAndResource(ctx, tenantID, nil)
	}
	return cfg, err
}

func (s *fakeStore) Upsert(_ context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg.ID = int64(len(s.upserted) + 1)
	s.upserted = append(s.upserted, cfg)
	return cfg, nil
}

type fakeTenants struct{}

func (fakeTenants) GetTenantByID(_ context.Context, id string) (*tenantdirectory.Tenant, error) {
	if id != "t-1" {
		return nil, tenantdirectory.ErrTenantNotFound
	}
	return &tenantdirectory.Tenant{
		ID:        "t-1",
		OwnerIDs:  []int64{ownerID},
		Resources: []tenantdirectory.Resource{{ID: "r-1", TenantID: "t-1", IsActive: true}},
	}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func weekWindows() map[string]models.DayWindow {
	windows := make(map[string]models.DayWindow)
	for _, name := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"} {
		windows[name] = models.DayWindow{IsOpen: true, StartTime: "09:00", EndTime: "18:00"}
	}
	windows["sunday"] = models.DayWindow{IsOpen: false}
	return windows
}

func TestService_Update(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.UpdateScheduleRequest
		wantErr error
	}{
		{
			name: "tenant-wide schedule",
			req: &models.UpdateScheduleRequest{
				UserID: ownerID, TenantID: "t-1",
				SlotDurationMinutes: 30, WeeklyWindows: weekWindows(),
			},
		},
		{
			name: "resource schedule",
			req: &models.UpdateScheduleRequest{
				UserID: ownerID, TenantID: "t-1", ResourceID: ptr.Ptr("r-1"),
				SlotDurationMinutes: 60, BreakBetweenSlotsMinutes: 15, WeeklyWindows: weekWindows(),
			},
		},
		{
			name: "not an owner",
			req: &models.UpdateScheduleRequest{
				UserID: 7, TenantID: "t-1",
				SlotDurationMinutes: 30, WeeklyWindows: weekWindows(),
			},
			wantErr: ErrAccessDenied,
		},
		{
			name: "foreign resource",
			req: &models.UpdateScheduleRequest{
				UserID: ownerID, TenantID: "t-1", ResourceID: ptr.Ptr("r-other"),
				SlotDurationMinutes: 30, WeeklyWindows: weekWindows(),
			},
			wantErr: ErrResourceNotFound,
		},
		{
			name: "missing weekday",
			req: &models.UpdateScheduleRequest{
				UserID: ownerID, TenantID: "t-1",
				SlotDurationMinutes: 30,
				WeeklyWindows:       map[string]models.DayWindow{"monday": {IsOpen: true, StartTime: "09:00", EndTime: "18:00"}},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "unknown weekday",
			req: func() *models.UpdateScheduleRequest {
				windows := weekWindows()
				windows["funday"] = models.DayWindow{}
				return &models.UpdateScheduleRequest{UserID: ownerID, TenantID: "t-1", SlotDurationMinutes: 30, WeeklyWindows: windows}
			}(),
			wantErr: ErrInvalidInput,
		},
		{
			name: "slot duration out of range",
			req: &models.UpdateScheduleRequest{
				UserID: ownerID, TenantID: "t-1",
				SlotDurationMinutes: 0, WeeklyWindows: weekWindows(),
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "unknown tenant",
			req: &models.UpdateScheduleRequest{
				UserID: ownerID, TenantID: "t-2",
				SlotDurationMinutes: 30, WeeklyWindows: weekWindows(),
			},
			wantErr: ErrTenantNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{configs: map[string]*domain.ScheduleConfig{}}
			svc := NewService(store, fakeTenants{}, nopLogger{})

			resp, err := svc.Update(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.upserted)
				return
			}

			require.NoError(t, err)
			require.Len(t, store.upserted, 1)
			assert.Equal(t, tt.req.ResourceID, resp.ResourceID)
			assert.Len(t, resp.WeeklyWindows, 7)
			assert.Equal(t, "09:00", resp.WeeklyWindows["monday"].StartTime)
			assert.False(t, resp.WeeklyWindows["sunday"].IsOpen)
		})
	}
}

func TestService_Get(t *testing.T) {
	tenantWide := &domain.ScheduleConfig{
		ID:                  1,
		TenantID:            "t-1",
		SlotDurationMinutes: 30,
		WeeklyWindows: map[time.Weekday]domain.DayWindow{
			time.Monday: {IsOpen: true, StartTime: "09:00", EndTime: "12:00"},
		},
	}

	t.Run("resource falls back to tenant schedule", func(t *testing.T) {
		store := &fakeStore{configs: map[string]*domain.ScheduleConfig{"": tenantWide}}
		svc := NewService(store, fakeTenants{}, nopLogger{})

		resp, err := svc.Get(context.Background(), &models.GetScheduleRequest{
			UserID: ownerID, TenantID: "t-1", ResourceID: ptr.Ptr("r-1"),
		})
		require.NoError(t, err)
		assert.True(t, resp.Inherited)
		assert.Equal(t, int64(1), resp.ID)
	})

	t.Run("tenant schedule", func(t *testing.T) {
		store := &fakeStore{configs: map[string]*domain.ScheduleConfig{"": tenantWide}}
		svc := NewService(store, fakeTenants{}, nopLogger{})

		resp, err := svc.Get(context.Background(), &models.GetScheduleRequest{UserID: ownerID, TenantID: "t-1"})
		require.NoError(t, err)
		assert.False(t, resp.Inherited)
	})

	t.Run("not configured", func(t *testing.T) {
		store := &fakeStore{configs: map[string]*domain.ScheduleConfig{}}
		svc := NewService(store, fakeTenants{}, nopLogger{})

		_, err := svc.Get(context.Background(), &models.GetScheduleRequest{UserID: ownerID, TenantID: "t-1"})
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("store error", func(t *testing.T) {
		store := &fakeStore{err: scheduleRepo.ErrExecQuery}
		svc := NewService(store, fakeTenants{}, nopLogger{})

		_, err := svc.Get(context.Background(), &models.GetScheduleRequest{UserID: ownerID, TenantID: "t-1"})
		assert.ErrorIs(t, err, ErrInternal)
	})
}
