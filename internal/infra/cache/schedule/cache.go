package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

const (
	keyPrefix       = "schedule"
	tenantWideLevel = "_"
)

// Cache read-through кэш конфигураций расписания в Redis
// Кэшируется каждый уровень иерархии отдельно, включая отсутствие конфигурации,
// поэтому запись одного уровня инвалидирует ровно один ключ.
// Ошибки Redis не ломают чтение: запрос уходит напрямую в хранилище.
type Cache struct {
	store  Store
	client RedisClient
	ttl    time.Duration
	log    Logger
}

// New создает кэш поверх хранилища
func New(store Store, client RedisClient, ttl time.Duration, log Logger) *Cache {
	return &Cache{
		store:  store,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// GetByTenantAndResource получает конфигурацию уровня (tenant, resource)
func (c *Cache) GetByTenantAndResource(ctx context.Context, tenantID string, resourceID *string) (*domain.ScheduleConfig, error) {
	key := cacheKey(tenantID, resourceID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		cfg, found, decodeErr := decode(raw)
		if decodeErr == nil {
			if !found {
				return nil, scheduleRepo.ErrConfigNotFound
			}
			return cfg, nil
		}
		c.log.Warn("schedule cache: corrupted entry key=%s: %v", key, decodeErr)
	case errors.Is(err, redis.Nil):
		// промах
	default:
		c.log.Warn("schedule cache: get key=%s failed: %v", key, err)
	}

	cfg, err := c.store.GetByTenantAndResource(ctx, tenantID, resourceID)
	if err != nil && !errors.Is(err, scheduleRepo.ErrConfigNotFound) {
		return nil, err
	}

	c.put(ctx, key, cfg)

	if cfg == nil {
		return nil, scheduleRepo.ErrConfigNotFound
	}
	return cfg, nil
}

// GetWithHierarchy получает конфигурацию ресурса, иначе общую конфигурацию арендатора
func (c *Cache) GetWithHierarchy(ctx context.Context, tenantID, resourceID string) (*domain.ScheduleConfig, error) {
	cfg, err := c.GetByTenantAndResource(ctx, tenantID, &resourceID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, scheduleRepo.ErrConfigNotFound) {
		return nil, err
	}

	return c.GetByTenantAndResource(ctx, tenantID, nil)
}

// Upsert сохраняет конфигурацию и инвалидирует её ключ
func (c *Cache) Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	saved, err := c.store.Upsert(ctx, cfg)
	if err != nil {
		return nil, err
	}

	key := cacheKey(cfg.TenantID, cfg.ResourceID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("schedule cache: invalidate key=%s failed: %v", key, err)
	}

	return saved, nil
}

func (c *Cache) put(ctx context.Context, key string, cfg *domain.ScheduleConfig) {
	raw, err := encode(cfg)
	if err != nil {
		c.log.Warn("schedule cache: encode key=%s failed: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("schedule cache: set key=%s failed: %v", key, err)
	}
}

func cacheKey(tenantID string, resourceID *string) string {
	level := tenantWideLevel
	if resourceID != nil {
		level = *resourceID
	}
	return fmt.Sprintf("%s:%s:%s", keyPrefix, tenantID, level)
}

type cachedWindow struct {
	IsOpen    bool   `json:"is_open"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type cachedConfig struct {
	Found                    bool                 `json:"found"`
	ID                       int64                `json:"id,omitempty"`
	TenantID                 string               `json:"tenant_id,omitempty"`
	ResourceID               *string              `json:"resource_id,omitempty"`
	SlotDurationMinutes      int                  `json:"slot_duration_minutes,omitempty"`
	BreakBetweenSlotsMinutes int                  `json:"break_between_slots_minutes,omitempty"`
	WeeklyWindows            map[int]cachedWindow `json:"weekly_windows,omitempty"`
	CreatedAt                time.Time            `json:"created_at"`
	UpdatedAt                time.Time            `json:"updated_at"`
}

func encode(cfg *domain.ScheduleConfig) ([]byte, error) {
	if cfg == nil {
		return json.Marshal(cachedConfig{Found: false})
	}

	windows := make(map[int]cachedWindow, len(cfg.WeeklyWindows))
	for day, w := range cfg.WeeklyWindows {
		windows[int(day)] = cachedWindow{
			IsOpen:    w.IsOpen,
			StartTime: w.StartTime.String(),
			EndTime:   w.EndTime.String(),
		}
	}

	return json.Marshal(cachedConfig{
		Found:                    true,
		ID:                       cfg.ID,
		TenantID:                 cfg.TenantID,
		ResourceID:               cfg.ResourceID,
		SlotDurationMinutes:      cfg.SlotDurationMinutes,
		BreakBetweenSlotsMinutes: cfg.BreakBetweenSlotsMinutes,
		WeeklyWindows:            windows,
		CreatedAt:                cfg.CreatedAt,
		UpdatedAt:                cfg.UpdatedAt,
	})
}

func decode(raw []byte) (*domain.ScheduleConfig, bool, error) {
	var cached cachedConfig
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, err
	}
	if !cached.Found {
		return nil, false, nil
	}

	windows := make(map[time.Weekday]domain.DayWindow, len(cached.WeeklyWindows))
	for day, w := range cached.WeeklyWindows {
		windows[time.Weekday(day)] = domain.DayWindow{
			IsOpen:    w.IsOpen,
			StartTime: types.TimeString(w.StartTime),
			EndTime:   types.TimeString(w.EndTime),
		}
	}

	return &domain.ScheduleConfig{
		ID:                       cached.ID,
		TenantID:                 cached.TenantID,
		ResourceID:               cached.ResourceID,
		SlotDurationMinutes:      cached.SlotDurationMinutes,
		BreakBetweenSlotsMinutes: cached.BreakBetweenSlotsMinutes,
		WeeklyWindows:            windows,
		CreatedAt:                cached.CreatedAt,
		UpdatedAt:                cached.UpdatedAt,
	}, true, nil
}
