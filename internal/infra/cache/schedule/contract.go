package schedule

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Store источник конфигураций расписания (репозиторий PostgreSQL)
type Store interface {
	GetByTenantAndResource(ctx context.Context, tenantID string, resourceID *string) (*domain.ScheduleConfig, error)
	Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error)
}

// RedisClient подмножество *redis.Client, используемое кэшем
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Logger interface {
	Warn(format string, v ...interface{})
}
