package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

const tableName = "schedule_configs"

var columns = []string{
	"id",
	"tenant_id",
	"resource_id",
	"slot_duration_minutes",
	"break_between_slots_minutes",
	"weekly_windows",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с конфигурацией расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByTenantAndResource получает конфигурацию ровно для указанного уровня
// resourceID == nil - общая конфигурация арендатора
func (r *Repository) GetByTenantAndResource(ctx context.Context, tenantID string, resourceID *string) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"tenant_id": tenantID})

	// Фильтрация по resource_id (NULL или конкретное значение)
	if resourceID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *resourceID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTenantAndResource - build select query: %v", ErrBuildQuery, err)
	}

	cfg, err := scanConfig(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByTenantAndResource - scan config: %w", err)
	}

	return cfg, nil
}

// GetWithHierarchy получает конфигурацию с учетом иерархии приоритетов:
// 1. Конфигурация конкретного ресурса (tenantID, resourceID)
// 2. Общая конфигурация арендатора (tenantID, NULL)
func (r *Repository) GetWithHierarchy(ctx context.Context, tenantID, resourceID string) (*domain.ScheduleConfig, error) {
	cfg, err := r.GetByTenantAndResource(ctx, tenantID, &resourceID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	return r.GetByTenantAndResource(ctx, tenantID, nil)
}

// Upsert создаёт или заменяет конфигурацию для уровня (tenant, resource)
func (r *Repository) Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	windows, err := marshalWindows(cfg.WeeklyWindows)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - marshal windows: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"tenant_id",
			"resource_id",
			"slot_duration_minutes",
			"break_between_slots_minutes",
			"weekly_windows",
		).
		Values(
			cfg.TenantID,
			cfg.ResourceID,
			cfg.SlotDurationMinutes,
			cfg.BreakBetweenSlotsMinutes,
			windows,
		).
		Suffix(`ON CONFLICT (tenant_id, (COALESCE(resource_id, ''))) DO UPDATE SET
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			break_between_slots_minutes = EXCLUDED.break_between_slots_minutes,
			weekly_windows = EXCLUDED.weekly_windows,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&cfg.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return cfg, nil
}

func scanConfig(row *sql.Row) (*domain.ScheduleConfig, error) {
	var cfg domain.ScheduleConfig
	var resourceID sql.NullString
	var windowsRaw []byte
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&cfg.ID,
		&cfg.TenantID,
		&resourceID,
		&cfg.SlotDurationMinutes,
		&cfg.BreakBetweenSlotsMinutes,
		&windowsRaw,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanRow, err)
	}

	if resourceID.Valid {
		id := resourceID.String
		cfg.ResourceID = &id
	}

	cfg.WeeklyWindows, err = unmarshalWindows(windowsRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindows, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return &cfg, nil
}
