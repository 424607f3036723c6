package reservation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

const tableName = "reservations"

var columns = []string{
	"id",
	"tenant_id",
	"resource_id",
	"booking_date",
	"start_minute",
	"end_minute",
	"total_duration_minutes",
	"total_price",
	"services",
	"customer_name",
	"customer_phone",
	"customer_email",
	"customer_notes",
	"party_size",
	"status",
	"payment_status",
	"payment_amount",
	"payment_currency",
	"expires_at",
	"expiration_notification_sent",
	"confirmed_at",
	"cancelled_at",
	"cancelled_by",
	"cancellation_reason",
	"created_at",
	"updated_at",
}

var returningAll = "RETURNING " + strings.Join(columns, ", ")

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое бронирование
// Пересечение с активным бронированием того же ресурса отклоняется ограничением
// reservations_no_overlap и возвращается как ErrSlotConflict.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	interval, err := res.Interval()
	if err != nil {
		return fmt.Errorf("%w: Create - interval: %v", ErrBuildQuery, err)
	}

	services, err := marshalServices(res.Services)
	if err != nil {
		return fmt.Errorf("%w: Create - marshal services: %v", ErrBuildQuery, err)
	}

	var paymentStatus, paymentCurrency *string
	var paymentAmount decimal.NullDecimal
	if res.Payment != nil {
		status := string(res.Payment.Status)
		paymentStatus = &status
		paymentCurrency = &res.Payment.Currency
		paymentAmount = decimal.NullDecimal{Decimal: res.Payment.Amount, Valid: true}
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(columns...).
		Values(
			res.ID,
			res.TenantID,
			res.ResourceID,
			res.Date,
			interval.Start,
			interval.End,
			res.TotalDurationMinutes,
			res.TotalPrice,
			services,
			res.Customer.Name,
			res.Customer.Phone,
			res.Customer.Email,
			res.Customer.Notes,
			res.Customer.PartySize,
			string(res.Status),
			paymentStatus,
			paymentAmount,
			paymentCurrency,
			res.ExpiresAt,
			res.ExpirationNotificationSent,
			res.ConfirmedAt,
			res.CancelledAt,
			cancelledByValue(res.CancelledBy),
			res.CancellationReason,
			res.CreatedAt,
			res.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", classify(err, ErrExecQuery), err)
	}

	return nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", classify(err, ErrScanRow), err)
	}

	return res, nil
}

// List получает бронирования арендатора с фильтрацией
// Для одной даты сортирует по времени начала, для периода - по дате и времени (сначала новые).
// Внутри транзакции при выборке на одну дату строки блокируются (FOR UPDATE).
func (r *Repository) List(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"tenant_id": filter.TenantID})

	if filter.ResourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.DateFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.DateTo})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if filter.ActiveOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)})
	}

	if filter.IsSingleDay() {
		selectBuilder = selectBuilder.OrderBy("start_minute ASC")
		if dbmetrics.IsInTransaction(ctx) {
			selectBuilder = selectBuilder.Suffix("FOR UPDATE")
		}
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC", "start_minute DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", classify(err, ErrExecQuery), err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetActiveForDay получает активные (pending, confirmed) бронирования ресурса на дату
func (r *Repository) GetActiveForDay(ctx context.Context, tenantID, resourceID string, date time.Time) ([]*domain.Reservation, error) {
	day := truncateDate(date)
	return r.List(ctx, domain.ReservationsFilter{
		TenantID:   tenantID,
		ResourceID: &resourceID,
		DateFrom:   &day,
		DateTo:     &day,
		ActiveOnly: true,
	})
}

// LockSlot берёт транзакционную advisory блокировку на ресурс и дату
// Блокировка снимается при завершении транзакции
func (r *Repository) LockSlot(ctx context.Context, tenantID, resourceID string, date time.Time) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return ErrNotInTransaction
	}

	key := fmt.Sprintf("%s|%s|%s", tenantID, resourceID, date.Format(domain.DateFormat))
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("%w: LockSlot - advisory lock: %v", classify(err, ErrExecQuery), err)
	}

	return nil
}

// Confirm переводит pending бронирование в confirmed
// Просроченное бронирование не подтверждается. Платёж (если есть) становится paid.
func (r *Repository) Confirm(ctx context.Context, id string, now time.Time) (*domain.Reservation, error) {
	builder := psqlbuilder.Update(tableName).
		Set("status", string(domain.StatusConfirmed)).
		Set("expires_at", nil).
		Set("confirmed_at", now).
		Set("payment_status", squirrel.Expr("CASE WHEN payment_status IS NULL THEN NULL ELSE ? END", string(domain.PaymentPaid))).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusPending)}).
		Where(notOverdue(now))

	return r.updateOne(ctx, "Confirm", builder)
}

// Cancel переводит бронирование из expected в cancelled
// Неоплаченный платёж становится failed
func (r *Repository) Cancel(
	ctx context.Context,
	id string,
	expected domain.ReservationStatus,
	by domain.CancelledBy,
	reason *string,
	now time.Time,
) (*domain.Reservation, error) {
	builder := psqlbuilder.Update(tableName).
		Set("status", string(domain.StatusCancelled)).
		Set("cancelled_at", now).
		Set("cancelled_by", string(by)).
		Set("cancellation_reason", reason).
		Set("expires_at", nil).
		Set("payment_status", failPendingPayment()).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": string(expected)})

	if expected == domain.StatusPending {
		builder = builder.Where(notOverdue(now))
	}

	return r.updateOne(ctx, "Cancel", builder)
}

// MarkPaymentFailed отмечает неуспешную оплату; бронирование остаётся pending до истечения срока
func (r *Repository) MarkPaymentFailed(ctx context.Context, id string, now time.Time) (*domain.Reservation, error) {
	builder := psqlbuilder.Update(tableName).
		Set("payment_status", string(domain.PaymentFailed)).
		Set("updated_at", now).
		Where(squirrel.Eq{
			"id":             id,
			"status":         string(domain.StatusPending),
			"payment_status": string(domain.PaymentPending),
		})

	return r.updateOne(ctx, "MarkPaymentFailed", builder)
}

// MarkExpirationNotified выставляет флаг уведомления об истечении
// Флаг монотонный: повторная установка ничего не меняет
func (r *Repository) MarkExpirationNotified(ctx context.Context, id string, now time.Time) (*domain.Reservation, error) {
	builder := psqlbuilder.Update(tableName).
		Set("expiration_notification_sent", true).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusExpired)})

	return r.updateOne(ctx, "MarkExpirationNotified", builder)
}

// ExpireScope область действия очистки просроченных бронирований
// Пустые поля не ограничивают выборку
type ExpireScope struct {
	ReservationID *string
	TenantID      *string
	ResourceID    *string
	DateFrom      *time.Time
	DateTo        *time.Time
}

// ExpireOverdue переводит просроченные pending бронирования в expired одним условным UPDATE
// Возвращает только строки, переведённые этим вызовом
func (r *Repository) ExpireOverdue(ctx context.Context, scope ExpireScope, now time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(tableName).
		Set("status", string(domain.StatusExpired)).
		Set("payment_status", failPendingPayment()).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": string(domain.StatusPending)}).
		Where(squirrel.NotEq{"expires_at": nil}).
		Where(squirrel.Lt{"expires_at": now})

	if scope.ReservationID != nil {
		builder = builder.Where(squirrel.Eq{"id": *scope.ReservationID})
	}
	if scope.TenantID != nil {
		builder = builder.Where(squirrel.Eq{"tenant_id": *scope.TenantID})
	}
	if scope.ResourceID != nil {
		builder = builder.Where(squirrel.Eq{"resource_id": *scope.ResourceID})
	}
	if scope.DateFrom != nil {
		builder = builder.Where(squirrel.GtOrEq{"booking_date": *scope.DateFrom})
	}
	if scope.DateTo != nil {
		builder = builder.Where(squirrel.LtOrEq{"booking_date": *scope.DateTo})
	}

	query, args, err := builder.Suffix(returningAll).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ExpireOverdue - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpireOverdue - execute update: %v", classify(err, ErrExecQuery), err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// updateOne выполняет условный UPDATE ... RETURNING для одной строки
// Отсутствие строки означает, что условие по статусу не выполнено
func (r *Repository) updateOne(ctx context.Context, op string, builder squirrel.UpdateBuilder) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.Suffix(returningAll).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute update: %v", classify(err, ErrExecQuery), op, err)
	}

	return res, nil
}

func notOverdue(now time.Time) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"expires_at": nil},
		squirrel.GtOrEq{"expires_at": now},
	}
}

func failPendingPayment() squirrel.Sqlizer {
	return squirrel.Expr("CASE WHEN payment_status = ? THEN ? ELSE payment_status END",
		string(domain.PaymentPending), string(domain.PaymentFailed))
}

// rowScanner общий интерфейс для *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res             domain.Reservation
		startMinute     int
		endMinute       int
		servicesRaw     []byte
		email, notes    sql.NullString
		status          string
		paymentStatus   sql.NullString
		paymentAmount   decimal.NullDecimal
		paymentCurrency sql.NullString
		expiresAt       sql.NullTime
		confirmedAt     sql.NullTime
		cancelledAt     sql.NullTime
		cancelledBy     sql.NullString
		reason          sql.NullString
	)

	err := row.Scan(
		&res.ID,
		&res.TenantID,
		&res.ResourceID,
		&res.Date,
		&startMinute,
		&endMinute,
		&res.TotalDurationMinutes,
		&res.TotalPrice,
		&servicesRaw,
		&res.Customer.Name,
		&res.Customer.Phone,
		&email,
		&notes,
		&res.Customer.PartySize,
		&status,
		&paymentStatus,
		&paymentAmount,
		&paymentCurrency,
		&expiresAt,
		&res.ExpirationNotificationSent,
		&confirmedAt,
		&cancelledAt,
		&cancelledBy,
		&reason,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if res.StartTime, err = types.TimeStringFromMinutes(startMinute); err != nil {
		return nil, err
	}
	if res.EndTime, err = types.TimeStringFromMinutes(endMinute); err != nil {
		return nil, err
	}
	if res.Services, err = unmarshalServices(servicesRaw); err != nil {
		return nil, err
	}

	res.Status = domain.ReservationStatus(status)
	res.Customer.Email = nullStringPtr(email)
	res.Customer.Notes = nullStringPtr(notes)
	res.CancellationReason = nullStringPtr(reason)
	res.ExpiresAt = nullTimePtr(expiresAt)
	res.ConfirmedAt = nullTimePtr(confirmedAt)
	res.CancelledAt = nullTimePtr(cancelledAt)

	if cancelledBy.Valid {
		by := domain.CancelledBy(cancelledBy.String)
		res.CancelledBy = &by
	}

	if paymentStatus.Valid {
		res.Payment = &domain.Payment{
			Status:   domain.PaymentStatus(paymentStatus.String),
			Amount:   paymentAmount.Decimal,
			Currency: paymentCurrency.String,
		}
	}

	return &res, nil
}

func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows iteration: %v", classify(err, ErrScanRow), err)
	}

	return reservations, nil
}

// serviceRecord представление снимка услуги в колонке services (JSONB)
type serviceRecord struct {
	ServiceID       string          `json:"service_id"`
	Name            string          `json:"name"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
}

func marshalServices(services []domain.ServiceSelection) ([]byte, error) {
	records := make([]serviceRecord, len(services))
	for i, s := range services {
		records[i] = serviceRecord{
			ServiceID:       s.ServiceID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		}
	}
	return json.Marshal(records)
}

func unmarshalServices(raw []byte) ([]domain.ServiceSelection, error) {
	if len(raw) == 0 {
		return []domain.ServiceSelection{}, nil
	}

	var records []serviceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	services := make([]domain.ServiceSelection, len(records))
	for i, r := range records {
		services[i] = domain.ServiceSelection{
			ServiceID:       r.ServiceID,
			Name:            r.Name,
			DurationMinutes: r.DurationMinutes,
			Price:           r.Price,
		}
	}
	return services, nil
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

func cancelledByValue(by *domain.CancelledBy) *string {
	if by == nil {
		return nil
	}
	s := string(*by)
	return &s
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
