package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	reservationRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/expiration"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	scheduleStore   ScheduleStore
	tenantClient    TenantDirectoryClient
	checker         AvailabilityChecker
	sweeper         Sweeper
	notifier        Notifier
	metrics         Metrics
	txManager       TransactionManager
	timeProvider    TimeProvider
	newID           func() string
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	scheduleStore ScheduleStore,
	tenantClient TenantDirectoryClient,
	checker AvailabilityChecker,
	sweeper Sweeper,
	notifier Notifier,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		scheduleStore:   scheduleStore,
		tenantClient:    tenantClient,
		checker:         checker,
		sweeper:         sweeper,
		notifier:        notifier,
		metrics:         metrics,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		newID:           uuid.NewString,
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка слота и вставка выполняются в сериализуемой транзакции под advisory блокировкой
// (tenant, resource, date), поэтому из параллельных запросов на один слот побеждает один.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: tenant=%s, resource=%s, date=%s, time=%s, services=%v",
		req.TenantSlug, req.ResourceID, req.Date, req.StartTime, req.ServiceIDs)

	// 1. Валидация входных данных
	date, start, verr := validateRequest(req)
	if verr != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", verr)
		return nil, verr
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Определяем арендатора по slug страницы
	tenant, err := uc.tenantClient.GetTenantBySlug(ctx, req.TenantSlug)
	if err != nil {
		if errors.Is(err, tenantdirectory.ErrTenantNotFound) {
			uc.logger.Warn("CreateReservation: tenant slug=%s not found", req.TenantSlug)
			return nil, ErrTenantNotFound
		}
		uc.logger.Error("CreateReservation: failed to get tenant slug=%s: %v", req.TenantSlug, err)
		return nil, fmt.Errorf("%w: failed to get tenant: %v", ErrInternal, err)
	}

	// 4. tenantId от клиента никогда не заменяет арендатора страницы
	if req.TenantID != nil && *req.TenantID != tenant.ID {
		uc.logger.Warn("CreateReservation: claimed tenant=%s does not match tenant=%s", *req.TenantID, tenant.ID)
		return nil, ErrIdentityMismatch
	}

	// 5. Ресурс должен принадлежать арендатору и быть активным
	resource, ok := tenant.FindResource(req.ResourceID)
	if !ok || !resource.IsActive {
		uc.logger.Warn("CreateReservation: resource id=%s not found in tenant=%s", req.ResourceID, tenant.ID)
		return nil, ErrResourceNotFound
	}

	// 6. Количество гостей имеет смысл только для площадки
	partySize := 1
	if resource.IsVenue() {
		limit := resource.PartySizeLimit(domain.DefaultMaxPartySize)
		if req.Customer.PartySize < 1 || req.Customer.PartySize > limit {
			verr := fieldError(fieldPartySize, fmt.Sprintf("party size must be between 1 and %d", limit))
			uc.logger.Warn("CreateReservation: validation failed: %v", verr)
			return nil, verr
		}
		partySize = req.Customer.PartySize
	}

	// 7. Снимок услуг из каталога
	services, err := snapshotServices(tenant, resource.ID, req.ServiceIDs)
	if err != nil {
		uc.logger.Warn("CreateReservation: %v", err)
		return nil, err
	}
	servicesDuration := 0
	totalPrice := decimal.Zero
	for _, s := range services {
		servicesDuration += s.DurationMinutes
		totalPrice = totalPrice.Add(s.Price)
	}

	// 8. Расписание ресурса (с учетом иерархии) и проверка выбранного времени
	cfg, err := uc.scheduleStore.GetWithHierarchy(ctx, tenant.ID, resource.ID)
	if err != nil && !errors.Is(err, scheduleRepo.ErrConfigNotFound) {
		uc.logger.Error("CreateReservation: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrStoreUnavailable, err)
	}
	duration, verr := resolveSlot(cfg, resource, date, start, servicesDuration, now)
	if verr != nil {
		uc.logger.Warn("CreateReservation: slot validation failed: %v", verr)
		return nil, verr
	}

	reservation := uc.buildReservation(tenant, resource.ID, date, start, duration, servicesDuration, totalPrice, services, req.Customer, partySize, now)

	// 9. Проверка слота и вставка в сериализуемой транзакции
	var expired []*domain.Reservation
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 9.1. Сериализуем создание на (tenant, resource, date)
		if err := uc.reservationRepo.LockSlot(txCtx, tenant.ID, resource.ID, date); err != nil {
			return fmt.Errorf("lock slot: %w", err)
		}

		// 9.2. Просроченные pending не должны занимать слот
		// При повторе транзакции берём только результат последней попытки
		swept, err := uc.sweeper.Expire(txCtx, expiration.Scope{
			TenantID:   tenant.ID,
			ResourceID: &resource.ID,
			DateFrom:   &date,
			DateTo:     &date,
		})
		if err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		expired = swept

		// 9.3. Проверяем пересечения (строки блокируются FOR UPDATE)
		available, err := uc.checker.Check(txCtx, tenant.ID, resource.ID, date, start, duration)
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if !available {
			return ErrSlotConflict
		}

		// 9.4. Сохраняем бронирование
		if err := uc.reservationRepo.Create(txCtx, reservation); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, uc.txError(reservation, err)
	}

	// События об истечении только после фиксации: при откате UPDATE не применён
	uc.sweeper.Publish(ctx, expired)

	uc.logger.Info("CreateReservation: successfully created reservation id=%s, status=%s",
		reservation.ID, reservation.Status)

	// 10. Уведомление и метрики после фиксации транзакции
	uc.notifier.ReservationCreated(ctx, reservation)
	if uc.metrics != nil {
		uc.metrics.ReservationCreated(string(reservation.Status))
	}

	return toResponse(reservation), nil
}

func (uc *UseCase) buildReservation(
	tenant *tenantdirectory.Tenant,
	resourceID string,
	date time.Time,
	start types.TimeString,
	occupiedMinutes int,
	servicesDuration int,
	totalPrice decimal.Decimal,
	services []domain.ServiceSelection,
	customer Customer,
	partySize int,
	now time.Time,
) *domain.Reservation {
	// resolveSlot уже гарантировал, что конец не выходит за полночь
	// Для площадки занятый интервал длиннее суммы услуг
	end, _ := start.AddMinutes(occupiedMinutes)

	r := &domain.Reservation{
		ID:                   uc.newID(),
		TenantID:             tenant.ID,
		ResourceID:           resourceID,
		Date:                 date,
		StartTime:            start,
		EndTime:              end,
		TotalDurationMinutes: servicesDuration,
		TotalPrice:           totalPrice,
		Services:             services,
		Customer: domain.Customer{
			Name:      normalizeName(customer.Name),
			Phone:     customer.Phone,
			Email:     customer.Email,
			Notes:     customer.Notes,
			PartySize: partySize,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if tenant.RequiresPayment {
		expiresAt := now.Add(domain.PaymentHoldMinutes * time.Minute)
		r.Status = domain.StatusPending
		r.ExpiresAt = &expiresAt
		r.Payment = &domain.Payment{
			Status:   domain.PaymentPending,
			Amount:   totalPrice,
			Currency: tenant.Currency,
		}
	} else {
		r.Status = domain.StatusConfirmed
		r.ConfirmedAt = &now
	}

	return r
}

// txError приводит ошибку транзакции к ошибкам usecase
func (uc *UseCase) txError(r *domain.Reservation, err error) error {
	if errors.Is(err, ErrSlotConflict) ||
		errors.Is(err, reservationRepo.ErrSlotConflict) ||
		errors.Is(reservationRepo.Classify(err), reservationRepo.ErrSlotConflict) {
		uc.logger.Warn("CreateReservation: slot %s %s-%s on resource=%s is taken",
			r.Date.Format(domain.DateFormat), r.StartTime, r.EndTime, r.ResourceID)
		if uc.metrics != nil {
			uc.metrics.SlotConflict()
		}
		return ErrSlotConflict
	}

	if errors.Is(err, reservationRepo.ErrStoreUnavailable) ||
		errors.Is(reservationRepo.Classify(err), reservationRepo.ErrStoreUnavailable) {
		uc.logger.Error("CreateReservation: store unavailable: %v", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	uc.logger.Error("CreateReservation: transaction failed: %v", err)
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func toResponse(r *domain.Reservation) *Response {
	resp := &Response{
		ReservationID:        r.ID,
		TenantID:             r.TenantID,
		ResourceID:           r.ResourceID,
		Status:               string(r.Status),
		Date:                 r.Date,
		StartTime:            r.StartTime,
		EndTime:              r.EndTime,
		TotalDurationMinutes: r.TotalDurationMinutes,
		TotalPrice:           r.TotalPrice,
		CreatedAt:            r.CreatedAt,
	}

	if r.Payment != nil && r.ExpiresAt != nil {
		resp.PaymentPrompt = &PaymentPrompt{
			Amount:    r.Payment.Amount,
			Currency:  r.Payment.Currency,
			ExpiresAt: *r.ExpiresAt,
		}
	}

	return resp
}
