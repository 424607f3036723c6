package reservations

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	reservationRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/expiration"
	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations/models"
)

// Service сервис жизненного цикла бронирований
//
// Все переходы статуса выполняются условным обновлением в хранилище
// (WHERE status = <ожидаемый>), поэтому из двух параллельных переходов
// применяется только первый, а второй получает ErrIllegalTransition.
// Перед каждым чтением просроченные pending бронирования переводятся в expired.
type Service struct {
	reservationRepo ReservationRepository
	sweeper         Sweeper
	tenantClient    TenantDirectoryClient
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	sweeper Sweeper,
	tenantClient TenantDirectoryClient,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		sweeper:         sweeper,
		tenantClient:    tenantClient,
		notifier:        notifier,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронирование по ID для публичной страницы
func (s *Service) GetByID(ctx context.Context, id string) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%s", id)

	r, err := s.load(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservationPublic(r), nil
}

// GetForOwner получает бронирование по ID для владельца арендатора
func (s *Service) GetForOwner(ctx context.Context, id string, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetForOwner: fetching reservation id=%s for user=%d", id, userID)

	r, err := s.load(ctx, "GetForOwner", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnerAccess(ctx, r.TenantID, userID); err != nil {
		s.logger.Warn("GetForOwner: access denied for user=%d to reservation id=%s", userID, id)
		return nil, err
	}

	return models.FromDomainReservation(r), nil
}

// List получает бронирования арендатора с фильтрацией
// Доступно только владельцам арендатора
func (s *Service) List(ctx context.Context, req *models.ListReservationsRequest) (*models.ReservationListResponse, error) {
	logMsg := fmt.Sprintf("List: fetching reservations for tenant=%s, user=%d", req.TenantID, req.UserID)
	if req.ResourceID != nil {
		logMsg += fmt.Sprintf(", resource=%s", *req.ResourceID)
	}
	if req.DateFrom != nil && req.DateTo != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.DateFrom.Format(domain.DateFormat), req.DateTo.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, fmt.Errorf("%w: dateFrom is after dateTo", ErrInvalidInput)
	}

	if err := s.checkOwnerAccess(ctx, req.TenantID, req.UserID); err != nil {
		return nil, err
	}

	// Просроченные pending должны попасть в выдачу уже как expired
	if _, err := s.sweeper.Sweep(ctx, expiration.Scope{
		TenantID:   filter.TenantID,
		ResourceID: filter.ResourceID,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
	}); err != nil {
		s.logger.Error("List: sweep failed for tenant=%s: %v", req.TenantID, err)
	}

	reservations, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		return nil, s.repoError("List", err)
	}

	s.logger.Info("List: successfully fetched %d reservations for tenant=%s", len(reservations), req.TenantID)
	return models.FromDomainReservationList(reservations), nil
}

// Confirm подтверждает pending бронирование вручную (владелец арендатора)
func (s *Service) Confirm(ctx context.Context, id string, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("Confirm: confirming reservation id=%s by user=%d", id, userID)

	r, err := s.load(ctx, "Confirm", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnerAccess(ctx, r.TenantID, userID); err != nil {
		s.logger.Warn("Confirm: access denied for user=%d to reservation id=%s", userID, id)
		return nil, err
	}

	confirmed, err := s.confirm(ctx, r)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(confirmed), nil
}

// RecordPaymentOutcome фиксирует результат оплаты от платёжного сервиса
// paid=true подтверждает бронирование; paid=false помечает платёж как failed,
// бронирование остаётся pending до истечения срока.
func (s *Service) RecordPaymentOutcome(ctx context.Context, id string, paid bool) (*models.ReservationResponse, error) {
	s.logger.Info("RecordPaymentOutcome: reservation id=%s, paid=%t", id, paid)

	r, err := s.load(ctx, "RecordPaymentOutcome", id)
	if err != nil {
		return nil, err
	}

	if !r.RequiresPayment() {
		s.logger.Warn("RecordPaymentOutcome: reservation id=%s has no payment", id)
		return nil, fmt.Errorf("%w: reservation has no payment", ErrIllegalTransition)
	}

	if paid {
		confirmed, err := s.confirm(ctx, r)
		if err != nil {
			return nil, err
		}
		return models.FromDomainReservation(confirmed), nil
	}

	if r.Status != domain.StatusPending || r.Payment.Status != domain.PaymentPending {
		s.logger.Warn("RecordPaymentOutcome: reservation id=%s cannot record failure, status=%s, payment=%s",
			id, r.Status, r.Payment.Status)
		return nil, ErrIllegalTransition
	}

	updated, err := s.reservationRepo.MarkPaymentFailed(ctx, id, s.timeProvider.Now())
	if err != nil {
		if errors.Is(err, reservationRepo.ErrStatusChanged) {
			return nil, ErrIllegalTransition
		}
		return nil, s.repoError("RecordPaymentOutcome", err)
	}

	s.logger.Info("RecordPaymentOutcome: payment failed for reservation id=%s, waiting for expiry", id)
	return models.FromDomainReservation(updated), nil
}

// CancelByCustomer отменяет бронирование по запросу клиента
// Клиент подтверждает бронирование номером телефона, указанным при создании
func (s *Service) CancelByCustomer(ctx context.Context, id string, req *models.CustomerCancelRequest) (*models.ReservationResponse, error) {
	s.logger.Info("CancelByCustomer: cancelling reservation id=%s", id)

	if err := validateReason(req.Reason); err != nil {
		return nil, err
	}

	r, err := s.load(ctx, "CancelByCustomer", id)
	if err != nil {
		return nil, err
	}

	if !domain.SamePhone(r.Customer.Phone, req.Phone) {
		s.logger.Warn("CancelByCustomer: phone mismatch for reservation id=%s", id)
		return nil, ErrAccessDenied
	}

	cancelled, err := s.cancel(ctx, r, domain.CancelledByCustomer, req.Reason)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservationPublic(cancelled), nil
}

// CancelByOwner отменяет бронирование по решению владельца арендатора
func (s *Service) CancelByOwner(ctx context.Context, id string, req *models.OwnerCancelRequest) (*models.ReservationResponse, error) {
	s.logger.Info("CancelByOwner: cancelling reservation id=%s by user=%d", id, req.UserID)

	if err := validateReason(req.Reason); err != nil {
		return nil, err
	}

	r, err := s.load(ctx, "CancelByOwner", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnerAccess(ctx, r.TenantID, req.UserID); err != nil {
		s.logger.Warn("CancelByOwner: access denied for user=%d to reservation id=%s", req.UserID, id)
		return nil, err
	}

	cancelled, err := s.cancel(ctx, r, domain.CancelledByOwner, req.Reason)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(cancelled), nil
}

// MarkExpirationNotified отмечает, что владелец сообщил клиенту об истечении бронирования
// Флаг монотонный: повторный вызов ничего не меняет и завершается успешно
func (s *Service) MarkExpirationNotified(ctx context.Context, id string, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("MarkExpirationNotified: reservation id=%s by user=%d", id, userID)

	r, err := s.load(ctx, "MarkExpirationNotified", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnerAccess(ctx, r.TenantID, userID); err != nil {
		return nil, err
	}

	if r.Status != domain.StatusExpired {
		s.logger.Warn("MarkExpirationNotified: reservation id=%s is %s", id, r.Status)
		return nil, ErrNotExpired
	}

	if r.ExpirationNotificationSent {
		return models.FromDomainReservation(r), nil
	}

	updated, err := s.reservationRepo.MarkExpirationNotified(ctx, id, s.timeProvider.Now())
	if err != nil {
		if errors.Is(err, reservationRepo.ErrStatusChanged) {
			return nil, ErrNotExpired
		}
		return nil, s.repoError("MarkExpirationNotified", err)
	}

	s.logger.Info("MarkExpirationNotified: reservation id=%s marked as notified", id)
	return models.FromDomainReservation(updated), nil
}

// load истекает бронирование, если оно просрочено, и читает его
func (s *Service) load(ctx context.Context, op, id string) (*domain.Reservation, error) {
	if _, err := s.sweeper.SweepOne(ctx, id); err != nil {
		s.logger.Error("%s: sweep failed for reservation id=%s: %v", op, id, err)
	}

	r, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%s not found", op, id)
			return nil, ErrReservationNotFound
		}
		return nil, s.repoError(op, err)
	}

	return r, nil
}

func (s *Service) confirm(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	if !r.CanBeConfirmed() {
		s.logger.Warn("confirm: reservation id=%s cannot be confirmed, status=%s", r.ID, r.Status)
		return nil, ErrIllegalTransition
	}

	confirmed, err := s.reservationRepo.Confirm(ctx, r.ID, s.timeProvider.Now())
	if err != nil {
		if errors.Is(err, reservationRepo.ErrStatusChanged) {
			// Либо параллельный переход, либо срок оплаты истёк между чтением и обновлением
			if _, sweepErr := s.sweeper.SweepOne(ctx, r.ID); sweepErr != nil {
				s.logger.Error("confirm: sweep failed for reservation id=%s: %v", r.ID, sweepErr)
			}
			s.logger.Warn("confirm: reservation id=%s changed concurrently", r.ID)
			return nil, ErrIllegalTransition
		}
		return nil, s.repoError("confirm", err)
	}

	s.logger.Info("confirm: reservation id=%s confirmed", r.ID)
	s.notifier.ReservationConfirmed(ctx, confirmed)

	return confirmed, nil
}

func (s *Service) cancel(ctx context.Context, r *domain.Reservation, by domain.CancelledBy, reason *string) (*domain.Reservation, error) {
	if !r.CanBeCancelled() {
		s.logger.Warn("cancel: reservation id=%s cannot be cancelled, status=%s", r.ID, r.Status)
		return nil, ErrIllegalTransition
	}

	cancelled, err := s.reservationRepo.Cancel(ctx, r.ID, r.Status, by, reason, s.timeProvider.Now())
	if err != nil {
		if errors.Is(err, reservationRepo.ErrStatusChanged) {
			s.logger.Warn("cancel: reservation id=%s changed concurrently", r.ID)
			return nil, ErrIllegalTransition
		}
		return nil, s.repoError("cancel", err)
	}

	s.logger.Info("cancel: reservation id=%s cancelled by %s", r.ID, by)
	s.notifier.ReservationCancelled(ctx, cancelled)

	return cancelled, nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем арендатора
func (s *Service) checkOwnerAccess(ctx context.Context, tenantID string, userID int64) error {
	if userID <= 0 {
		return ErrAccessDenied
	}

	tenant, err := s.tenantClient.GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantdirectory.ErrTenantNotFound) {
			return ErrTenantNotFound
		}
		s.logger.Error("checkOwnerAccess: failed to get tenant id=%s: %v", tenantID, err)
		return fmt.Errorf("%w: failed to get tenant: %v", ErrInternal, err)
	}

	if !tenant.IsOwner(userID) {
		return ErrAccessDenied
	}

	return nil
}

func (s *Service) repoError(op string, err error) error {
	if errors.Is(err, reservationRepo.ErrStoreUnavailable) {
		s.logger.Error("%s: store unavailable: %v", op, err)
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func validateReason(reason *string) error {
	if reason != nil && utf8.RuneCountInString(*reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}
	return nil
}
