package expiration

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	reservationRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/reservation"
)

// Scope область очистки; пустые поля не ограничивают выборку
type Scope struct {
	TenantID   string
	ResourceID *string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Sweeper переводит просроченные pending бронирования в expired
//
// Переход выполняется одним условным UPDATE, поэтому повторные и параллельные
// вызовы безопасны: каждое бронирование истекает ровно один раз, и событие
// reservation.expired публикуется только вызовом, который его перевёл.
type Sweeper struct {
	repo         ReservationRepository
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewSweeper создает новый экземпляр Sweeper
func NewSweeper(repo ReservationRepository, notifier Notifier, metrics Metrics, logger Logger) *Sweeper {
	return &Sweeper{
		repo:         repo,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Sweep истекает просроченные бронирования в области scope
// Возвращает бронирования, переведённые этим вызовом
func (s *Sweeper) Sweep(ctx context.Context, scope Scope) ([]*domain.Reservation, error) {
	return s.expire(ctx, toRepoScope(scope))
}

// SweepOne истекает одно бронирование, если оно просрочено
func (s *Sweeper) SweepOne(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	expired, err := s.expire(ctx, reservationRepo.ExpireScope{ReservationID: &reservationID})
	if err != nil || len(expired) == 0 {
		return nil, err
	}
	return expired[0], nil
}

// Run периодически очищает все просроченные бронирования до отмены ctx
// Нужен, чтобы события об истечении уходили даже без чтений
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Sweeper: started with interval=%s", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, Scope{}); err != nil {
				s.logger.Error("Sweeper: periodic sweep failed: %v", err)
			}
		}
	}
}

// Expire переводит просроченные бронирования без уведомлений и метрик
// Используется внутри транзакции: после фиксации вызывающий передаёт результат в Publish
func (s *Sweeper) Expire(ctx context.Context, scope Scope) ([]*domain.Reservation, error) {
	return s.expireRows(ctx, toRepoScope(scope))
}

// Publish отправляет события reservation.expired и обновляет метрики
func (s *Sweeper) Publish(ctx context.Context, expired []*domain.Reservation) {
	if len(expired) == 0 {
		return
	}

	if s.metrics != nil {
		s.metrics.Expired(len(expired))
	}

	for _, r := range expired {
		s.logger.Info("Sweeper: reservation id=%s expired (tenant=%s, resource=%s, date=%s %s)",
			r.ID, r.TenantID, r.ResourceID, r.Date.Format(domain.DateFormat), r.StartTime)
		s.notifier.ReservationExpired(ctx, r)
	}
}

func (s *Sweeper) expire(ctx context.Context, scope reservationRepo.ExpireScope) ([]*domain.Reservation, error) {
	expired, err := s.expireRows(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.Publish(ctx, expired)
	return expired, nil
}

func (s *Sweeper) expireRows(ctx context.Context, scope reservationRepo.ExpireScope) ([]*domain.Reservation, error) {
	expired, err := s.repo.ExpireOverdue(ctx, scope, s.timeProvider.Now())
	if err != nil {
		return nil, fmt.Errorf("expire overdue reservations: %w", err)
	}
	return expired, nil
}

func toRepoScope(scope Scope) reservationRepo.ExpireScope {
	repoScope := reservationRepo.ExpireScope{
		ResourceID: scope.ResourceID,
		DateFrom:   scope.DateFrom,
		DateTo:     scope.DateTo,
	}
	if scope.TenantID != "" {
		repoScope.TenantID = &scope.TenantID
	}
	return repoScope
}
