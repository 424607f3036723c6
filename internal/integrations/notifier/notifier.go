package notifier

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// DefaultPublishTimeout ограничение на одну публикацию
const DefaultPublishTimeout = 2 * time.Second

// Notifier отправляет события бронирований диспетчеру уведомлений
// Публикация best effort: ошибка только логируется и не откатывает изменение состояния.
type Notifier struct {
	publisher Publisher
	timeout   time.Duration
	log       Logger
	now       func() time.Time
}

// New создает Notifier поверх publisher
func New(publisher Publisher, timeout time.Duration, log Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Notifier{
		publisher: publisher,
		timeout:   timeout,
		log:       log,
		now:       time.Now,
	}
}

func (n *Notifier) ReservationCreated(ctx context.Context, r *domain.Reservation) {
	n.publish(ctx, KeyReservationCreated, r)
}

func (n *Notifier) ReservationConfirmed(ctx context.Context, r *domain.Reservation) {
	n.publish(ctx, KeyReservationConfirmed, r)
}

func (n *Notifier) ReservationCancelled(ctx context.Context, r *domain.Reservation) {
	n.publish(ctx, KeyReservationCancelled, r)
}

func (n *Notifier) ReservationExpired(ctx context.Context, r *domain.Reservation) {
	n.publish(ctx, KeyReservationExpired, r)
}

func (n *Notifier) publish(ctx context.Context, key string, r *domain.Reservation) {
	// Отмена входящего запроса не должна отменять уже решённое уведомление
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.publisher.PublishJSON(pubCtx, key, newEvent(key, r, n.now())); err != nil {
		n.log.Error("notifier: failed to publish %s for reservation id=%s: %v", key, r.ID, err)
		return
	}
	n.log.Info("notifier: published %s for reservation id=%s", key, r.ID)
}

// Nop используется, когда RabbitMQ отключён
type Nop struct{}

func (Nop) ReservationCreated(context.Context, *domain.Reservation)   {}
func (Nop) ReservationConfirmed(context.Context, *domain.Reservation) {}
func (Nop) ReservationCancelled(context.Context, *domain.Reservation) {}
func (Nop) ReservationExpired(context.Context, *domain.Reservation)   {}
