package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations"
)

// Consumer обрабатывает результаты оплаты и переводит бронирования
//
// Подтверждение сообщений:
//   - успех, недопустимый переход или неизвестное бронирование - Ack
//   - битый JSON - Nack без возврата в очередь
//   - недоступность хранилища и прочие ошибки - Nack с возвратом в очередь
//     после паузы; пауза удваивается на каждой подряд идущей ошибке
type Consumer struct {
	source  DeliverySource
	service ReservationService
	logger  Logger

	minBackoff time.Duration
	maxBackoff time.Duration
	failures   int
	wait       func(ctx context.Context, d time.Duration)
}

const (
	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// NewConsumer создает consumer результатов оплаты
func NewConsumer(source DeliverySource, service ReservationService, logger Logger) *Consumer {
	return &Consumer{
		source:     source,
		service:    service,
		logger:     logger,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
		wait:       sleepContext,
	}
}

// Run начинает потребление; обработка идёт в отдельной горутине до закрытия канала
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.source.Deliveries(ctx)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			c.handle(ctx, d)
		}
		c.logger.Info("PaymentConsumer: deliveries channel closed")
	}()

	return nil
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var paid bool
	switch d.RoutingKey {
	case KeyPaymentSucceeded:
		paid = true
	case KeyPaymentFailed:
		paid = false
	default:
		_ = d.Ack(false)
		return
	}

	var evt Event
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		c.logger.Error("PaymentConsumer: unmarshal %s: %v", d.RoutingKey, err)
		_ = d.Nack(false, false)
		return
	}
	if evt.Data.ReservationID == "" {
		c.logger.Warn("PaymentConsumer: %s without reservation_id, payment=%s", d.RoutingKey, evt.Data.PaymentID)
		_ = d.Ack(false)
		return
	}

	_, err := c.service.RecordPaymentOutcome(ctx, evt.Data.ReservationID, paid)
	switch {
	case err == nil:
		c.failures = 0
		c.logger.Info("PaymentConsumer: %s applied to reservation id=%s", d.RoutingKey, evt.Data.ReservationID)
		_ = d.Ack(false)
	case errors.Is(err, reservations.ErrIllegalTransition),
		errors.Is(err, reservations.ErrReservationNotFound):
		// Повтор не поможет: бронирование уже завершено или не существует
		c.failures = 0
		c.logger.Warn("PaymentConsumer: %s ignored for reservation id=%s: %v", d.RoutingKey, evt.Data.ReservationID, err)
		_ = d.Ack(false)
	default:
		delay := c.nextBackoff()
		c.logger.Error("PaymentConsumer: %s failed for reservation id=%s, requeue in %s: %v",
			d.RoutingKey, evt.Data.ReservationID, delay, err)
		// Следующее сообщение не берётся, пока идёт пауза: обработка последовательная
		c.wait(ctx, delay)
		_ = d.Nack(false, true)
	}
}

// nextBackoff возвращает паузу перед возвратом сообщения в очередь
func (c *Consumer) nextBackoff() time.Duration {
	delay := c.minBackoff
	for i := 0; i < c.failures && delay < c.maxBackoff; i++ {
		delay *= 2
	}
	if delay > c.maxBackoff {
		delay = c.maxBackoff
	}
	c.failures++
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
