package payment

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-BookingEngine/internal/service/reservations/models"
)

// DeliverySource источник сообщений из очереди
type DeliverySource interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

// ReservationService фиксирует результат оплаты
type ReservationService interface {
	RecordPaymentOutcome(ctx context.Context, id string, paid bool) (*models.ReservationResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
