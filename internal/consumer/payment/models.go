package payment

// Ключи маршрутизации событий платёжного сервиса
const (
	KeyPaymentSucceeded = "payment.succeeded"
	KeyPaymentFailed    = "payment.failed"
)

// RoutingKeys ключи, на которые подписывается очередь
var RoutingKeys = []string{KeyPaymentSucceeded, KeyPaymentFailed}

// Event событие платёжного сервиса
type Event struct {
	Event   string    `json:"event"`   // "payment.succeeded" | "payment.failed"
	Version int       `json:"version"` // 1
	Data    EventData `json:"data"`
}

// EventData полезная нагрузка события
type EventData struct {
	PaymentID     string `json:"payment_id"`
	ReservationID string `json:"reservation_id"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
}
