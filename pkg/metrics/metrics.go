package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus метрик сервиса
// Все методы записи безопасны для nil-получателя: при выключенных метриках передаётся nil
type Metrics struct {
	serviceName string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec

	ReservationsCreated    *prometheus.CounterVec
	ReservationConflicts   *prometheus.CounterVec
	ReservationsExpired    *prometheus.CounterVec
	AvailabilityFailClosed *prometheus.CounterVec
}

// New создаёт метрики в глобальном регистре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создаёт метрики в указанном регистре (используется в тестах)
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),

		DBOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),

		DBInUse: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		DBIdle: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		DBWaitCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		ReservationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Reservations created, by initial status",
		}, []string{"service", "status"}),

		ReservationConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_conflicts_total",
			Help: "Create requests rejected because the slot was taken",
		}, []string{"service"}),

		ReservationsExpired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reservations_expired_total",
			Help: "Pending reservations moved to expired by the sweeper",
		}, []string{"service"}),

		AvailabilityFailClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_fail_closed_total",
			Help: "Availability checks answered unavailable because the store failed",
		}, []string{"service"}),
	}
}

// ServiceName имя сервиса для label "service"
func (m *Metrics) ServiceName() string {
	if m == nil {
		return ""
	}
	return m.serviceName
}

// ReservationCreated учитывает созданное бронирование
func (m *Metrics) ReservationCreated(status string) {
	if m == nil {
		return
	}
	m.ReservationsCreated.WithLabelValues(m.serviceName, status).Inc()
}

// SlotConflict учитывает отказ из-за занятого слота
func (m *Metrics) SlotConflict() {
	if m == nil {
		return
	}
	m.ReservationConflicts.WithLabelValues(m.serviceName).Inc()
}

// Expired учитывает бронирования, переведённые в expired
func (m *Metrics) Expired(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.ReservationsExpired.WithLabelValues(m.serviceName).Add(float64(count))
}

// FailClosed учитывает проверку доступности, закрытую из-за ошибки хранилища
func (m *Metrics) FailClosed() {
	if m == nil {
		return
	}
	m.AvailabilityFailClosed.WithLabelValues(m.serviceName).Inc()
}
