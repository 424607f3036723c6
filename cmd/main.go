package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelReservationHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/cancel_reservation"
	checkAvailabilityHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/check_availability"
	confirmReservationHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/confirm_reservation"
	createReservationHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/create_reservation"
	getAvailableSlotsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_available_slots"
	getOwnerReservationHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_owner_reservation"
	getReservationHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_reservation"
	getScheduleHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_schedule"
	healthHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/health"
	listReservationsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/list_reservations"
	markExpirationNotifiedHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/mark_expiration_notified"
	ownerCancelReservationHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/owner_cancel_reservation"
	updateScheduleHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/update_schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/config"
	paymentConsumer "github.com/m04kA/SMC-BookingEngine/internal/consumer/payment"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	scheduleCache "github.com/m04kA/SMC-BookingEngine/internal/infra/cache/schedule"
	reservationRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/notifier"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/tenantdirectory"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
	"github.com/m04kA/SMC-BookingEngine/internal/service/expiration"
	reservationsService "github.com/m04kA/SMC-BookingEngine/internal/service/reservations"
	scheduleService "github.com/m04kA/SMC-BookingEngine/internal/service/schedule"
	createReservationUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BookingEngine/migrations"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/logger"
	"github.com/m04kA/SMC-BookingEngine/pkg/metrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/mq"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

// reservationNotifier события жизненного цикла бронирования
type reservationNotifier interface {
	ReservationCreated(ctx context.Context, r *domain.Reservation)
	ReservationConfirmed(ctx context.Context, r *domain.Reservation)
	ReservationCancelled(ctx context.Context, r *domain.Reservation)
	ReservationExpired(ctx context.Context, r *domain.Reservation)
}

// scheduleStore хранилище расписаний: репозиторий или кэш поверх него
type scheduleStore interface {
	GetByTenantAndResource(ctx context.Context, tenantID string, resourceID *string) (*domain.ScheduleConfig, error)
	GetWithHierarchy(ctx context.Context, tenantID, resourceID string) (*domain.ScheduleConfig, error)
	Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error)
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BookingEngine...")

	// Контекст фоновых задач (sweeper, consumer, очистка rate limiter)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Инициализируем метрики (если включены); nil означает "без метрик"
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	// Обёртка собирает метрики запросов и пула; без метрик работает как прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем интеграционных клиентов
	tenantClient := tenantdirectory.NewClient(
		cfg.TenantDirectory.URL,
		time.Duration(cfg.TenantDirectory.Timeout)*time.Second,
		log,
	)
	log.Info("Tenant directory client initialized (url=%s, timeout=%ds)",
		cfg.TenantDirectory.URL, cfg.TenantDirectory.Timeout)

	var events reservationNotifier = notifier.Nop{}
	if cfg.RabbitMQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ publisher: %v", err)
		}
		defer publisher.Close()

		events = notifier.New(publisher, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second, log)
		log.Info("Reservation events published to exchange=%s", cfg.RabbitMQ.Exchange)
	}

	// Инициализируем репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)

	var schedules scheduleStore = scheduleRepository
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		// Недоступный Redis не мешает старту: кэш деградирует до чтения из БД
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis ping failed, schedule cache will fall back to database: %v", err)
		}

		schedules = scheduleCache.New(scheduleRepository, redisClient, time.Duration(cfg.Redis.TTL)*time.Second, log)
		log.Info("Schedule cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Инициализируем сервисы
	sweeper := expiration.NewSweeper(reservationRepository, events, metricsCollector, log)
	checker := availability.NewChecker(reservationRepository, metricsCollector, log)

	reservationSvc := reservationsService.NewService(
		reservationRepository,
		sweeper,
		tenantClient,
		events,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		schedules,
		tenantClient,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		schedules,
		tenantClient,
		checker,
		sweeper,
		events,
		metricsCollector,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		reservationRepository,
		schedules,
		tenantClient,
		checker,
		metricsCollector,
		log,
	)

	// Фоновое истечение неоплаченных бронирований
	if interval := cfg.Reservations.SweepDuration(); interval > 0 {
		go sweeper.Run(ctx, interval)
	}

	// Результаты оплаты из RabbitMQ
	if cfg.RabbitMQ.Enabled {
		source, err := mq.NewConsumer(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.PaymentExchange,
			cfg.RabbitMQ.PaymentQueue,
			paymentConsumer.RoutingKeys,
			cfg.RabbitMQ.Prefetch,
		)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ consumer: %v", err)
		}
		defer source.Close()

		if err := paymentConsumer.NewConsumer(source, reservationSvc, log).Run(ctx); err != nil {
			log.Fatal("Failed to start payment consumer: %v", err)
		}
		log.Info("Payment consumer started (queue=%s)", cfg.RabbitMQ.PaymentQueue)
	}

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(getAvailableSlotsUseCase, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	getOwnerReservation := getOwnerReservationHandler.NewHandler(reservationSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationSvc, log)
	confirmReservation := confirmReservationHandler.NewHandler(reservationSvc, log)
	ownerCancelReservation := ownerCancelReservationHandler.NewHandler(reservationSvc, log)
	markExpirationNotified := markExpirationNotifiedHandler.NewHandler(reservationSvc, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)
	health := healthHandler.NewHandler(wrappedDB, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (страница бронирования, без аутентификации)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerSecond,
			cfg.RateLimit.Burst,
			time.Duration(cfg.RateLimit.VisitorTTL)*time.Second,
		)
		go limiter.RunCleanup(ctx, time.Minute)
		public.Use(limiter.Limit)
		log.Info("Rate limit enabled (rps=%.2f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// Слоты и проверка интервала
	public.HandleFunc("/venues/{slug}/resources/{resourceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)
	public.HandleFunc("/venues/{slug}/resources/{resourceId}/availability",
		checkAvailability.Handle).Methods(http.MethodGet)

	// Создание бронирования клиентом
	public.HandleFunc("/venues/{slug}/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Просмотр и отмена клиентом
	public.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	public.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPost)

	// ============================================================
	// OWNER ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/tenants/{tenantId}/reservations", listReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/details", getOwnerReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/confirm", confirmReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/owner-cancel", ownerCancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/expiration-notified", markExpirationNotified.Handle).Methods(http.MethodPatch)

	// --- Расписание ---
	protected.HandleFunc("/tenants/{tenantId}/schedule", getSchedule.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/tenants/{tenantId}/schedule", updateSchedule.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr: addr,
		Handler: middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAgeSeconds:  cfg.CORS.MaxAge,
		}, r),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые задачи и сбор метрик connection pool
	stop()
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
