package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix префикс переменных окружения, переопределяющих config.toml
// Например: BOOKING_DATABASE_PASSWORD, BOOKING_RABBITMQ_URL
const EnvPrefix = "BOOKING"

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server          ServerConfig          `toml:"server" envconfig:"SERVER"`
	Database        DatabaseConfig        `toml:"database" envconfig:"DATABASE"`
	Logs            LogsConfig            `toml:"logs" envconfig:"LOGS"`
	Metrics         MetricsConfig         `toml:"metrics" envconfig:"METRICS"`
	TenantDirectory TenantDirectoryConfig `toml:"tenant_directory" envconfig:"TENANT_DIRECTORY"`
	RabbitMQ        RabbitMQConfig        `toml:"rabbitmq" envconfig:"RABBITMQ"`
	Redis           RedisConfig           `toml:"redis" envconfig:"REDIS"`
	Reservations    ReservationsConfig    `toml:"reservations" envconfig:"RESERVATIONS"`
	RateLimit       RateLimitConfig       `toml:"rate_limit" envconfig:"RATE_LIMIT"`
	CORS            CORSConfig            `toml:"cors" envconfig:"CORS"`
}

// ServerConfig таймауты указаны в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" split_words:"true"`
	Port            int    `toml:"port" split_words:"true"`
	User            string `toml:"user" split_words:"true"`
	Password        string `toml:"password" split_words:"true"`
	DBName          string `toml:"dbname" split_words:"true"`
	SSLMode         string `toml:"sslmode" split_words:"true"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate" split_words:"true"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file" split_words:"true"` // пусто - только stdout
	Level string `toml:"level" split_words:"true"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" split_words:"true"`
	Path        string `toml:"path" split_words:"true"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

type TenantDirectoryConfig struct {
	URL     string `toml:"url" split_words:"true"`
	Timeout int    `toml:"timeout" split_words:"true"` // секунды
}

type RabbitMQConfig struct {
	Enabled         bool   `toml:"enabled" split_words:"true"`
	URL             string `toml:"url" split_words:"true"`
	Exchange        string `toml:"exchange" split_words:"true"`
	PaymentExchange string `toml:"payment_exchange" split_words:"true"`
	PaymentQueue    string `toml:"payment_queue" split_words:"true"`
	Prefetch        int    `toml:"prefetch" split_words:"true"`
	PublishTimeout  int    `toml:"publish_timeout" split_words:"true"` // секунды
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled" split_words:"true"`
	Addr     string `toml:"addr" split_words:"true"`
	Password string `toml:"password" split_words:"true"`
	DB       int    `toml:"db" split_words:"true"`
	TTL      int    `toml:"ttl" split_words:"true"` // секунды
}

type ReservationsConfig struct {
	// SweepInterval период фонового истечения неоплаченных броней в секундах
	// По умолчанию 0: брони истекают при чтении, фоновый цикл включается явно
	SweepInterval int `toml:"sweep_interval" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled" split_words:"true"`
	RequestsPerSecond float64 `toml:"requests_per_second" split_words:"true"`
	Burst             int     `toml:"burst" split_words:"true"`
	VisitorTTL        int     `toml:"visitor_ttl" split_words:"true"` // секунды
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins" split_words:"true"`
	MaxAge         int      `toml:"max_age" split_words:"true"`
}

// Load читает config.toml, применяет переопределения из окружения (BOOKING_*) и проверяет результат
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "booking-engine",
		},
		TenantDirectory: TenantDirectoryConfig{
			Timeout: 5,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange:        "reservations",
			PaymentExchange: "payments",
			PaymentQueue:    "booking-engine.payments",
			Prefetch:        10,
			PublishTimeout:  2,
		},
		Redis: RedisConfig{
			TTL: 300,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             5,
			VisitorTTL:        600,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			MaxAge:         600,
		},
	}
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}
	if c.Database.Host == "" {
		problems = append(problems, "database.host is required")
	}
	if c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required")
	}
	if c.TenantDirectory.URL == "" {
		problems = append(problems, "tenant_directory.url is required")
	}
	if c.TenantDirectory.Timeout <= 0 {
		problems = append(problems, "tenant_directory.timeout must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, "metrics.path must start with /")
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		problems = append(problems, "rabbitmq.url is required when rabbitmq is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, "redis.addr is required when redis is enabled")
	}
	if c.Reservations.SweepInterval < 0 {
		problems = append(problems, "reservations.sweep_interval must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit.requests_per_second and rate_limit.burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c ServerConfig) ShutdownDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

func (c ReservationsConfig) SweepDuration() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}
