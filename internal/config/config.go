package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Broker    BrokerConfig    `mapstructure:"broker" validate:"required"`
	Outbox    OutboxConfig    `mapstructure:"outbox" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
	BCryptCost    int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// BrokerConfig contains the message broker settings used by the outbox publisher.
type BrokerConfig struct {
	URL                string        `mapstructure:"url" validate:"required,url"`
	Exchange           string        `mapstructure:"exchange" validate:"required"`
	Topic              string        `mapstructure:"topic" validate:"required"`
	ConfirmTimeout     time.Duration `mapstructure:"confirm_timeout" validate:"gt=0"`
	BreakerMaxFailures int           `mapstructure:"breaker_max_failures" validate:"gt=0"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout" validate:"gt=0"`
}

// OutboxConfig controls the background outbox publisher.
type OutboxConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Interval       time.Duration `mapstructure:"interval" validate:"gt=0"`
	BatchSize      int           `mapstructure:"batch_size" validate:"gt=0,lte=1000"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout" validate:"gt=0"`
	LockKey        string        `mapstructure:"lock_key" validate:"required"`
}

// RedisConfig configures the optional distributed lock. An empty Addr disables it.
type RedisConfig struct {
	Addr       string        `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db" validate:"gte=0"`
	LockExpiry time.Duration `mapstructure:"lock_expiry" validate:"gt=0"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name" validate:"required_if=Enabled true"`
	Exporter    string `mapstructure:"exporter" validate:"omitempty,oneof=stdout otlp"`
	Endpoint    string `mapstructure:"endpoint" validate:"required_if=Exporter otlp"`
}
