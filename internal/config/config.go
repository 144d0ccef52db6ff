package config

import "time"

// Config holds all application configuration. It is assembled once at
// process start and treated as immutable for the process lifetime; every
// component receives the slice of it that it needs, never a global.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Store  StoreConfig  `mapstructure:"store"  validate:"required"`
	Mail   MailConfig   `mapstructure:"mail"   validate:"required"`
	Notify NotifyConfig `mapstructure:"notify" validate:"required"`
}

// ServerConfig contains process-level settings.
type ServerConfig struct {
	// LogLevel selects the slog level for the JSON logger.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// OpsAddr is the listen address of the operator surface
	// (health and queue stats). Empty disables it.
	OpsAddr string `mapstructure:"ops_addr"`
}

// StoreConfig selects and configures the key-value backend.
type StoreConfig struct {
	// Backend picks the store implementation.
	Backend string `mapstructure:"backend" validate:"required,oneof=redis postgres memory"`

	// Redis/KeyDB connection settings, used when Backend is "redis".
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`

	// PostgresURL is the DSN used when Backend is "postgres".
	PostgresURL string `mapstructure:"postgres_url"`
}

// MailConfig contains the SMTP transport settings.
type MailConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	UseTLS   bool   `mapstructure:"use_tls"`
	UseSSL   bool   `mapstructure:"use_ssl"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender" validate:"required,email"`
}

// NotifyConfig tunes the notification pipeline.
type NotifyConfig struct {
	// Recipient receives catalog notifications. Empty disables them.
	Recipient string `mapstructure:"recipient" validate:"omitempty,email"`

	// RetryBase is the delay before the first retry; each further retry
	// doubles it (plus jitter).
	RetryBase time.Duration `mapstructure:"retry_base" validate:"gt=0"`

	// MaxAttempts is the retry budget before a job is abandoned.
	MaxAttempts int `mapstructure:"max_attempts" validate:"gt=0"`

	// WorkerCount is the size of the delivery worker pool.
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`

	// QueueSize is the job queue buffer; enqueues beyond it are dropped.
	QueueSize int `mapstructure:"queue_size" validate:"gt=0"`

	// AttemptTimeout bounds each delivery attempt.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" validate:"gt=0"`
}
