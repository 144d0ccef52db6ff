package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment overrides, e.g.
// BOOKSHELF_STORE_REDIS_ADDR or BOOKSHELF_NOTIFY_RECIPIENT.
const envPrefix = "BOOKSHELF"

// Load reads configuration from an optional config.yaml in the working
// directory and from environment variables; environment variables take
// precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key so environment
// overrides are always picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.ops_addr", ":8090")

	v.SetDefault("store.backend", "redis")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.postgres_url", "")

	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 25)
	v.SetDefault("mail.use_tls", false)
	v.SetDefault("mail.use_ssl", false)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.sender", "no-reply@example.com")

	v.SetDefault("notify.recipient", "")
	v.SetDefault("notify.retry_base", "5s")
	v.SetDefault("notify.max_attempts", 5)
	v.SetDefault("notify.worker_count", 2)
	v.SetDefault("notify.queue_size", 100)
	v.SetDefault("notify.attempt_timeout", "30s")
}
