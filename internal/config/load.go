package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all environment variables read by Load.
const EnvPrefix = "PLANNER"

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from config files. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks a Config against its struct tags and cross-field rules.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.Driver == "postgres" {
		if err := validate.Var(cfg.Database.URL, "url"); err != nil {
			return fmt.Errorf("config validation failed: invalid database.url: %w", err)
		}
	}

	if _, err := time.LoadLocation(cfg.Rewards.DefaultTimezone); err != nil {
		return fmt.Errorf("config validation failed: invalid rewards.default_timezone %q: %w",
			cfg.Rewards.DefaultTimezone, err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.clock_skew_seconds", 120)

	v.SetDefault("cache.ttl_seconds", 300)

	v.SetDefault("scheduler.easy_base_days", 4)
	v.SetDefault("scheduler.medium_base_days", 3)
	v.SetDefault("scheduler.hard_base_days", 2)
	v.SetDefault("scheduler.growth_factor", 1.5)
	v.SetDefault("scheduler.max_days", 30)

	v.SetDefault("rewards.default_timezone", "UTC")
	v.SetDefault("rewards.recent_limit", 5)
	v.SetDefault("rewards.verify_balance", false)

	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.interval_minutes", 60)
	v.SetDefault("reminders.concurrency", 4)
}

// bindEnvs registers every key explicitly so that Unmarshal sees
// environment values for keys that have no default or file entry.
func bindEnvs(v *viper.Viper) {
	keys := []string{
		"server.port", "server.log_level", "server.shutdown_timeout_seconds",
		"database.driver", "database.url", "database.max_open_conns",
		"database.max_idle_conns", "database.conn_max_lifetime_minutes",
		"auth.jwt_secret", "auth.clock_skew_seconds",
		"cache.url", "cache.ttl_seconds",
		"scheduler.easy_base_days", "scheduler.medium_base_days",
		"scheduler.hard_base_days", "scheduler.growth_factor", "scheduler.max_days",
		"rewards.default_timezone", "rewards.recent_limit", "rewards.verify_balance",
		"reminders.enabled", "reminders.interval_minutes", "reminders.concurrency",
	}
	for _, key := range keys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
}
