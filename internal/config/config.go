package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Rewards   RewardsConfig   `mapstructure:"rewards"   validate:"required"`
	Reminders RemindersConfig `mapstructure:"reminders"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
// Driver "memory" runs the service without PostgreSQL; URL is only
// required for the postgres driver.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"            validate:"required,oneof=postgres memory"`
	URL             string `mapstructure:"url"               validate:"required_if=Driver postgres"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
// Tokens are issued by an external identity service; this service only
// verifies them.
type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"         validate:"required,min=32"`
	ClockSkewSeconds int    `mapstructure:"clock_skew_seconds" validate:"gte=0"`
}

// CacheConfig controls the optional Redis-backed summary cache.
// An empty URL disables caching.
type CacheConfig struct {
	URL        string `mapstructure:"url"         validate:"omitempty,url"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=1"`
}

// SchedulerConfig holds the review interval parameters.
type SchedulerConfig struct {
	EasyBaseDays   float64 `mapstructure:"easy_base_days"   validate:"gt=0"`
	MediumBaseDays float64 `mapstructure:"medium_base_days" validate:"gt=0"`
	HardBaseDays   float64 `mapstructure:"hard_base_days"   validate:"gt=0"`
	GrowthFactor   float64 `mapstructure:"growth_factor"    validate:"gte=1"`
	MaxDays        float64 `mapstructure:"max_days"         validate:"gt=0"`
}

// RewardsConfig holds settings for the achievement aggregator.
type RewardsConfig struct {
	// DefaultTimezone is used for learners whose own timezone is unset or invalid.
	DefaultTimezone string `mapstructure:"default_timezone" validate:"required"`
	RecentLimit     int    `mapstructure:"recent_limit"     validate:"gte=1,lte=50"`
	// VerifyBalance makes every completion and review check the stored
	// balance against the ledger first.
	VerifyBalance bool `mapstructure:"verify_balance"`
}

// RemindersConfig controls the periodic due-review reminder sweep.
type RemindersConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes" validate:"gte=1"`
	Concurrency     int  `mapstructure:"concurrency"      validate:"gte=1,lte=64"`
}
