package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all radar configuration
// Tags:
//
//	env: Environment variable name
//	envDefault: Default value if not set
//
// Required keys (no sensible default) are enforced by Validate.
type Config struct {
	// Telegram transport credentials
	TelegramAPIID   int    `env:"TELEGRAM_API_ID"`
	TelegramAPIHash string `env:"TELEGRAM_API_HASH"`
	TelegramPhone   string `env:"TELEGRAM_PHONE"`
	SessionName     string `env:"TELEGRAM_SESSION_NAME" envDefault:"alpha_radar"`

	// Mention store
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"radar"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"alpha_radar"`
	DBPoolMin  int    `env:"DB_POOL_MIN" envDefault:"2"`
	DBPoolMax  int    `env:"DB_POOL_MAX" envDefault:"10"`

	// Trending scan
	TrendingWindowMinutes   int `env:"TRENDING_WINDOW_MINUTES" envDefault:"5"`
	TrendingMinMentions     int `env:"TRENDING_MIN_MENTIONS" envDefault:"3"`
	TrendingMinUniqueChats  int `env:"TRENDING_MIN_UNIQUE_CHATS" envDefault:"2"`
	TrendingCooldownMinutes int `env:"TRENDING_COOLDOWN_MINUTES" envDefault:"15"`
	TrendingCheckIntervalS  int `env:"TRENDING_CHECK_INTERVAL" envDefault:"30"` // seconds
	RetentionHours          int `env:"RETENTION_HOURS" envDefault:"24"`

	// Ingress filters
	FilterMinMsgLength    int  `env:"FILTER_MIN_MSG_LENGTH" envDefault:"5"`
	FilterIgnoreForwarded bool `env:"FILTER_IGNORE_FORWARDED" envDefault:"false"`

	// Liquidity oracle
	DexscreenerEnabled      bool    `env:"DEXSCREENER_ENABLED" envDefault:"false"`
	DexscreenerMinLiquidity float64 `env:"DEXSCREENER_MIN_LIQUIDITY" envDefault:"1000"`

	// HTTP surfaces
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsPort    int  `env:"METRICS_PORT" envDefault:"9090"`
	HealthEnabled  bool `env:"HEALTH_ENABLED" envDefault:"true"`
	HealthPort     int  `env:"HEALTH_PORT" envDefault:"8080"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`
}

// Load reads configuration from .env file and environment variables
// Priority: ENV vars > .env file > defaults
//
// Optional logger parameter for structured logging. If nil, logs to stdout.
func Load(logger *zerolog.Logger) (*Config, error) {
	// .env is a development convenience; in production the environment
	// carries everything
	if err := godotenv.Load(); err != nil {
		if logger != nil {
			logger.Info().Msg("No .env file found (using environment variables only)")
		}
	} else {
		if logger != nil {
			logger.Info().Msg("Loaded configuration from .env file")
		}
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if logger != nil {
		logger.Info().Msg("Configuration loaded and validated successfully")
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	// Required fields (no sensible defaults)
	if c.TelegramAPIID <= 0 {
		return fmt.Errorf("TELEGRAM_API_ID is required")
	}
	if c.TelegramAPIHash == "" {
		return fmt.Errorf("TELEGRAM_API_HASH is required")
	}
	if c.TelegramPhone == "" {
		return fmt.Errorf("TELEGRAM_PHONE is required")
	}
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	// Range checks
	if c.DBPort < 1 || c.DBPort > 65535 {
		return fmt.Errorf("DB_PORT must be 1-65535, got %d", c.DBPort)
	}
	if c.DBPoolMin < 1 {
		return fmt.Errorf("DB_POOL_MIN must be > 0, got %d", c.DBPoolMin)
	}
	if c.DBPoolMax < c.DBPoolMin {
		return fmt.Errorf("DB_POOL_MAX (%d) must be >= DB_POOL_MIN (%d)", c.DBPoolMax, c.DBPoolMin)
	}
	if c.TrendingWindowMinutes < 1 {
		return fmt.Errorf("TRENDING_WINDOW_MINUTES must be > 0, got %d", c.TrendingWindowMinutes)
	}
	if c.TrendingMinMentions < 1 {
		return fmt.Errorf("TRENDING_MIN_MENTIONS must be > 0, got %d", c.TrendingMinMentions)
	}
	if c.TrendingMinUniqueChats < 1 {
		return fmt.Errorf("TRENDING_MIN_UNIQUE_CHATS must be > 0, got %d", c.TrendingMinUniqueChats)
	}
	if c.TrendingCooldownMinutes < 1 {
		return fmt.Errorf("TRENDING_COOLDOWN_MINUTES must be > 0, got %d", c.TrendingCooldownMinutes)
	}
	if c.TrendingCheckIntervalS < 1 {
		return fmt.Errorf("TRENDING_CHECK_INTERVAL must be > 0, got %d", c.TrendingCheckIntervalS)
	}
	if c.RetentionHours < 1 {
		return fmt.Errorf("RETENTION_HOURS must be > 0, got %d", c.RetentionHours)
	}
	if c.FilterMinMsgLength < 0 {
		return fmt.Errorf("FILTER_MIN_MSG_LENGTH must be >= 0, got %d", c.FilterMinMsgLength)
	}
	if c.DexscreenerMinLiquidity < 0 {
		return fmt.Errorf("DEXSCREENER_MIN_LIQUIDITY must be >= 0, got %.2f", c.DexscreenerMinLiquidity)
	}
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT must be 1-65535, got %d", c.MetricsPort)
	}
	if c.HealthPort < 1 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be 1-65535, got %d", c.HealthPort)
	}
	if c.MetricsEnabled && c.HealthEnabled && c.MetricsPort == c.HealthPort {
		return fmt.Errorf("METRICS_PORT and HEALTH_PORT must differ, both are %d", c.MetricsPort)
	}

	// Enum checks
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}

	return nil
}

// Window returns the trending window W
func (c *Config) Window() time.Duration {
	return time.Duration(c.TrendingWindowMinutes) * time.Minute
}

// Cooldown returns the per-contract alert cooldown
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.TrendingCooldownMinutes) * time.Minute
}

// CheckInterval returns the trending tick period
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.TrendingCheckIntervalS) * time.Second
}

// Retention returns how long mention rows are kept
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// DatabaseURL builds the Postgres connection string. Credentials are
// escaped, so passwords may contain any character.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   c.DBName,
	}
	return u.String()
}

// LogConfig logs configuration using structured logging. Secrets
// (API hash, DB password) are omitted.
func (c *Config) LogConfig(logger zerolog.Logger) {
	logger.Info().
		Int("telegram_api_id", c.TelegramAPIID).
		Str("telegram_phone", maskPhone(c.TelegramPhone)).
		Str("session_name", c.SessionName).
		Str("db_host", c.DBHost).
		Int("db_port", c.DBPort).
		Str("db_user", c.DBUser).
		Str("db_name", c.DBName).
		Int("db_pool_min", c.DBPoolMin).
		Int("db_pool_max", c.DBPoolMax).
		Int("trending_window_minutes", c.TrendingWindowMinutes).
		Int("trending_min_mentions", c.TrendingMinMentions).
		Int("trending_min_unique_chats", c.TrendingMinUniqueChats).
		Int("trending_cooldown_minutes", c.TrendingCooldownMinutes).
		Int("trending_check_interval_s", c.TrendingCheckIntervalS).
		Int("retention_hours", c.RetentionHours).
		Int("filter_min_msg_length", c.FilterMinMsgLength).
		Bool("filter_ignore_forwarded", c.FilterIgnoreForwarded).
		Bool("dexscreener_enabled", c.DexscreenerEnabled).
		Float64("dexscreener_min_liquidity", c.DexscreenerMinLiquidity).
		Bool("metrics_enabled", c.MetricsEnabled).
		Int("metrics_port", c.MetricsPort).
		Bool("health_enabled", c.HealthEnabled).
		Int("health_port", c.HealthPort).
		Str("log_level", c.LogLevel).
		Bool("log_json", c.LogJSON).
		Msg("Radar configuration loaded")
}

// maskPhone keeps the country prefix and last two digits for logs
func maskPhone(phone string) string {
	if len(phone) < 6 {
		return "***"
	}
	return phone[:3] + strings.Repeat("*", len(phone)-5) + phone[len(phone)-2:]
}
