package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"
	_ "time/tzdata" // Reference timezone must resolve even on hosts without zoneinfo

	"question_cycle_service/internal/domain/cycle"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Cycle               cycle.Config
	DatabaseDriver      string
	DatabaseURL         string
	CacheTTL            time.Duration
	CacheMaxEntries     int
	CacheCoalesceMisses bool
	CronSpecRollover    string // Rollover trigger, evaluated in the cycle timezone
	HTTPAddr            string
	TelegramToken       string // Empty disables the Telegram bot
	AdminTelegramID     int64
	LogLevel            string
	Environment         string
}

// LoadDotEnv loads a .env file into the environment if one exists.
func LoadDotEnv() {
	// Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	LoadDotEnv()

	cfg := &AppConfig{}
	var err error

	cfg.Cycle, err = ParseCycle()
	if err != nil {
		return nil, err
	}

	cfg.DatabaseDriver = strings.ToLower(os.Getenv("DATABASE_DRIVER"))
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = DriverPostgres
	}
	if cfg.DatabaseDriver != DriverPostgres && cfg.DatabaseDriver != DriverSQLite {
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: expected %q or %q", cfg.DatabaseDriver, DriverPostgres, DriverSQLite)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	ttlSeconds, err := positiveInt("CACHE_TTL_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second

	cfg.CacheMaxEntries, err = positiveInt("CACHE_MAX_ENTRIES", 100)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CACHE_COALESCE_MISSES"); v != "" {
		cfg.CacheCoalesceMisses, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_COALESCE_MISSES: %w", err)
		}
	}

	cfg.CronSpecRollover = os.Getenv("CRON_SPEC_ROLLOVER")
	if cfg.CronSpecRollover == "" {
		cfg.CronSpecRollover = "0 19 * * 1" // Default: Mondays 19:00
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":3000"
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// ParseCycle reads CYCLE_START_DATE, CYCLE_DURATION and CYCLE_TIMEZONE. The first two
// have no defaults: a guessed schedule would shift every cycle number.
func ParseCycle() (cycle.Config, error) {
	startDate := strings.TrimSpace(os.Getenv("CYCLE_START_DATE"))
	if startDate == "" {
		return cycle.Config{}, fmt.Errorf("CYCLE_START_DATE is not set")
	}

	durationStr := strings.TrimSpace(os.Getenv("CYCLE_DURATION"))
	if durationStr == "" {
		return cycle.Config{}, fmt.Errorf("CYCLE_DURATION is not set")
	}
	duration, err := strconv.Atoi(durationStr)
	if err != nil {
		return cycle.Config{}, fmt.Errorf("invalid CYCLE_DURATION: %w", err)
	}

	tz := os.Getenv("CYCLE_TIMEZONE")
	if tz == "" {
		tz = cycle.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return cycle.Config{}, fmt.Errorf("invalid CYCLE_TIMEZONE: %w", err)
	}

	cfg, err := cycle.NewConfig(startDate, duration, loc)
	if err != nil {
		return cycle.Config{}, fmt.Errorf("invalid cycle settings: %w", err)
	}
	return cfg, nil
}

func positiveInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, n)
	}
	return n, nil
}
