package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	PolicyReject  = "reject"
	PolicyDiscard = "discard"
)

type Config struct {
	Port                     string
	DatabaseURL              string
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	RetentionUnit            string
	RetentionValue           int
	RetentionWindow          time.Duration
	SweepInterval            time.Duration
	Location                 *time.Location
	SessionLifetime          time.Duration
	CookieSecure             bool
	UnsplashAccessKey        string
	UnsplashAPIURL           string
	ImageTimeout             time.Duration
	ImageURLs                []string
	EmptyGuessPolicy         string
	AllocatorMaxAttempts     int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	LogLevel                 slog.Level
}

func Default() Config {
	return Config{
		Port:                     "8080",
		RetentionUnit:            "days",
		RetentionValue:           7,
		RetentionWindow:          7 * 24 * time.Hour,
		SweepInterval:            7 * 24 * time.Hour,
		Location:                 time.UTC,
		SessionLifetime:          30 * time.Minute,
		UnsplashAPIURL:           "https://api.unsplash.com",
		ImageTimeout:             10 * time.Second,
		EmptyGuessPolicy:         PolicyReject,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		LogLevel:                 slog.LevelInfo,
	}
}

// Load reads the environment on top of Default. Retention and timezone settings
// are validated here so a bad deployment fails at startup instead of sweeping
// with the wrong window.
func Load() (Config, error) {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.RedisDB = value
		}
	}

	unit := strings.TrimSpace(os.Getenv("SCHEDULE_UNIT"))
	rawValue := strings.TrimSpace(os.Getenv("SCHEDULE_VALUE"))
	if unit == "" || rawValue == "" {
		return cfg, errors.New("SCHEDULE_UNIT and SCHEDULE_VALUE must be set")
	}
	value, err := strconv.Atoi(rawValue)
	if err != nil || value <= 0 {
		return cfg, fmt.Errorf("SCHEDULE_VALUE must be a positive integer, got %q", rawValue)
	}
	window, err := RetentionWindow(unit, value)
	if err != nil {
		return cfg, err
	}
	cfg.RetentionUnit = strings.ToLower(unit)
	cfg.RetentionValue = value
	cfg.RetentionWindow = window
	cfg.SweepInterval = window
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return cfg, fmt.Errorf("SWEEP_INTERVAL must be a positive duration, got %q", raw)
		}
		cfg.SweepInterval = interval
	}

	if raw := strings.TrimSpace(os.Getenv("TZ")); raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid TZ %q: %w", raw, err)
		}
		cfg.Location = loc
	}

	if raw := os.Getenv("SESSION_LIFETIME_MINUTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SessionLifetime = time.Duration(value) * time.Minute
		}
	}
	if raw := os.Getenv("COOKIE_SECURE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.CookieSecure = value
		}
	}
	cfg.UnsplashAccessKey = strings.TrimSpace(os.Getenv("UNSPLASH_ACCESS_KEY"))
	if raw := os.Getenv("UNSPLASH_API_URL"); raw != "" {
		cfg.UnsplashAPIURL = strings.TrimRight(raw, "/")
	}
	if raw := os.Getenv("IMAGE_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ImageTimeout = time.Duration(value) * time.Second
		}
	}
	if raw := os.Getenv("IMAGE_URLS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if url := strings.TrimSpace(part); url != "" {
				cfg.ImageURLs = append(cfg.ImageURLs, url)
			}
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(os.Getenv("EMPTY_GUESS_POLICY"))); raw != "" {
		if raw != PolicyReject && raw != PolicyDiscard {
			return cfg, fmt.Errorf("EMPTY_GUESS_POLICY must be %q or %q, got %q", PolicyReject, PolicyDiscard, raw)
		}
		cfg.EmptyGuessPolicy = raw
	}
	if raw := os.Getenv("ALLOCATOR_MAX_ATTEMPTS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.AllocatorMaxAttempts = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(raw)); err == nil {
			cfg.LogLevel = level
		}
	}
	return cfg, nil
}

// RetentionWindow converts a unit/magnitude pair such as ("days", 7) into a duration.
func RetentionWindow(unit string, value int) (time.Duration, error) {
	if value <= 0 {
		return 0, fmt.Errorf("retention value must be positive, got %d", value)
	}
	var base time.Duration
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "seconds":
		base = time.Second
	case "minutes":
		base = time.Minute
	case "hours":
		base = time.Hour
	case "days":
		base = 24 * time.Hour
	case "weeks":
		base = 7 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unsupported SCHEDULE_UNIT %q", unit)
	}
	return time.Duration(value) * base, nil
}
