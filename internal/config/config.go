package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn warning error"`
	LogFile  string

	// SampleInterval is the sun-hours sampling resolution.
	SampleInterval time.Duration `validate:"gt=0"`

	// External terrain and building shading service; empty disables it.
	BaseExposureURL     string        `validate:"omitempty,url"`
	BaseExposureTimeout time.Duration `validate:"gt=0"`

	// GardenFile lists plots refreshed by the scheduler; optional.
	GardenFile      string
	RefreshInterval time.Duration `validate:"gt=0"`
	SeasonDays      int           `validate:"gte=1,lte=366"`

	// Result cache retention.
	StoreMaxEntries int           `validate:"gte=0"` // 0 = unlimited
	StoreMaxAge     time.Duration `validate:"gte=0"` // 0 = unlimited
	// ValkeyAddr switches the cache to Valkey when set.
	ValkeyAddr string

	// Workers bounds the days computed concurrently per seasonal request.
	Workers int `validate:"gte=0"`

	TracingEnabled bool

	// EnvFileLoaded reports whether a .env file was read.
	EnvFileLoaded bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{EnvFileLoaded: godotenv.Load() == nil}

	var err error
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.LogFile = os.Getenv("LOG_FILE")

	if cfg.SampleInterval, err = getenvDuration("SAMPLE_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	cfg.BaseExposureURL = os.Getenv("BASE_EXPOSURE_URL")
	if cfg.BaseExposureTimeout, err = getenvDuration("BASE_EXPOSURE_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.GardenFile = os.Getenv("GARDEN_FILE")
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "6h"); err != nil {
		return nil, err
	}
	cfg.SeasonDays = getenvInt("SEASON_DAYS", 90)

	cfg.StoreMaxEntries = getenvInt("STORE_MAX_ENTRIES", 1000)
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	cfg.ValkeyAddr = os.Getenv("VALKEY_ADDR")

	cfg.Workers = getenvInt("WORKERS", 4)
	cfg.TracingEnabled = getenvBool("TRACING_ENABLED", false)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
