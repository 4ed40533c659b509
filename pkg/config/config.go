package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Extract       ExtractConfig
	Engines       EngineConfig
	Archive       ArchiveConfig
	Observability ObservabilityConfig
	Batch         BatchConfig
	LogLevel      slog.Level
}

type ExtractConfig struct {
	StrategyTimeout time.Duration
	MinYield        int
	ProbeMaxPages   int
}

type EngineConfig struct {
	PdftotextBin string
	PdftoppmBin  string
	TesseractBin string
	OCRDPI       int
	OCRLang      string
}

type ArchiveConfig struct {
	Enabled       bool
	Path          string
	Retention     time.Duration
	SweepSchedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

type BatchConfig struct {
	Workers int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Extract: ExtractConfig{
			StrategyTimeout: getEnvAsDuration("STRATEGY_TIMEOUT", 30*time.Second),
			MinYield:        getEnvAsInt("EXTRACT_MIN_YIELD", 5),
			ProbeMaxPages:   getEnvAsInt("PROBE_MAX_PAGES", 3),
		},
		Engines: EngineConfig{
			PdftotextBin: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			PdftoppmBin:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			TesseractBin: getEnv("TESSERACT_BIN", "tesseract"),
			OCRDPI:       getEnvAsInt("OCR_DPI", 300),
			OCRLang:      getEnv("OCR_LANG", "eng"),
		},
		Archive: ArchiveConfig{
			Enabled:       getEnvAsBool("ARCHIVE_ENABLED", false),
			Path:          getEnv("ARCHIVE_PATH", "./archive"),
			Retention:     getEnvAsDuration("ARCHIVE_RETENTION", 720*time.Hour),
			SweepSchedule: getEnv("ARCHIVE_SWEEP_SCHEDULE", "0 3 * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Batch: BatchConfig{
			Workers: getEnvAsInt("BATCH_WORKERS", 4),
		},
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.Extract.StrategyTimeout <= 0 {
		return nil, errors.New("STRATEGY_TIMEOUT must be positive")
	}
	if cfg.Extract.MinYield < 1 {
		return nil, errors.New("EXTRACT_MIN_YIELD must be at least 1")
	}
	if cfg.Batch.Workers < 1 {
		return nil, errors.New("BATCH_WORKERS must be at least 1")
	}
	if cfg.Archive.Enabled && cfg.Archive.Path == "" {
		return nil, errors.New("ARCHIVE_PATH is required when ARCHIVE_ENABLED is set")
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
