package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings, sourced from the environment.
type Config struct {
	AppName     string
	Version     string
	Environment string
	HTTPAddr    string

	DatabaseURL string

	CountriesURL  string
	RatesURL      string
	SourceTimeout time.Duration

	SummaryPath string

	// RefreshInterval enables the background refresh worker when > 0.
	RefreshInterval time.Duration

	Log     LogConfig
	Tracing TracingConfig
}

type LogConfig struct {
	Level string
	// File enables rotating file output in addition to stdout.
	File string
}

type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

func Load() (Config, error) {
	cfg := Config{
		AppName:     envOr("APP_NAME", "geopulse"),
		Version:     envOr("APP_VERSION", "dev"),
		Environment: envOr("ENVIRONMENT", "development"),
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		CountriesURL:  envOr("COUNTRIES_API_URL", "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"),
		RatesURL:      envOr("EXCHANGE_RATE_API_URL", "https://open.er-api.com/v6/latest/USD"),
		SourceTimeout: envDurationOr("SOURCE_TIMEOUT", 10*time.Second),

		SummaryPath: envOr("SUMMARY_IMAGE_PATH", "cache/summary.png"),

		RefreshInterval: envDurationOr("REFRESH_INTERVAL", 0),

		Log: LogConfig{
			Level: envOr("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Tracing: TracingConfig{
			Enabled:          envBoolOr("TRACING_ENABLED", false),
			ExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ExporterProtocol: envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    envFloatOr("TRACING_SAMPLING_RATIO", 0.1),
		},
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envBoolOr(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloatOr(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
