package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string `validate:"required,numeric"`

	AeroAPIKey string
	AeroAPIURL string `validate:"required,url"`
	// AeroMaxPages is sent as max_pages on every AeroAPI call.
	AeroMaxPages          int     `validate:"min=1"`
	AeroRequestsPerSecond float64 `validate:"min=0"`

	AirportCode string  `validate:"len=4,alphanum"`
	AirportLat  float64 `validate:"latitude"`
	AirportLon  float64 `validate:"longitude"`

	NWSAPIURL    string `validate:"required,url"`
	NWSUserAgent string `validate:"required"`

	HTTPTimeout time.Duration `validate:"gt=0"`

	// Upstream resilience. Zero values keep one attempt per call and no breaker.
	UpstreamMaxRetries      int `validate:"min=0"`
	UpstreamBreakerFailures int `validate:"min=0"`

	FlightsCacheTTL        time.Duration `validate:"gt=0"`
	FlightsPartialCacheTTL time.Duration `validate:"min=0"`
	WeatherCacheTTL        time.Duration `validate:"gt=0"`

	// CacheSweepInterval of zero disables the closed-hours sweep.
	CacheSweepInterval time.Duration `validate:"min=0"`

	FlightRulesFile string
	StaticDir       string `validate:"required"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds and validates the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:         getenvDefault("PORT", "8080"),
		AeroAPIKey:   os.Getenv("AERO_API_KEY"),
		AeroAPIURL:   getenvDefault("AERO_API_URL", "https://aeroapi.flightaware.com/aeroapi"),
		AeroMaxPages: getenvInt("AERO_MAX_PAGES", 2),
		AirportCode:  getenvDefault("AIRPORT_CODE", "KASG"),
		NWSAPIURL:    getenvDefault("NWS_API_URL", "https://api.weather.gov"),
		NWSUserAgent: getenvDefault("NWS_USER_AGENT", "airport-board (flight information display)"),

		UpstreamMaxRetries:      getenvInt("UPSTREAM_MAX_RETRIES", 0),
		UpstreamBreakerFailures: getenvInt("UPSTREAM_BREAKER_FAILURES", 0),

		FlightRulesFile: os.Getenv("FLIGHT_RULES_FILE"),
		StaticDir:       getenvDefault("STATIC_DIR", "static"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		LogFormat:       getenvDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.AirportLat, err = getenvFloat("AIRPORT_LAT", 36.17473947369698); err != nil {
		return nil, err
	}
	if cfg.AirportLon, err = getenvFloat("AIRPORT_LON", -94.12315969007389); err != nil {
		return nil, err
	}
	if cfg.AeroRequestsPerSecond, err = getenvFloat("AERO_REQUESTS_PER_SECOND", 0); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"FLIGHTS_CACHE_TTL", "30m", &cfg.FlightsCacheTTL},
		{"FLIGHTS_PARTIAL_CACHE_TTL", "1m", &cfg.FlightsPartialCacheTTL},
		{"WEATHER_CACHE_TTL", "10m", &cfg.WeatherCacheTTL},
		{"CACHE_SWEEP_INTERVAL", "0s", &cfg.CacheSweepInterval},
	}
	for _, d := range durations {
		if *d.dst, err = getenvDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
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

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
