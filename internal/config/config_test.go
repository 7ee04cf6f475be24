package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "KASG", cfg.AirportCode)
	require.Equal(t, 36.17473947369698, cfg.AirportLat)
	require.Equal(t, -94.12315969007389, cfg.AirportLon)
	require.Equal(t, 2, cfg.AeroMaxPages)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 30*time.Minute, cfg.FlightsCacheTTL)
	require.Equal(t, time.Minute, cfg.FlightsPartialCacheTTL)
	require.Equal(t, 10*time.Minute, cfg.WeatherCacheTTL)
	require.Zero(t, cfg.CacheSweepInterval)
	require.Zero(t, cfg.UpstreamMaxRetries)
	require.Zero(t, cfg.UpstreamBreakerFailures)
	require.Equal(t, "static", cfg.StaticDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AERO_API_KEY", "k")
	t.Setenv("AIRPORT_CODE", "KXNA")
	t.Setenv("AIRPORT_LAT", "36.28")
	t.Setenv("FLIGHTS_CACHE_TTL", "15m")
	t.Setenv("CACHE_SWEEP_INTERVAL", "5m")
	t.Setenv("AERO_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "k", cfg.AeroAPIKey)
	require.Equal(t, "KXNA", cfg.AirportCode)
	require.Equal(t, 36.28, cfg.AirportLat)
	require.Equal(t, 15*time.Minute, cfg.FlightsCacheTTL)
	require.Equal(t, 5*time.Minute, cfg.CacheSweepInterval)
	require.Equal(t, 0.5, cfg.AeroRequestsPerSecond)
	require.Equal(t, "console", cfg.LogFormat)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"bad duration":    {"HTTP_TIMEOUT", "soon"},
		"zero ttl":        {"WEATHER_CACHE_TTL", "0s"},
		"bad float":       {"AIRPORT_LON", "west"},
		"latitude range":  {"AIRPORT_LAT", "91"},
		"short code":      {"AIRPORT_CODE", "ASG"},
		"code symbols":    {"AIRPORT_CODE", "K-SG"},
		"log level":       {"LOG_LEVEL", "verbose"},
		"negative rps":    {"AERO_REQUESTS_PER_SECOND", "-1"},
		"port":            {"PORT", "http"},
		"aero url":        {"AERO_API_URL", "not a url"},
		"negative sweep":  {"CACHE_SWEEP_INTERVAL", "-1m"},
		"negative breaks": {"UPSTREAM_BREAKER_FAILURES", "-2"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}
