package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/i474232898/airport-board/internal/api/http"
	"github.com/i474232898/airport-board/internal/cache"
	"github.com/i474232898/airport-board/internal/clock"
	"github.com/i474232898/airport-board/internal/config"
	"github.com/i474232898/airport-board/internal/flights"
	"github.com/i474232898/airport-board/internal/flights/aeroapi"
	"github.com/i474232898/airport-board/internal/logger"
	"github.com/i474232898/airport-board/internal/metrics"
	"github.com/i474232898/airport-board/internal/scheduler"
	"github.com/i474232898/airport-board/internal/upstream"
	"github.com/i474232898/airport-board/internal/weather"
	"github.com/i474232898/airport-board/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.AeroAPIKey == "" {
		lg.Warn("AERO_API_KEY is not set; flight requests will be rejected upstream")
	}

	loc, err := flights.LoadAirportLocation()
	if err != nil {
		lg.Fatal("failed to load airport timezone", logger.Error(err))
	}
	rules, err := flights.LoadRules(cfg.FlightRulesFile)
	if err != nil {
		lg.Fatal("failed to load flight rules", logger.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, "airport_board")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	backoff := upstream.BackoffConfig{
		MaxRetries:      cfg.UpstreamMaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}

	aero := aeroapi.New(aeroapi.Config{
		BaseURL:     cfg.AeroAPIURL,
		APIKey:      cfg.AeroAPIKey,
		AirportCode: cfg.AirportCode,
		MaxPages:    cfg.AeroMaxPages,
	}, &upstream.Caller{
		Name:    "aeroapi",
		Client:  httpClient,
		Backoff: backoff,
		Breaker: upstream.NewBreaker("aeroapi", cfg.UpstreamBreakerFailures),
		Limiter: upstream.NewLimiter(cfg.AeroRequestsPerSecond),
		Metrics: m,
	})
	nws := providers.NewNWS(providers.NWSConfig{
		BaseURL:   cfg.NWSAPIURL,
		UserAgent: cfg.NWSUserAgent,
	}, &upstream.Caller{
		Name:    "nws",
		Client:  httpClient,
		Backoff: backoff,
		Breaker: upstream.NewBreaker("nws", cfg.UpstreamBreakerFailures),
		Metrics: m,
	})

	clk := clock.Real{}
	results := cache.New(clk)
	gate := flights.NewGate(loc)

	flightSvc := flights.NewService(aero, gate, results, clk, flights.Options{
		TTL:        cfg.FlightsCacheTTL,
		PartialTTL: cfg.FlightsPartialCacheTTL,
		Rules:      rules,
	}, m, lg)
	weatherSvc := weather.NewService(nws, gate, results, clk, weather.Location{
		Lat: cfg.AirportLat,
		Lon: cfg.AirportLon,
	}, cfg.WeatherCacheTTL, m, lg)

	sched := scheduler.New(cfg.CacheSweepInterval, loc, gate, results, clk, lg)
	if err := sched.Start(); err != nil {
		lg.Fatal("failed to start scheduler", logger.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               httpapi.ServiceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Three sequential upstream hops for weather must fit.
		WriteTimeout: 4 * cfg.HTTPTimeout,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(httpapi.RequestLogger(lg.Named("http")))

	httpapi.RegisterOps(app, reg)
	httpapi.RegisterRoutes(app, flightSvc, weatherSvc)
	httpapi.RegisterStatic(app, cfg.StaticDir)

	go func() {
		lg.Info("listening", logger.String("port", cfg.Port), logger.String("airport", cfg.AirportCode))
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", logger.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", logger.Error(err))
	}
}
