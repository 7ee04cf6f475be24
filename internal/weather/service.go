package weather

import (
	"context"
	"time"

	"github.com/i474232898/airport-board/internal/cache"
	"github.com/i474232898/airport-board/internal/clock"
	"github.com/i474232898/airport-board/internal/logger"
	"github.com/i474232898/airport-board/internal/metrics"
)

// CacheKey is the single cache slot holding the current observation.
const CacheKey = "weather"

// Gate reports whether the airport is open.
type Gate interface {
	IsOpen(now time.Time) bool
}

// Location is the fixed coordinate weather is looked up for.
type Location struct {
	Lat float64
	Lon float64
}

// Service serves current conditions at the airport from cache or the provider.
type Service struct {
	provider Provider
	gate     Gate
	cache    *cache.TTL
	clock    clock.Clock
	loc      Location
	ttl      time.Duration
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewService creates a new Service.
func NewService(provider Provider, gate Gate, c *cache.TTL, clk clock.Clock, loc Location, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		gate:     gate,
		cache:    c,
		clock:    clk,
		loc:      loc,
		ttl:      ttl,
		metrics:  m,
		log:      log.Named("weather"),
	}
}

// Current returns the latest observation near the airport. While the airport is closed the
// cache is cleared and ErrAirportClosed returned.
func (s *Service) Current(ctx context.Context) (Info, error) {
	if !s.gate.IsOpen(s.clock.Now()) {
		s.cache.Clear()
		return Info{}, ErrAirportClosed
	}

	loadCtx := context.WithoutCancel(ctx)
	info, hit, err := cache.Fetch(s.cache, CacheKey, func() (Info, time.Duration, error) {
		info, err := s.provider.Current(loadCtx, s.loc.Lat, s.loc.Lon)
		if err != nil {
			s.log.Warn("weather lookup failed", logger.String("provider", s.provider.Name()), logger.Error(err))
			return Info{}, 0, err
		}
		s.log.Debug("weather refreshed", logger.Float64("temp", info.Temp), logger.Int("wind_speed", info.WindSpeed))
		return info, s.ttl, nil
	})
	s.metrics.CacheLookup(CacheKey, hit)
	if err != nil {
		return Info{}, err
	}
	return info, nil
}
