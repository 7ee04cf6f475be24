package flights

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/airport-board/internal/cache"
	"github.com/i474232898/airport-board/internal/clock"
	"github.com/i474232898/airport-board/internal/logger"
	"github.com/i474232898/airport-board/internal/metrics"
)

const (
	// CacheKey is the single cache slot holding the current board.
	CacheKey = "flights"
	// MaxPerCategory caps every list of the board.
	MaxPerCategory = 15

	feedActive = "active"
)

// ErrAirportClosed is returned by Current outside opening hours.
var ErrAirportClosed = errors.New("airport is currently closed")

// FeedError is one upstream feed that failed during aggregation.
type FeedError struct {
	Feed string
	Err  error
}

// FeedErrors is returned when every feed failed.
type FeedErrors []FeedError

func (e FeedErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Feed+": "+fe.Err.Error())
	}
	return strings.Join(parts, "; ")
}

func (e FeedErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, fe := range e {
		errs = append(errs, fe.Err)
	}
	return errs
}

// Options tunes the service.
type Options struct {
	// TTL applies when every feed succeeded.
	TTL time.Duration
	// PartialTTL applies when some feeds failed. Zero disables caching of partial boards.
	PartialTTL time.Duration
	Rules      Rules
}

// Service builds the flight board: gate, cache, upstream fetch, normalize, dedupe.
type Service struct {
	provider   Provider
	gate       *Gate
	cache      *cache.TTL
	clock      clock.Clock
	normalizer *Normalizer
	opts       Options
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewService creates a new Service.
func NewService(provider Provider, gate *Gate, c *cache.TTL, clk clock.Clock, opts Options, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		provider:   provider,
		gate:       gate,
		cache:      c,
		clock:      clk,
		normalizer: NewNormalizer(gate.Location(), log),
		opts:       opts,
		metrics:    m,
		log:        log.Named("flights"),
	}
}

// Current returns the board, from cache when possible. While the airport is closed the cache
// is cleared and ErrAirportClosed returned, so the first request after opening fetches fresh data.
func (s *Service) Current(ctx context.Context) (Board, error) {
	if !s.gate.IsOpen(s.clock.Now()) {
		s.cache.Clear()
		return Board{}, ErrAirportClosed
	}

	// The load may be shared by concurrent requests; one caller going away must not cancel it.
	loadCtx := context.WithoutCancel(ctx)
	board, hit, err := cache.Fetch(s.cache, CacheKey, func() (Board, time.Duration, error) {
		return s.aggregate(loadCtx)
	})
	s.metrics.CacheLookup(CacheKey, hit)
	if err != nil {
		return Board{}, err
	}
	return board, nil
}

func (s *Service) aggregate(ctx context.Context) (Board, time.Duration, error) {
	now := s.clock.Now()
	start, end := localDay(now, s.gate.Location())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		feeds    = make(map[Category][]*RawFlight, len(Categories))
		failures FeedErrors
	)

	fail := func(feed string, err error) {
		s.log.Warn("flight feed failed", logger.String("feed", feed), logger.Error(err))
		s.metrics.FeedFailed(feed)
		mu.Lock()
		failures = append(failures, FeedError{Feed: feed, Err: err})
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		active, err := s.provider.ActiveFlights(ctx)
		if err != nil {
			fail(feedActive, err)
			return
		}
		mu.Lock()
		feeds[CategoryDepartures] = active.Departures
		feeds[CategoryArrivals] = active.Arrivals
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		raws, err := s.provider.ScheduledDepartures(ctx, start, end)
		if err != nil {
			fail(string(CategoryScheduledDepartures), err)
			return
		}
		mu.Lock()
		feeds[CategoryScheduledDepartures] = raws
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		raws, err := s.provider.ScheduledArrivals(ctx, start, end)
		if err != nil {
			fail(string(CategoryScheduledArrivals), err)
			return
		}
		mu.Lock()
		feeds[CategoryScheduledArrivals] = raws
		mu.Unlock()
	}()
	wg.Wait()

	if len(failures) == 3 {
		return Board{}, 0, failures
	}

	buckets := make(map[Category][]FlightRecord, len(Categories))
	for _, c := range Categories {
		raws, ok := feeds[c]
		if !ok {
			continue
		}
		rule := s.opts.Rules.For(c)
		recs, drops := s.normalizer.Apply(raws, rule, now)
		s.metrics.Dropped(string(c), "no_time", drops.NoTime)
		s.metrics.Dropped(string(c), "bad_time", drops.BadTime)
		s.metrics.Dropped(string(c), "filtered", drops.Filtered)

		buckets[c] = append(buckets[c], recs...)
		if rule.MergeInto != "" {
			buckets[rule.MergeInto] = append(buckets[rule.MergeInto], recs...)
		}
	}

	board := Board{
		Arrivals:            finalize(buckets[CategoryArrivals]),
		Departures:          finalize(buckets[CategoryDepartures]),
		ScheduledDepartures: finalize(buckets[CategoryScheduledDepartures]),
		ScheduledArrivals:   finalize(buckets[CategoryScheduledArrivals]),
	}

	ttl := s.opts.TTL
	if len(failures) > 0 {
		ttl = s.opts.PartialTTL
	}
	s.log.Info("flight board refreshed",
		logger.Int("arrivals", len(board.Arrivals)),
		logger.Int("departures", len(board.Departures)),
		logger.Int("scheduled_departures", len(board.ScheduledDepartures)),
		logger.Int("scheduled_arrivals", len(board.ScheduledArrivals)),
		logger.Int("failed_feeds", len(failures)),
	)
	return board, ttl, nil
}

func finalize(recs []FlightRecord) []FlightRecord {
	out := Dedupe(recs)
	if len(out) > MaxPerCategory {
		out = out[:MaxPerCategory]
	}
	return out
}

// localDay returns the first and last second of now's calendar day in loc.
func localDay(now time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := now.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1).Add(-time.Second)
}
