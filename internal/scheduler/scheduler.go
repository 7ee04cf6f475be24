// Package scheduler runs the closed-hours cache sweep.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/airport-board/internal/clock"
	"github.com/i474232898/airport-board/internal/logger"
)

// Gate reports whether the airport is open.
type Gate interface {
	IsOpen(now time.Time) bool
}

// Clearer drops every cached entry.
type Clearer interface {
	Clear()
	Len() int
}

// Scheduler periodically clears the cache while the airport is closed, so nothing cached before
// closing survives to the next opening even when no request arrives overnight. It never
// contacts upstream providers.
type Scheduler struct {
	scheduler *gocron.Scheduler
	gate      Gate
	cache     Clearer
	clock     clock.Clock
	interval  time.Duration
	log       *logger.Logger
}

// New creates a new Scheduler. A non-positive interval disables it.
func New(interval time.Duration, loc *time.Location, gate Gate, c Clearer, clk clock.Clock, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		gate:      gate,
		cache:     c,
		clock:     clk,
		interval:  interval,
		log:       log.Named("scheduler"),
	}
}

// Start schedules the sweep and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("cache sweep disabled")
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).Do(func() { s.Sweep() }); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("cache sweep scheduled", logger.Duration("interval", s.interval))
	return nil
}

// Sweep clears the cache if the airport is closed and reports whether it did.
func (s *Scheduler) Sweep() bool {
	if s.gate.IsOpen(s.clock.Now()) {
		return false
	}
	if n := s.cache.Len(); n > 0 {
		s.log.Info("airport closed, clearing cache", logger.Int("entries", n))
	}
	s.cache.Clear()
	return true
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
