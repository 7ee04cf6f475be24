package flights

import (
	"context"
	"time"
)

// ActiveFlights is the current/recent feed, which carries both directions in one call.
type ActiveFlights struct {
	Arrivals   []*RawFlight
	Departures []*RawFlight
}

// Provider abstracts the upstream flight data source.
type Provider interface {
	Name() string
	ActiveFlights(ctx context.Context) (ActiveFlights, error)
	ScheduledDepartures(ctx context.Context, start, end time.Time) ([]*RawFlight, error)
	ScheduledArrivals(ctx context.Context, start, end time.Time) ([]*RawFlight, error)
}
