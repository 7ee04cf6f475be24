package weather

import "context"

// Provider abstracts a current-conditions source for a coordinate.
type Provider interface {
	Name() string
	Current(ctx context.Context, lat, lon float64) (Info, error)
}
