package weather

import "errors"

// Info is the /api/weather payload.
type Info struct {
	// Temp is passed through in degrees Celsius.
	Temp float64 `json:"temp"`
	// WindSpeed is in whole miles per hour.
	WindSpeed int    `json:"wind_speed"`
	Summary   string `json:"summary"`
}

var (
	ErrAirportClosed = errors.New("airport is closed")

	// Payload errors, one per missing link of the point -> station -> observation chain.
	ErrNoStationsURL = errors.New("no observation stations url for point")
	ErrNoStations    = errors.New("no observation stations near point")
	ErrNoStationID   = errors.New("closest station has no identifier")
	ErrIncomplete    = errors.New("observation missing temperature or wind speed")
)
