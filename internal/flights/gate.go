package flights

import "time"

// AirportTimezone is the fixed zone all local-time decisions are made in.
const AirportTimezone = "America/Chicago"

// LoadAirportLocation loads AirportTimezone.
func LoadAirportLocation() (*time.Location, error) {
	return time.LoadLocation(AirportTimezone)
}

// Window is a half-open range of local hours [Open, Close).
type Window struct {
	Open  int
	Close int
}

func (w Window) contains(hour int) bool {
	return hour >= w.Open && hour < w.Close
}

var (
	WeekdayHours = Window{Open: 6, Close: 21}
	WeekendHours = Window{Open: 7, Close: 19}
)

// Gate decides whether the airport is open at a given instant.
type Gate struct {
	loc     *time.Location
	weekday Window
	weekend Window
}

func NewGate(loc *time.Location) *Gate {
	return &Gate{loc: loc, weekday: WeekdayHours, weekend: WeekendHours}
}

// IsOpen evaluates now in the airport's zone. No holiday calendar.
func (g *Gate) IsOpen(now time.Time) bool {
	local := now.In(g.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return g.weekend.contains(local.Hour())
	default:
		return g.weekday.contains(local.Hour())
	}
}

func (g *Gate) Location() *time.Location {
	return g.loc
}
