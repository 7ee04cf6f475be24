package flights

import (
	"encoding/json"
	"time"
)

// Role says which side of the airport a flight is on.
type Role string

const (
	RoleDeparture Role = "departure"
	RoleArrival   Role = "arrival"
)

// Category names one list of the board. Categories double as upstream feed names.
type Category string

const (
	CategoryDepartures          Category = "departures"
	CategoryArrivals            Category = "arrivals"
	CategoryScheduledDepartures Category = "scheduled_departures"
	CategoryScheduledArrivals   Category = "scheduled_arrivals"
)

// Categories in the order their records are merged.
var Categories = []Category{
	CategoryDepartures,
	CategoryScheduledDepartures,
	CategoryScheduledArrivals,
	CategoryArrivals,
}

const (
	// NotAvailable fills counterpart and aircraft type when the upstream omits them.
	NotAvailable = "N/A"
	// StatusPlanned marks schedule-only entries.
	StatusPlanned = "PLANNED"
)

// FlightRecord is the canonical, normalized flight. Records are values and never mutated
// after construction.
type FlightRecord struct {
	Ident        string
	Counterpart  string // ICAO code of origin (arrivals) or destination (departures)
	AircraftType string
	Status       string
	EventTime    time.Time
	Role         Role
}

type departureJSON struct {
	Ident        string `json:"ident"`
	Destination  string `json:"destination"`
	AircraftType string `json:"aircraft_type"`
	Status       string `json:"status"`
	Time         string `json:"time"`
}

type arrivalJSON struct {
	Ident        string `json:"ident"`
	Origin       string `json:"origin"`
	AircraftType string `json:"aircraft_type"`
	Status       string `json:"status"`
	Time         string `json:"time"`
}

// MarshalJSON names the counterpart "origin" for arrivals and "destination" for departures.
// time is re-encoded as UTC RFC3339 at second precision, not echoed as the upstream spelled it.
func (r FlightRecord) MarshalJSON() ([]byte, error) {
	ts := r.EventTime.UTC().Format(time.RFC3339)
	if r.Role == RoleArrival {
		return json.Marshal(arrivalJSON{
			Ident:        r.Ident,
			Origin:       r.Counterpart,
			AircraftType: r.AircraftType,
			Status:       r.Status,
			Time:         ts,
		})
	}
	return json.Marshal(departureJSON{
		Ident:        r.Ident,
		Destination:  r.Counterpart,
		AircraftType: r.AircraftType,
		Status:       r.Status,
		Time:         ts,
	})
}

// Board is the /api/flights payload.
type Board struct {
	Arrivals            []FlightRecord `json:"arrivals"`
	Departures          []FlightRecord `json:"departures"`
	ScheduledDepartures []FlightRecord `json:"scheduled_departures"`
	ScheduledArrivals   []FlightRecord `json:"scheduled_arrivals"`
}

// RawFlight is one upstream flight object. Every top-level string field is kept by name
// so time-field precedence can be configured without code changes.
type RawFlight struct {
	Fields      map[string]string
	Origin      string
	Destination string
}

type airportRef struct {
	CodeICAO *string `json:"code_icao"`
}

func (r *RawFlight) UnmarshalJSON(b []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}

	r.Fields = make(map[string]string, len(obj))
	for k, v := range obj {
		var s string
		if json.Unmarshal(v, &s) == nil {
			r.Fields[k] = s
		}
	}
	r.Origin = airportCode(obj["origin"])
	r.Destination = airportCode(obj["destination"])
	return nil
}

func airportCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var ref airportRef
	if json.Unmarshal(raw, &ref) != nil || ref.CodeICAO == nil {
		return ""
	}
	return *ref.CodeICAO
}

// Field returns the named string field, or "" when absent.
func (r RawFlight) Field(name string) string {
	return r.Fields[name]
}
