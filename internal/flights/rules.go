package flights

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/i474232898/airport-board/internal/common"
)

// Rule drives normalization and inclusion for one upstream feed.
type Rule struct {
	Role Role `toml:"role" validate:"oneof=departure arrival"`
	// TimeFields are tried first to last; the first non-empty one wins.
	TimeFields      []string `toml:"time_fields" validate:"required,min=1,dive,required"`
	SyntheticStatus string   `toml:"synthetic_status"`
	ExcludeStatuses []string `toml:"exclude_statuses"`
	RequireToday    bool     `toml:"require_today"`
	RequireFuture   bool     `toml:"require_future"`
	// MergeInto names another category that also receives this feed's records.
	MergeInto Category `toml:"merge_into" validate:"omitempty,oneof=departures arrivals scheduled_departures scheduled_arrivals"`
}

// Rules holds one Rule per feed.
type Rules struct {
	Departures          Rule `toml:"departures"`
	Arrivals            Rule `toml:"arrivals"`
	ScheduledDepartures Rule `toml:"scheduled_departures"`
	ScheduledArrivals   Rule `toml:"scheduled_arrivals"`
}

// DefaultRules returns the current board behaviour: today's flights only, landed or departed
// flights hidden, scheduled departures merged into departures, and forward-looking arrivals.
func DefaultRules() Rules {
	return Rules{
		Departures: Rule{
			Role:            RoleDeparture,
			TimeFields:      []string{"actual_off", "estimated_off", "scheduled_off"},
			ExcludeStatuses: []string{"arrived", "landed", "departed"},
			RequireToday:    true,
		},
		ScheduledDepartures: Rule{
			Role:            RoleDeparture,
			TimeFields:      []string{"scheduled_off"},
			SyntheticStatus: StatusPlanned,
			RequireToday:    true,
			RequireFuture:   true,
			MergeInto:       CategoryDepartures,
		},
		ScheduledArrivals: Rule{
			Role:            RoleArrival,
			TimeFields:      []string{"scheduled_on", "scheduled_in"},
			SyntheticStatus: StatusPlanned,
			RequireToday:    true,
			RequireFuture:   true,
		},
		Arrivals: Rule{
			Role:            RoleArrival,
			TimeFields:      []string{"estimated_on", "scheduled_on", "estimated_in", "scheduled_in", "actual_on"},
			ExcludeStatuses: []string{"arrived", "landed"},
			RequireToday:    true,
			RequireFuture:   true,
		},
	}
}

// LoadRules reads a TOML file over DefaultRules. Tables and keys missing from the file keep
// their defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	if _, err := toml.DecodeFile(path, &rules); err != nil {
		return Rules{}, fmt.Errorf("decode rules file %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

var validate = validator.New()

// Validate checks every rule and rejects a feed merging into itself.
func (r Rules) Validate() error {
	for _, c := range Categories {
		rule := r.For(c)
		if err := validate.Struct(rule); err != nil {
			return fmt.Errorf("invalid rule %s: %w", c, err)
		}
		if rule.MergeInto == c {
			return fmt.Errorf("invalid rule %s: cannot merge into itself", c)
		}
	}
	return nil
}

// For returns the rule for category c.
func (r Rules) For(c Category) Rule {
	switch c {
	case CategoryArrivals:
		return r.Arrivals
	case CategoryScheduledDepartures:
		return r.ScheduledDepartures
	case CategoryScheduledArrivals:
		return r.ScheduledArrivals
	default:
		return r.Departures
	}
}

// Predicate decides whether a normalized record is shown.
type Predicate func(rec FlightRecord, now time.Time) bool

// Predicates builds the inclusion checks for this rule.
func (r Rule) Predicates(loc *time.Location) []Predicate {
	var ps []Predicate
	if r.RequireToday {
		ps = append(ps, SameLocalDay(loc))
	}
	if len(r.ExcludeStatuses) > 0 {
		ps = append(ps, StatusNotIn(r.ExcludeStatuses...))
	}
	if r.RequireFuture {
		ps = append(ps, NotBefore())
	}
	return ps
}

// SameLocalDay keeps records whose calendar date in loc equals today's.
func SameLocalDay(loc *time.Location) Predicate {
	return func(rec FlightRecord, now time.Time) bool {
		ey, em, ed := rec.EventTime.In(loc).Date()
		ny, nm, nd := now.In(loc).Date()
		return ey == ny && em == nm && ed == nd
	}
}

// StatusNotIn drops records whose status matches one of statuses, ignoring case.
func StatusNotIn(statuses ...string) Predicate {
	set := common.NewFoldSet(statuses...)
	return func(rec FlightRecord, _ time.Time) bool {
		return !set.Contains(rec.Status)
	}
}

// NotBefore keeps records at or after now.
func NotBefore() Predicate {
	return func(rec FlightRecord, now time.Time) bool {
		return !rec.EventTime.Before(now)
	}
}
