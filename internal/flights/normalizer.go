package flights

import (
	"errors"
	"strings"
	"time"

	"github.com/i474232898/airport-board/internal/common"
	"github.com/i474232898/airport-board/internal/logger"
)

var (
	ErrNoEventTime  = errors.New("no time field present")
	ErrBadEventTime = errors.New("time field not parseable")
)

var eventTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999-0700",
}

// ParseEventTime parses an upstream timestamp. A trailing Z is rewritten to +00:00 first.
// Timestamps without a zone offset are rejected.
func ParseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoEventTime
	}
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+00:00"
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadEventTime
}

// Drops counts records excluded by Apply.
type Drops struct {
	NoTime   int
	BadTime  int
	Filtered int
}

// Normalizer maps upstream flights to FlightRecords in the airport's zone.
type Normalizer struct {
	loc *time.Location
	log *logger.Logger
}

func NewNormalizer(loc *time.Location, log *logger.Logger) *Normalizer {
	return &Normalizer{loc: loc, log: log.Named("normalizer")}
}

// Normalize builds a record using rule's time precedence. It fails with ErrNoEventTime or
// ErrBadEventTime when no usable time exists.
func (n *Normalizer) Normalize(raw RawFlight, rule Rule) (FlightRecord, error) {
	var timeStr string
	for _, field := range rule.TimeFields {
		if v := raw.Field(field); v != "" {
			timeStr = v
			break
		}
	}
	if timeStr == "" {
		return FlightRecord{}, ErrNoEventTime
	}
	t, err := ParseEventTime(timeStr)
	if err != nil {
		return FlightRecord{}, ErrBadEventTime
	}

	counterpart := raw.Destination
	if rule.Role == RoleArrival {
		counterpart = raw.Origin
	}

	return FlightRecord{
		Ident:        raw.Field("ident"),
		Counterpart:  common.FirstNonEmpty(counterpart, NotAvailable),
		AircraftType: common.FirstNonEmpty(raw.Field("aircraft_type"), NotAvailable),
		Status:       common.FirstNonEmpty(rule.SyntheticStatus, raw.Field("status")),
		EventTime:    t.In(n.loc),
		Role:         rule.Role,
	}, nil
}

// Apply normalizes raws and keeps the records passing every predicate of rule.
func (n *Normalizer) Apply(raws []*RawFlight, rule Rule, now time.Time) ([]FlightRecord, Drops) {
	var drops Drops
	predicates := rule.Predicates(n.loc)
	out := make([]FlightRecord, 0, len(raws))

	for _, raw := range raws {
		if raw == nil {
			continue
		}
		rec, err := n.Normalize(*raw, rule)
		if err != nil {
			if errors.Is(err, ErrNoEventTime) {
				drops.NoTime++
			} else {
				drops.BadTime++
			}
			n.log.Debug("dropping flight", logger.String("ident", raw.Field("ident")), logger.Error(err))
			continue
		}
		if !keep(rec, now, predicates) {
			drops.Filtered++
			continue
		}
		out = append(out, rec)
	}
	return out, drops
}

func keep(rec FlightRecord, now time.Time, predicates []Predicate) bool {
	for _, p := range predicates {
		if !p(rec, now) {
			return false
		}
	}
	return true
}
