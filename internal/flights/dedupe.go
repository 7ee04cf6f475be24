package flights

import (
	"sort"
	"time"
)

// DuplicateWindow is the minimum gap between two kept records of the same ident.
const DuplicateWindow = 20 * time.Minute

// Dedupe removes same-ident records that are closer than DuplicateWindow to a more recent
// kept record of that ident, and returns the survivors newest first. The input is not modified.
func Dedupe(records []FlightRecord) []FlightRecord {
	grouped := make([]FlightRecord, 0, len(records))
	for _, r := range records {
		if !r.EventTime.IsZero() {
			grouped = append(grouped, r)
		}
	}
	if len(grouped) == 0 {
		return []FlightRecord{}
	}

	// Group by ident, newest first within a group.
	sort.SliceStable(grouped, func(i, j int) bool {
		if grouped[i].Ident != grouped[j].Ident {
			return grouped[i].Ident > grouped[j].Ident
		}
		return grouped[i].EventTime.After(grouped[j].EventTime)
	})

	kept := make([]FlightRecord, 0, len(grouped))
	for i, r := range grouped {
		if i == 0 {
			kept = append(kept, r)
			continue
		}
		last := kept[len(kept)-1]
		if r.Ident != last.Ident || last.EventTime.Sub(r.EventTime) >= DuplicateWindow {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].EventTime.After(kept[j].EventTime)
	})
	return kept
}
