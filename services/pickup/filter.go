package pickup

import (
	"fmt"
	"time"

	"vivapickup/lib/scrapers/viva"
)

type Mode string

const (
	ModeDate        Mode = "date"
	ModeOrderNumber Mode = "orderNumber"
)

// FinishedFilter selects orders by their finished flag. Any value other
// than FinishedOpen/FinishedClosed means "don't filter".
type FinishedFilter int

const (
	FinishedAny    FinishedFilter = -1
	FinishedOpen   FinishedFilter = 0
	FinishedClosed FinishedFilter = 1
)

type Criteria struct {
	Mode Mode
	// date mode: only the date component is compared
	Date time.Time
	// orderNumber mode: exact string match
	Number   string
	Finished FinishedFilter
}

// Filter returns the subsequence of entries matching the criteria, in the
// original listing order. An unknown mode is a configuration error.
func Filter(entries []viva.ListingEntry, c Criteria) ([]viva.ListingEntry, error) {
	switch c.Mode {
	case ModeDate, ModeOrderNumber:
	default:
		return nil, fmt.Errorf("unknown filter mode: %q", c.Mode)
	}

	var out []viva.ListingEntry
	for _, entry := range entries {
		if !matchesFinished(entry.Finished, c.Finished) {
			continue
		}

		switch c.Mode {
		case ModeDate:
			created, ok := entry.CreatedTime()
			// entries without a parseable timestamp can never match a date
			if !ok || !sameDate(created, c.Date) {
				continue
			}
		case ModeOrderNumber:
			if entry.Number != c.Number {
				continue
			}
		}

		out = append(out, entry)
	}
	return out, nil
}

func matchesFinished(finished *int, f FinishedFilter) bool {
	if f != FinishedOpen && f != FinishedClosed {
		return true
	}
	return finished != nil && *finished == int(f)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
