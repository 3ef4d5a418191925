// Package occupancy expands tenant move-in/move-out intervals into monthly
// occupancy timelines for the animated map.
package occupancy

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Baseline is the earliest month-end for which occupancy data is meaningful.
var Baseline = Date(2019, time.May, 31)

// Builder computes timelines. Now is read once per Build to fix the end of the
// reporting window.
type Builder struct {
	Baseline time.Time
	Now      func() time.Time
}

func DefaultBuilder() Builder {
	return Builder{Baseline: Baseline, Now: time.Now}
}

// BuildTimelines runs DefaultBuilder over the accounts.
func BuildTimelines(accounts []TenantAccount, facilities map[string]Facility) (Timelines, []Warning, error) {
	return DefaultBuilder().Build(accounts, facilities)
}

// Window computes the reporting window for the facilities referenced by accounts.
// start = max(baseline, earliest acquisition), end = last day of the current month.
func (b Builder) Window(accounts []TenantAccount, facilities map[string]Facility) (Window, error) {
	if len(accounts) == 0 {
		return Window{}, ErrEmptySelection
	}

	var earliest time.Time
	for _, a := range accounts {
		f, ok := facilities[a.SiteCode]
		if !ok {
			return Window{}, &ConfigurationError{AccountID: a.AccountID, SiteCode: a.SiteCode, Err: ErrUnknownFacility}
		}
		acq := Midnight(f.AcquiredOn)
		if earliest.IsZero() || acq.Before(earliest) {
			earliest = acq
		}
	}

	start := maxTime(Midnight(b.baseline()), earliest)
	end := MonthEnd(b.now().UTC())

	return Window{
		Start:   start,
		End:     end,
		Samples: MonthEnds(start, end),
	}, nil
}

// Build expands every account into the month-end samples at which it was active.
// An account is active at d iff effectiveMoveIn <= d < effectiveMoveOut.
func (b Builder) Build(accounts []TenantAccount, facilities map[string]Facility) (Timelines, []Warning, error) {
	win, err := b.Window(accounts, facilities)
	if err != nil {
		return nil, nil, err
	}
	return b.BuildWithin(win, accounts, facilities)
}

// BuildWithin is Build over a window the caller already computed, so the
// clock is read once per request.
func (b Builder) BuildWithin(win Window, accounts []TenantAccount, facilities map[string]Facility) (Timelines, []Warning, error) {
	for _, a := range accounts {
		if _, ok := facilities[a.SiteCode]; !ok {
			return nil, nil, &ConfigurationError{AccountID: a.AccountID, SiteCode: a.SiteCode, Err: ErrUnknownFacility}
		}
		if a.MoveIn.IsZero() {
			return nil, nil, &ConfigurationError{AccountID: a.AccountID, SiteCode: a.SiteCode, Err: ErrMissingMoveIn}
		}
	}

	openEnded := win.End.AddDate(0, 0, 1)
	out := make(Timelines, len(accounts))
	var warnings []Warning

	for _, a := range accounts {
		f := facilities[a.SiteCode]

		moveIn := maxTime(Midnight(a.MoveIn), Midnight(f.AcquiredOn))
		moveOut := openEnded
		if a.MovedOutAt != nil {
			moveOut = a.MovedOutAt.UTC()
		}

		tl, seen := out[a.AccountID]
		if !seen {
			tl = &Timeline{AccountID: a.AccountID, Dates: []time.Time{}}
			out[a.AccountID] = tl
		} else if conflict := describeConflict(tl, a); conflict != "" {
			warnings = append(warnings, Warning{
				Kind:      WarnConflictingDuplicate,
				AccountID: a.AccountID,
				SiteCode:  a.SiteCode,
				Detail:    conflict,
			})
		}
		tl.SiteCode = a.SiteCode
		tl.Lat = a.Lat
		tl.Lon = a.Lon
		tl.FullFIPS = a.FullFIPS

		for _, d := range win.Samples {
			if !d.Before(moveIn) && d.Before(moveOut) {
				tl.Dates = append(tl.Dates, d)
			}
		}
	}

	for _, tl := range out {
		tl.Dates = sortUnique(tl.Dates)
	}

	return out, warnings, nil
}

func (b Builder) baseline() time.Time {
	if b.Baseline.IsZero() {
		return Baseline
	}
	return b.Baseline
}

func (b Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func describeConflict(tl *Timeline, a TenantAccount) string {
	switch {
	case tl.SiteCode != a.SiteCode:
		return fmt.Sprintf("site %s replaced by %s", tl.SiteCode, a.SiteCode)
	case !sameCoord(tl.Lat, a.Lat) || !sameCoord(tl.Lon, a.Lon):
		return fmt.Sprintf("location (%g, %g) replaced by (%g, %g)", tl.Lat, tl.Lon, a.Lat, a.Lon)
	case tl.FullFIPS != a.FullFIPS:
		return fmt.Sprintf("fips %s replaced by %s", tl.FullFIPS, a.FullFIPS)
	}
	return ""
}

func sameCoord(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func sortUnique(dates []time.Time) []time.Time {
	if len(dates) < 2 {
		return dates
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	uniq := dates[:1]
	for _, d := range dates[1:] {
		if !d.Equal(uniq[len(uniq)-1]) {
			uniq = append(uniq, d)
		}
	}
	return uniq
}
