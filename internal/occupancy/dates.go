package occupancy

import "time"

// All dates handled by this package are midnight UTC of a calendar day.

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight returns midnight UTC of t's calendar day as seen in t's own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// MonthEnd returns the last calendar day of t's month.
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	// day 0 of the next month normalises to the last day of this one
	return Date(y, m+1, 0)
}

// MonthEnds lists every month-end date d with start <= d <= end, ascending.
func MonthEnds(start, end time.Time) []time.Time {
	start, end = Midnight(start), Midnight(end)
	if start.After(end) {
		return nil
	}

	var out []time.Time
	y, m, _ := start.Date()
	for {
		d := Date(y, m+1, 0)
		if d.After(end) {
			break
		}
		if !d.Before(start) {
			out = append(out, d)
		}
		m++
	}
	return out
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
