package tenants

import "fmt"

// ViewMode selects what the map draws.
type ViewMode string

const (
	ViewCurrent          ViewMode = "Current Tenants"
	ViewTimeSeries       ViewMode = "Time Series of Tenants"
	ViewHighlightBadDebt ViewMode = "Highlight Bad Debt Tenants"
)

// DefaultView is preselected on the dashboard.
const DefaultView = ViewCurrent

var AllViews = []ViewMode{ViewCurrent, ViewTimeSeries, ViewHighlightBadDebt}

func ParseViewMode(s string) (ViewMode, error) {
	for _, v := range AllViews {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// includes reports whether t is drawn in this view.
func (v ViewMode) includes(t Tenant) bool {
	switch v {
	case ViewCurrent:
		return !t.MovedOut
	case ViewTimeSeries:
		return true
	case ViewHighlightBadDebt:
		return !t.MovedOut || t.BadDebt
	}
	return false
}
