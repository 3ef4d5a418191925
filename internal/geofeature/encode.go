// Package geofeature turns occupancy timelines and tenant rows into the
// point payloads drawn by the map front end.
package geofeature

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/occupancy"
	"github.com/umahmood/haversine"
)

const dateLayout = "2006-01-02"

// Encode emits one feature per account per active sample date. Features are
// ordered by account id, then by date.
func Encode(timelines occupancy.Timelines, colorOf map[string]string) (FeatureCollection, []occupancy.Warning, error) {
	ids := make([]int64, 0, len(timelines))
	for id := range timelines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	var warnings []occupancy.Warning

	for _, id := range ids {
		tl := timelines[id]
		if len(tl.Dates) == 0 {
			continue
		}

		color, ok := colorOf[tl.SiteCode]
		if !ok || color == "" {
			return FeatureCollection{}, nil, &occupancy.ConfigurationError{SiteCode: tl.SiteCode, Err: occupancy.ErrMissingColor}
		}

		if !validCoordinates(tl.Lat, tl.Lon) {
			warnings = append(warnings, occupancy.Warning{
				Kind:      occupancy.WarnInvalidCoordinates,
				AccountID: tl.AccountID,
				SiteCode:  tl.SiteCode,
				Detail:    fmt.Sprintf("lat=%v lon=%v, %d feature(s) dropped", tl.Lat, tl.Lon, len(tl.Dates)),
			})
			continue
		}

		for _, d := range tl.Dates {
			fc.Features = append(fc.Features, Feature{
				Type: "Feature",
				Geometry: Point{
					Type:        "Point",
					Coordinates: [2]float64{tl.Lon, tl.Lat},
				},
				Properties: Properties{
					SiteCode:  tl.SiteCode,
					AccountID: tl.AccountID,
					Timestamp: d.UTC().Format(dateLayout),
					Times:     []int64{TimestampMillis(d)},
					Icon:      "circle",
					IconStyle: circleStyle(color),
					Popup:     AccountPopup(tl.SiteCode, tl.AccountID),
				},
			})
		}
	}

	return fc, warnings, nil
}

// TimestampMillis is midnight UTC of d's calendar day in epoch milliseconds.
func TimestampMillis(d time.Time) int64 {
	return occupancy.Midnight(d).UnixMilli()
}

// MarkerOptions controls the snapshot views.
type MarkerOptions struct {
	// Facilities supplies the origin for distance_miles. Optional.
	Facilities map[string]occupancy.Facility
	// HighlightBadDebt paints bad-debt tenants with BadDebtColor.
	HighlightBadDebt bool
	BadDebtColor     string
}

// Markers builds one circle marker per tenant row for the snapshot views.
func Markers(accounts []occupancy.TenantAccount, colorOf map[string]string, opts MarkerOptions) ([]Marker, []occupancy.Warning, error) {
	markers := make([]Marker, 0, len(accounts))
	var warnings []occupancy.Warning

	for _, a := range accounts {
		color, ok := colorOf[a.SiteCode]
		if !ok || color == "" {
			return nil, nil, &occupancy.ConfigurationError{AccountID: a.AccountID, SiteCode: a.SiteCode, Err: occupancy.ErrMissingColor}
		}
		if !validCoordinates(a.Lat, a.Lon) {
			warnings = append(warnings, occupancy.Warning{
				Kind:      occupancy.WarnInvalidCoordinates,
				AccountID: a.AccountID,
				SiteCode:  a.SiteCode,
				Detail:    fmt.Sprintf("lat=%v lon=%v", a.Lat, a.Lon),
			})
			continue
		}

		popup := AccountPopup(a.SiteCode, a.AccountID)
		highlighted := opts.HighlightBadDebt && a.BadDebt
		if highlighted {
			if opts.BadDebtColor == "" {
				return nil, nil, &occupancy.ConfigurationError{SiteCode: a.SiteCode, Err: fmt.Errorf("%w: bad debt", occupancy.ErrMissingColor)}
			}
			color = opts.BadDebtColor
			popup = BadDebtPopup(a.SiteCode, a.AccountID, a.WriteOffs)
		}

		m := Marker{
			AccountID:   a.AccountID,
			SiteCode:    a.SiteCode,
			Lat:         a.Lat,
			Lon:         a.Lon,
			Color:       color,
			FillColor:   color,
			FillOpacity: markerFillOpacity,
			Radius:      markerRadius,
			Popup:       popup,
			BadDebt:     highlighted,
		}
		if f, ok := opts.Facilities[a.SiteCode]; ok && validCoordinates(f.Lat, f.Lon) {
			mi, _ := haversine.Distance(
				haversine.Coord{Lat: f.Lat, Lon: f.Lon},
				haversine.Coord{Lat: a.Lat, Lon: a.Lon},
			)
			m.DistanceMiles = math.Round(mi*100) / 100
		}
		markers = append(markers, m)
	}

	return markers, warnings, nil
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
