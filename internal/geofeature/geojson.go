package geofeature

// FeatureCollection is the payload consumed by the timestamped map animation.
type FeatureCollection struct {
	Type     string    `json:"type"` // "FeatureCollection"
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string     `json:"type"` // "Feature"
	Geometry   Point      `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Point coordinates are [lon, lat] per GeoJSON.
type Point struct {
	Type        string     `json:"type"` // "Point"
	Coordinates [2]float64 `json:"coordinates"`
}

type Properties struct {
	SiteCode  string    `json:"site_code"`
	AccountID int64     `json:"account_id"`
	Timestamp string    `json:"timestamp"` // YYYY-MM-DD
	Times     []int64   `json:"times"`     // epoch millis, UTC midnight
	Icon      string    `json:"icon"`
	IconStyle IconStyle `json:"iconstyle"`
	Popup     string    `json:"popup"`
}

type IconStyle struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Stroke      string  `json:"stroke"`
	Radius      int     `json:"radius"`
}

// Marker is a single colored circle for the snapshot views.
type Marker struct {
	AccountID     int64   `json:"account_id"`
	SiteCode      string  `json:"site_code"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Color         string  `json:"color"`
	FillColor     string  `json:"fill_color"`
	FillOpacity   float64 `json:"fill_opacity"`
	Radius        int     `json:"radius"`
	Popup         string  `json:"popup"`
	BadDebt       bool    `json:"bad_debt"`
	DistanceMiles float64 `json:"distance_miles"`
}

const (
	markerRadius      = 5
	markerFillOpacity = 0.7
)

func circleStyle(color string) IconStyle {
	return IconStyle{
		Color:       color,
		FillColor:   color,
		FillOpacity: markerFillOpacity,
		Stroke:      "false",
		Radius:      markerRadius,
	}
}
