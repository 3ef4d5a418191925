package tenants

import (
	"context"
	"errors"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/accounts"
	"github.com/geotenants/geo-tenants-backend/internal/config"
	"github.com/geotenants/geo-tenants-backend/internal/geofeature"
	"github.com/geotenants/geo-tenants-backend/internal/logging"
	"github.com/geotenants/geo-tenants-backend/internal/occupancy"
	"github.com/sirupsen/logrus"
)

var log = logging.Module("tenants")

// ErrAccountsUnavailable wraps a failure to load the geocoding lookup.
var ErrAccountsUnavailable = errors.New("account geocoding cache unavailable")

// AccountLookup is satisfied by *accounts.Cache.
type AccountLookup interface {
	Snapshot(ctx context.Context) (accounts.Lookup, error)
}

type Service struct {
	Store    Store
	Accounts AccountLookup
	Map      config.MapConfig
	Builder  occupancy.Builder
}

func NewService(store Store, lookup AccountLookup, mapCfg config.MapConfig) (*Service, error) {
	baseline, err := mapCfg.BaselineDate()
	if err != nil {
		return nil, err
	}
	return &Service{
		Store:    store,
		Accounts: lookup,
		Map:      mapCfg,
		Builder:  occupancy.Builder{Baseline: baseline, Now: time.Now},
	}, nil
}

type MapRequest struct {
	RDs  []string `json:"rds" validate:"dive,required"`
	View ViewMode `json:"view" validate:"required,viewmode"`
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FacilityMarker is the logo pin drawn at each selected facility.
type FacilityMarker struct {
	RD    string          `json:"rd"`
	Lat   float64         `json:"lat"`
	Lon   float64         `json:"lon"`
	Icon  config.IconSpec `json:"icon"`
	Popup string          `json:"popup"`
}

type LegendEntry struct {
	RD    string `json:"rd"`
	Color string `json:"color"`
}

type WindowInfo struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Samples int    `json:"samples"`
}

type MapResponse struct {
	View       ViewMode                      `json:"view"`
	Center     LatLon                        `json:"center"`
	Zoom       int                           `json:"zoom"`
	Tiles      config.TileLayer              `json:"tiles"`
	Legend     []LegendEntry                 `json:"legend"`
	Facilities []FacilityMarker              `json:"facilities"`
	Markers    []geofeature.Marker           `json:"markers,omitempty"`
	Features   *geofeature.FeatureCollection `json:"features,omitempty"`
	Animation  *config.Animation             `json:"animation,omitempty"`
	Window     *WindowInfo                   `json:"window,omitempty"`
	Warnings   []occupancy.Warning           `json:"warnings"`

	Timings stageTimings `json:"-"`
}

type stageTimings struct {
	Fetch  time.Duration
	Build  time.Duration
	Encode time.Duration
}

// BuildMap resolves the selection, loads its tenants and renders the view.
func (s *Service) BuildMap(ctx context.Context, req MapRequest) (MapResponse, error) {
	rds := uniqueRDs(req.RDs)
	if len(rds) == 0 {
		return MapResponse{}, occupancy.ErrEmptySelection
	}

	fetchStart := time.Now()
	all, err := s.Store.Facilities(ctx)
	if err != nil {
		return MapResponse{}, err
	}
	facilities := make(map[string]occupancy.Facility, len(all))
	for _, f := range all {
		facilities[f.RD] = f.toOccupancy()
	}

	resp := MapResponse{
		View:       req.View,
		Zoom:       s.Map.Zoom,
		Tiles:      s.Map.Tiles,
		Legend:     make([]LegendEntry, 0, len(rds)),
		Facilities: make([]FacilityMarker, 0, len(rds)),
		Warnings:   []occupancy.Warning{},
	}
	colorOf := make(map[string]string, len(rds))
	for i, rd := range rds {
		f, ok := facilities[rd]
		if !ok {
			return MapResponse{}, &occupancy.ConfigurationError{SiteCode: rd, Err: occupancy.ErrUnknownFacility}
		}
		colorOf[rd] = s.Map.ColorFor(i)
		resp.Legend = append(resp.Legend, LegendEntry{RD: rd, Color: colorOf[rd]})
		resp.Facilities = append(resp.Facilities, FacilityMarker{
			RD:    rd,
			Lat:   f.Lat,
			Lon:   f.Lon,
			Icon:  s.Map.FacilityIcon,
			Popup: rd,
		})
	}
	first := facilities[rds[0]]
	resp.Center = LatLon{Lat: first.Lat, Lon: first.Lon}

	rows, err := s.Store.TenantsAt(ctx, rds)
	if err != nil {
		return MapResponse{}, err
	}
	lookup, err := s.Accounts.Snapshot(ctx)
	if err != nil {
		return MapResponse{}, errors.Join(ErrAccountsUnavailable, err)
	}
	resp.Timings.Fetch = time.Since(fetchStart)

	joined, warnings := JoinGeocoded(rows, rds, req.View, lookup)
	resp.Warnings = append(resp.Warnings, warnings...)

	switch req.View {
	case ViewCurrent, ViewHighlightBadDebt:
		encodeStart := time.Now()
		markers, warnings, err := geofeature.Markers(latestPerAccount(joined), colorOf, geofeature.MarkerOptions{
			Facilities:       facilities,
			HighlightBadDebt: req.View == ViewHighlightBadDebt,
			BadDebtColor:     s.Map.BadDebtColor,
		})
		if err != nil {
			return MapResponse{}, err
		}
		resp.Timings.Encode = time.Since(encodeStart)
		resp.Markers = markers
		resp.Warnings = append(resp.Warnings, warnings...)

	case ViewTimeSeries:
		if err := s.timeSeries(&resp, joined, facilities, colorOf); err != nil {
			return MapResponse{}, err
		}

	default:
		return MapResponse{}, &occupancy.ConfigurationError{Err: errors.New("unknown view " + string(req.View))}
	}

	logWarnings(resp.Warnings)
	return resp, nil
}

func (s *Service) timeSeries(resp *MapResponse, joined []occupancy.TenantAccount, facilities map[string]occupancy.Facility, colorOf map[string]string) error {
	anim := s.Map.Animation
	resp.Animation = &anim
	resp.Features = &geofeature.FeatureCollection{Type: "FeatureCollection", Features: []geofeature.Feature{}}

	if len(joined) == 0 {
		return nil
	}

	buildStart := time.Now()
	win, err := s.Builder.Window(joined, facilities)
	if err != nil {
		return err
	}
	timelines, warnings, err := s.Builder.BuildWithin(win, joined, facilities)
	if err != nil {
		return err
	}
	resp.Timings.Build = time.Since(buildStart)
	resp.Warnings = append(resp.Warnings, warnings...)
	resp.Window = &WindowInfo{
		Start:   win.Start.Format("2006-01-02"),
		End:     win.End.Format("2006-01-02"),
		Samples: len(win.Samples),
	}

	encodeStart := time.Now()
	fc, warnings, err := geofeature.Encode(timelines, colorOf)
	if err != nil {
		return err
	}
	resp.Timings.Encode = time.Since(encodeStart)
	resp.Features = &fc
	resp.Warnings = append(resp.Warnings, warnings...)
	return nil
}

// FacilityList returns every known facility ordered by RD.
func (s *Service) FacilityList(ctx context.Context) ([]Facility, error) {
	return s.Store.Facilities(ctx)
}

func uniqueRDs(rds []string) []string {
	seen := make(map[string]struct{}, len(rds))
	out := make([]string, 0, len(rds))
	for _, rd := range rds {
		if _, ok := seen[rd]; ok {
			continue
		}
		seen[rd] = struct{}{}
		out = append(out, rd)
	}
	return out
}

func logWarnings(warnings []occupancy.Warning) {
	for _, w := range warnings {
		log.WithFields(logrus.Fields{
			"kind":       w.Kind,
			"account_id": w.AccountID,
			"site_code":  w.SiteCode,
		}).Warn(w.Detail)
	}
}
