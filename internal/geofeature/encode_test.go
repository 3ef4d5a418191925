package geofeature

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/occupancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampMillis(t *testing.T) {
	assert.Equal(t, int64(0), TimestampMillis(occupancy.Date(1970, time.January, 1)))
	assert.Equal(t, int64(1580428800000), TimestampMillis(occupancy.Date(2020, time.January, 31)))
	assert.Equal(t, int64(1582934400000), TimestampMillis(occupancy.Date(2020, time.February, 29)))
	assert.Equal(t, occupancy.Date(2024, time.November, 30).UnixMilli(), TimestampMillis(occupancy.Date(2024, time.November, 30)))
}

func TestEncode_FeatureFields(t *testing.T) {
	timelines := occupancy.Timelines{
		42: {
			AccountID: 42,
			SiteCode:  "RD01",
			Lat:       34.05,
			Lon:       -118.25,
			Dates:     []time.Time{occupancy.Date(2020, time.January, 31), occupancy.Date(2020, time.February, 29)},
		},
	}

	fc, warnings, err := Encode(timelines, map[string]string{"RD01": "#34ECF4"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, [2]float64{-118.25, 34.05}, f.Geometry.Coordinates)
	assert.Equal(t, "2020-01-31", f.Properties.Timestamp)
	assert.Equal(t, []int64{1580428800000}, f.Properties.Times)
	assert.Equal(t, "#34ECF4", f.Properties.IconStyle.Color)
	assert.Equal(t, "#34ECF4", f.Properties.IconStyle.FillColor)
	assert.Equal(t, "circle", f.Properties.Icon)
	assert.Equal(t, "RD01 account 42", f.Properties.Popup)
	assert.Equal(t, "2020-02-29", fc.Features[1].Properties.Timestamp)
}

func TestEncode_JSONShape(t *testing.T) {
	timelines := occupancy.Timelines{
		1: {AccountID: 1, SiteCode: "A", Lat: 1, Lon: 2, Dates: []time.Time{occupancy.Date(2021, time.March, 31)}},
	}
	fc, _, err := Encode(timelines, map[string]string{"A": "#f43c34"})
	require.NoError(t, err)

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [2, 1]},
			"properties": {
				"site_code": "A",
				"account_id": 1,
				"timestamp": "2021-03-31",
				"times": [1617148800000],
				"icon": "circle",
				"iconstyle": {"color": "#f43c34", "fillColor": "#f43c34", "fillOpacity": 0.7, "stroke": "false", "radius": 5},
				"popup": "A account 1"
			}
		}]
	}`, string(raw))
}

func TestEncode_ColorsFollowFacility(t *testing.T) {
	d := occupancy.Date(2022, time.June, 30)
	timelines := occupancy.Timelines{
		1: {AccountID: 1, SiteCode: "EAST", Lat: 40, Lon: -74, Dates: []time.Time{d}},
		2: {AccountID: 2, SiteCode: "WEST", Lat: 37, Lon: -122, Dates: []time.Time{d}},
		3: {AccountID: 3, SiteCode: "EAST", Lat: 41, Lon: -73, Dates: []time.Time{d}},
	}
	colors := map[string]string{"EAST": "#34ECF4", "WEST": "#f43c34"}

	fc, _, err := Encode(timelines, colors)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	for _, f := range fc.Features {
		assert.Equal(t, colors[f.Properties.SiteCode], f.Properties.IconStyle.Color, "account %d", f.Properties.AccountID)
	}
}

func TestEncode_OrderingAndCount(t *testing.T) {
	timelines := occupancy.Timelines{
		9: {AccountID: 9, SiteCode: "A", Lat: 1, Lon: 1, Dates: []time.Time{
			occupancy.Date(2020, time.January, 31), occupancy.Date(2020, time.February, 29), occupancy.Date(2020, time.March, 31),
		}},
		3: {AccountID: 3, SiteCode: "A", Lat: 1, Lon: 1, Dates: []time.Time{occupancy.Date(2020, time.May, 31)}},
		5: {AccountID: 5, SiteCode: "A", Lat: math.NaN(), Lon: 1, Dates: []time.Time{
			occupancy.Date(2020, time.January, 31), occupancy.Date(2020, time.February, 29),
		}},
		7: {AccountID: 7, SiteCode: "A", Lat: 1, Lon: 1, Dates: []time.Time{}},
	}

	fc, warnings, err := Encode(timelines, map[string]string{"A": "#000"})
	require.NoError(t, err)

	// 3 + 1 + 2 samples minus the 2 with NaN latitude
	assert.Len(t, fc.Features, 4)
	require.Len(t, warnings, 1)
	assert.Equal(t, occupancy.WarnInvalidCoordinates, warnings[0].Kind)
	assert.Equal(t, int64(5), warnings[0].AccountID)

	var ids []int64
	var last = map[int64]int64{}
	for _, f := range fc.Features {
		ids = append(ids, f.Properties.AccountID)
		ts := f.Properties.Times[0]
		assert.Greater(t, ts, last[f.Properties.AccountID])
		last[f.Properties.AccountID] = ts
	}
	assert.Equal(t, []int64{3, 9, 9, 9}, ids)
}

func TestEncode_MissingColorIsFatal(t *testing.T) {
	timelines := occupancy.Timelines{
		1: {AccountID: 1, SiteCode: "A", Lat: 1, Lon: 1, Dates: []time.Time{occupancy.Date(2020, time.January, 31)}},
	}

	_, _, err := Encode(timelines, map[string]string{"B": "#fff"})
	require.Error(t, err)
	assert.ErrorIs(t, err, occupancy.ErrMissingColor)

	// a facility without active accounts needs no color
	timelines[1].Dates = nil
	fc, _, err := Encode(timelines, map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}

func TestEncode_Idempotent(t *testing.T) {
	now := func() time.Time { return time.Date(2023, time.January, 10, 0, 0, 0, 0, time.UTC) }
	b := occupancy.Builder{Baseline: occupancy.Baseline, Now: now}
	facilities := map[string]occupancy.Facility{"A": {Code: "A", AcquiredOn: occupancy.Date(2019, time.January, 1)}}
	accounts := []occupancy.TenantAccount{
		{AccountID: 1, SiteCode: "A", Lat: 1, Lon: 1, MoveIn: occupancy.Date(2021, time.January, 1)},
		{AccountID: 2, SiteCode: "A", Lat: 2, Lon: 2, MoveIn: occupancy.Date(2022, time.January, 1)},
		{AccountID: 3, SiteCode: "A", Lat: 3, Lon: 3, MoveIn: occupancy.Date(2020, time.January, 1)},
	}

	run := func() FeatureCollection {
		tl, _, err := b.Build(accounts, facilities)
		require.NoError(t, err)
		fc, _, err := Encode(tl, map[string]string{"A": "#111"})
		require.NoError(t, err)
		return fc
	}
	first, second := run(), run()
	assert.Equal(t, first, second)

	total := 0
	tl, _, _ := b.Build(accounts, facilities)
	for _, x := range tl {
		total += len(x.Dates)
	}
	assert.Len(t, first.Features, total)
}

func TestMarkers(t *testing.T) {
	facilities := map[string]occupancy.Facility{
		"RD01": {Code: "RD01", Lat: 34.0522, Lon: -118.2437},
	}
	accounts := []occupancy.TenantAccount{
		{AccountID: 1, SiteCode: "RD01", Lat: 34.0522, Lon: -118.2437},
		{AccountID: 2, SiteCode: "RD01", Lat: 34.1, Lon: -118.3, BadDebt: true, WriteOffs: 1250},
		{AccountID: 3, SiteCode: "RD01", Lat: math.Inf(1), Lon: 0},
	}
	colors := map[string]string{"RD01": "#34ECF4"}

	t.Run("current view", func(t *testing.T) {
		markers, warnings, err := Markers(accounts, colors, MarkerOptions{Facilities: facilities})
		require.NoError(t, err)
		require.Len(t, markers, 2)
		require.Len(t, warnings, 1)
		assert.Equal(t, int64(3), warnings[0].AccountID)

		assert.Equal(t, "#34ECF4", markers[1].Color)
		assert.False(t, markers[1].BadDebt)
		assert.Equal(t, 0.0, markers[0].DistanceMiles)
		assert.Greater(t, markers[1].DistanceMiles, 3.0)
		assert.Less(t, markers[1].DistanceMiles, 6.0)
	})

	t.Run("bad debt highlight", func(t *testing.T) {
		markers, _, err := Markers(accounts, colors, MarkerOptions{HighlightBadDebt: true, BadDebtColor: "#FF0000"})
		require.NoError(t, err)
		require.Len(t, markers, 2)
		assert.Equal(t, "#34ECF4", markers[0].Color)
		assert.Equal(t, "#FF0000", markers[1].Color)
		assert.True(t, markers[1].BadDebt)
		assert.Equal(t, "RD01 account 2 (bad debt $1,250.00)", markers[1].Popup)
		assert.Zero(t, markers[1].DistanceMiles)
	})

	t.Run("missing facility color", func(t *testing.T) {
		_, _, err := Markers(accounts, map[string]string{}, MarkerOptions{})
		assert.ErrorIs(t, err, occupancy.ErrMissingColor)
	})
}
