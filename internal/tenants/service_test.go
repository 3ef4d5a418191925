package tenants

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/accounts"
	"github.com/geotenants/geo-tenants-backend/internal/config"
	"github.com/geotenants/geo-tenants-backend/internal/occupancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	facilities []Facility
	tenants    []Tenant
	err        error
}

func (f fakeStore) Facilities(ctx context.Context) ([]Facility, error) {
	return f.facilities, f.err
}

func (f fakeStore) TenantsAt(ctx context.Context, rds []string) ([]Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := map[string]bool{}
	for _, rd := range rds {
		want[rd] = true
	}
	var out []Tenant
	for _, t := range f.tenants {
		if want[t.SiteCode] {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeLookup struct {
	lookup accounts.Lookup
	err    error
}

func (f fakeLookup) Snapshot(ctx context.Context) (accounts.Lookup, error) {
	return f.lookup, f.err
}

func day(y int, m time.Month, d int) *time.Time {
	t := occupancy.Date(y, m, d)
	return &t
}

func fixtureStore() fakeStore {
	return fakeStore{
		facilities: []Facility{
			{RD: "RD01", Latitude: 30.2672, Longitude: -97.7431, AcqDate: occupancy.Date(2018, time.January, 1)},
			{RD: "RD02", Latitude: 30.5083, Longitude: -97.6789, AcqDate: occupancy.Date(2020, time.January, 15)},
		},
		tenants: []Tenant{
			{ID: 1, SiteCode: "RD01", MoveInDate: day(2019, time.March, 1)},
			{ID: 2, SiteCode: "RD01", MoveInDate: day(2019, time.June, 10), MovedOut: true, MovedOutAt: day(2019, time.August, 31), BadDebt: true, WriteOffs: 1250},
			{ID: 3, SiteCode: "RD02", MoveInDate: day(2019, time.December, 1), MovedOut: true, MovedOutAt: day(2020, time.March, 5)},
			{ID: 4, SiteCode: "RD02", MoveInDate: day(2021, time.May, 2)},
			{ID: 5, SiteCode: "RD02", MoveInDate: day(2021, time.May, 2)},
		},
	}
}

func fixtureLookup() fakeLookup {
	return fakeLookup{lookup: accounts.Lookup{
		1: {Lat: 30.28, Lon: -97.75},
		2: {Lat: 30.29, Lon: -97.73},
		3: {Lat: 30.51, Lon: -97.68},
		4: {Lat: 30.52, Lon: -97.66},
		// 5 is missing from the geocoding cache.
	}}
}

func newTestService(t *testing.T, store Store, lookup AccountLookup) *Service {
	t.Helper()
	svc, err := NewService(store, lookup, config.DefaultMapConfig())
	require.NoError(t, err)
	svc.Builder.Now = func() time.Time { return time.Date(2021, time.June, 15, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestBuildMap_EmptySelection(t *testing.T) {
	svc := newTestService(t, fixtureStore(), fixtureLookup())

	_, err := svc.BuildMap(context.Background(), MapRequest{View: ViewCurrent})
	assert.ErrorIs(t, err, occupancy.ErrEmptySelection)
}

func TestBuildMap_UnknownFacility(t *testing.T) {
	svc := newTestService(t, fixtureStore(), fixtureLookup())

	_, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD99"}, View: ViewCurrent})

	var cfgErr *occupancy.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "RD99", cfgErr.SiteCode)
	assert.ErrorIs(t, err, occupancy.ErrUnknownFacility)
}

func TestBuildMap_CurrentTenants(t *testing.T) {
	svc := newTestService(t, fixtureStore(), fixtureLookup())

	resp, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD02", "RD01"}, View: ViewCurrent})
	require.NoError(t, err)

	assert.Equal(t, LatLon{Lat: 30.5083, Lon: -97.6789}, resp.Center)
	assert.Equal(t, 11, resp.Zoom)
	assert.Equal(t, []LegendEntry{{RD: "RD02", Color: "#34ECF4"}, {RD: "RD01", Color: "#f43c34"}}, resp.Legend)
	require.Len(t, resp.Facilities, 2)
	assert.Equal(t, "rd_logo.png", resp.Facilities[0].Icon.Image)
	assert.Equal(t, "RD02", resp.Facilities[0].Popup)

	ids := map[int64]string{}
	for _, m := range resp.Markers {
		ids[m.AccountID] = m.Color
	}
	assert.Equal(t, map[int64]string{1: "#f43c34", 4: "#34ECF4"}, ids)
	assert.Nil(t, resp.Features)
	assert.Nil(t, resp.Animation)

	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, occupancy.WarnMissingGeocode, resp.Warnings[0].Kind)
	assert.Equal(t, int64(5), resp.Warnings[0].AccountID)
}

func TestBuildMap_HighlightBadDebt(t *testing.T) {
	svc := newTestService(t, fixtureStore(), fixtureLookup())

	resp, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD01"}, View: ViewHighlightBadDebt})
	require.NoError(t, err)

	require.Len(t, resp.Markers, 2)
	byID := map[int64]int{}
	for i, m := range resp.Markers {
		byID[m.AccountID] = i
	}
	bad := resp.Markers[byID[2]]
	assert.True(t, bad.BadDebt)
	assert.Equal(t, "#FF0000", bad.Color)
	assert.Equal(t, "RD01 account 2 (bad debt $1,250.00)", bad.Popup)

	current := resp.Markers[byID[1]]
	assert.False(t, current.BadDebt)
	assert.Equal(t, "#34ECF4", current.Color)
	assert.Greater(t, current.DistanceMiles, 0.0)
}

func TestBuildMap_TimeSeries(t *testing.T) {
	svc := newTestService(t, fixtureStore(), fixtureLookup())

	resp, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD01", "RD02"}, View: ViewTimeSeries})
	require.NoError(t, err)

	require.NotNil(t, resp.Animation)
	assert.Equal(t, "P1M", resp.Animation.Period)
	assert.Equal(t, 200, resp.Animation.TransitionTime)
	require.NotNil(t, resp.Window)
	assert.Equal(t, "2019-05-31", resp.Window.Start)
	assert.Equal(t, "2021-06-30", resp.Window.End)
	assert.Equal(t, 26, resp.Window.Samples)
	assert.Nil(t, resp.Markers)

	perAccount := map[int64][]string{}
	for _, f := range resp.Features.Features {
		perAccount[f.Properties.AccountID] = append(perAccount[f.Properties.AccountID], f.Properties.Timestamp)
	}

	// Account 2 moved in 2019-06-10 and out 2019-08-31 (exclusive).
	assert.Equal(t, []string{"2019-06-30", "2019-07-31"}, perAccount[2])
	// Account 3 moved in before RD02 was acquired; its move-in clamps to 2020-01-15.
	assert.Equal(t, []string{"2020-01-31", "2020-02-29"}, perAccount[3])
	// Account 4 is still active at the window end.
	assert.Equal(t, []string{"2021-05-31", "2021-06-30"}, perAccount[4])
	assert.Len(t, perAccount[1], 26)
	assert.NotContains(t, perAccount, int64(5))
}

func TestBuildMap_TimeSeriesNoTenants(t *testing.T) {
	store := fixtureStore()
	store.tenants = nil
	svc := newTestService(t, store, fixtureLookup())

	resp, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD01"}, View: ViewTimeSeries})
	require.NoError(t, err)
	require.NotNil(t, resp.Features)
	assert.Empty(t, resp.Features.Features)
	assert.Nil(t, resp.Window)
}

func TestBuildMap_TimeSeriesMissingMoveIn(t *testing.T) {
	store := fixtureStore()
	store.tenants = append(store.tenants, Tenant{ID: 1, SiteCode: "RD01"})
	svc := newTestService(t, store, fixtureLookup())

	_, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD01"}, View: ViewTimeSeries})
	assert.ErrorIs(t, err, occupancy.ErrMissingMoveIn)
}

func TestBuildMap_AccountsUnavailable(t *testing.T) {
	svc := newTestService(t, fixtureStore(), fakeLookup{err: errors.New("redis down")})

	_, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD01"}, View: ViewCurrent})
	assert.ErrorIs(t, err, ErrAccountsUnavailable)
}

func TestBuildMap_DuplicateSelection(t *testing.T) {
	svc := newTestService(t, fixtureStore(), fixtureLookup())

	resp, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD01", "RD01"}, View: ViewCurrent})
	require.NoError(t, err)
	assert.Len(t, resp.Legend, 1)
}

func TestViewIncludes(t *testing.T) {
	current := Tenant{}
	formerBad := Tenant{MovedOut: true, BadDebt: true}
	former := Tenant{MovedOut: true}

	assert.True(t, ViewCurrent.includes(current))
	assert.False(t, ViewCurrent.includes(formerBad))

	assert.True(t, ViewTimeSeries.includes(former))

	assert.True(t, ViewHighlightBadDebt.includes(current))
	assert.True(t, ViewHighlightBadDebt.includes(formerBad))
	assert.False(t, ViewHighlightBadDebt.includes(former))
}

func TestParseViewMode(t *testing.T) {
	v, err := ParseViewMode("Time Series of Tenants")
	require.NoError(t, err)
	assert.Equal(t, ViewTimeSeries, v)

	_, err = ParseViewMode("Heatmap")
	assert.Error(t, err)
}

func TestBuildMap_AccountWithTwoOccupancies(t *testing.T) {
	store := fixtureStore()
	store.tenants = []Tenant{
		{OccupancyID: 10, ID: 42, SiteCode: "RD01", MoveInDate: day(2020, time.January, 1), MovedOut: true, MovedOutAt: day(2020, time.June, 15)},
		{OccupancyID: 11, ID: 42, SiteCode: "RD02", MoveInDate: day(2021, time.January, 1)},
	}
	lookup := fakeLookup{lookup: accounts.Lookup{42: {Lat: 30.4, Lon: -97.7}}}
	svc := newTestService(t, store, lookup)

	resp, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD01", "RD02"}, View: ViewTimeSeries})
	require.NoError(t, err)

	var dates []string
	for _, f := range resp.Features.Features {
		require.Equal(t, int64(42), f.Properties.AccountID)
		dates = append(dates, f.Properties.Timestamp)
	}
	assert.Equal(t, []string{
		"2020-01-31", "2020-02-29", "2020-03-31", "2020-04-30", "2020-05-31",
		"2021-01-31", "2021-02-28", "2021-03-31", "2021-04-30", "2021-05-31", "2021-06-30",
	}, dates)

	// The later occupancy supplies the site of the merged timeline.
	assert.Equal(t, "RD02", resp.Features.Features[0].Properties.SiteCode)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, occupancy.WarnConflictingDuplicate, resp.Warnings[0].Kind)
}

func TestBuildMap_SnapshotShowsOneMarkerPerAccount(t *testing.T) {
	store := fixtureStore()
	store.tenants = []Tenant{
		{OccupancyID: 10, ID: 42, SiteCode: "RD01", MoveInDate: day(2020, time.January, 1)},
		{OccupancyID: 11, ID: 42, SiteCode: "RD02", MoveInDate: day(2021, time.January, 1)},
	}
	lookup := fakeLookup{lookup: accounts.Lookup{42: {Lat: 30.4, Lon: -97.7}}}
	svc := newTestService(t, store, lookup)

	resp, err := svc.BuildMap(context.Background(), MapRequest{RDs: []string{"RD01", "RD02"}, View: ViewCurrent})
	require.NoError(t, err)
	require.Len(t, resp.Markers, 1)
	assert.Equal(t, "RD02", resp.Markers[0].SiteCode)
}
