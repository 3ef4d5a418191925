package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// CSV contracts
//   facilities: rd,latitude,longitude,acq_date
//   tenants:    id,site_code,move_in_date,moved_out,moved_out_at,bad_debt,write_offs
//   accounts:   account_id,lat,lng,full_fips
// Dates are YYYY-MM-DD; moved_out_at also accepts RFC 3339. Empty dates are NULL.
// A tenants row is one occupancy; the same id may repeat for other stays.

type FacilityCSV struct {
	RD        string
	Latitude  float64
	Longitude float64
	AcqDate   time.Time
}

type TenantCSV struct {
	ID         int64
	SiteCode   string
	MoveInDate *time.Time
	MovedOut   bool
	MovedOutAt *time.Time
	BadDebt    bool
	WriteOffs  float64
}

type AccountCSV struct {
	AccountID int64
	Lat       float64
	Lng       float64
	FullFIPS  string
}

func readTable(src io.Reader, required []string, fn func(line int, get func(string) string) error) error {
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	for _, k := range required {
		if _, ok := idx[k]; !ok {
			return fmt.Errorf("missing required column: %s", k)
		}
	}

	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("csv read: %w", err)
		}
		get := func(col string) string {
			return strings.TrimSpace(rec[idx[col]])
		}
		if err := fn(line, get); err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
	}
}

func parseFacilities(src io.Reader) ([]FacilityCSV, error) {
	var out []FacilityCSV
	err := readTable(src, []string{"rd", "latitude", "longitude", "acq_date"}, func(_ int, get func(string) string) error {
		var row FacilityCSV
		var err error
		if row.RD = get("rd"); row.RD == "" {
			return errors.New("rd is empty")
		}
		if row.Latitude, err = strconv.ParseFloat(get("latitude"), 64); err != nil {
			return fmt.Errorf("latitude: %w", err)
		}
		if row.Longitude, err = strconv.ParseFloat(get("longitude"), 64); err != nil {
			return fmt.Errorf("longitude: %w", err)
		}
		acq, err := parseDate(get("acq_date"))
		if err != nil || acq == nil {
			return fmt.Errorf("acq_date: invalid %q", get("acq_date"))
		}
		row.AcqDate = *acq
		out = append(out, row)
		return nil
	})
	return out, err
}

func parseTenants(src io.Reader) ([]TenantCSV, error) {
	var out []TenantCSV
	cols := []string{"id", "site_code", "move_in_date", "moved_out", "moved_out_at", "bad_debt", "write_offs"}
	err := readTable(src, cols, func(_ int, get func(string) string) error {
		var row TenantCSV
		var err error
		if row.ID, err = strconv.ParseInt(get("id"), 10, 64); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		if row.SiteCode = get("site_code"); row.SiteCode == "" {
			return errors.New("site_code is empty")
		}
		if row.MoveInDate, err = parseDate(get("move_in_date")); err != nil {
			return fmt.Errorf("move_in_date: %w", err)
		}
		if row.MovedOut, err = parseBool(get("moved_out")); err != nil {
			return fmt.Errorf("moved_out: %w", err)
		}
		if row.MovedOutAt, err = parseDate(get("moved_out_at")); err != nil {
			return fmt.Errorf("moved_out_at: %w", err)
		}
		if row.BadDebt, err = parseBool(get("bad_debt")); err != nil {
			return fmt.Errorf("bad_debt: %w", err)
		}
		if v := get("write_offs"); v != "" {
			if row.WriteOffs, err = strconv.ParseFloat(v, 64); err != nil {
				return fmt.Errorf("write_offs: %w", err)
			}
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

func parseAccounts(src io.Reader) ([]AccountCSV, error) {
	var out []AccountCSV
	err := readTable(src, []string{"account_id", "lat", "lng", "full_fips"}, func(_ int, get func(string) string) error {
		var row AccountCSV
		var err error
		if row.AccountID, err = strconv.ParseInt(get("account_id"), 10, 64); err != nil {
			return fmt.Errorf("account_id: %w", err)
		}
		if row.Lat, err = strconv.ParseFloat(get("lat"), 64); err != nil {
			return fmt.Errorf("lat: %w", err)
		}
		if row.Lng, err = strconv.ParseFloat(get("lng"), 64); err != nil {
			return fmt.Errorf("lng: %w", err)
		}
		row.FullFIPS = get("full_fips")
		out = append(out, row)
		return nil
	})
	return out, err
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// parseBool accepts the spellings spreadsheet exports produce. Empty is false.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "f", "false", "no", "n":
		return false, nil
	case "1", "t", "true", "yes", "y":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func validateFacilities(rows []FacilityCSV) error {
	seen := make(map[string]struct{}, len(rows))
	for i, r := range rows {
		if _, dup := seen[r.RD]; dup {
			return fmt.Errorf("row %d: duplicate rd '%s'", i+2, r.RD)
		}
		seen[r.RD] = struct{}{}
	}
	return nil
}

// occupancyKey identifies one stay. An account may appear on several rows
// as long as the stays differ.
type occupancyKey struct {
	id       int64
	siteCode string
	moveIn   string
}

func validateTenants(rows []TenantCSV, knownRDs map[string]struct{}) error {
	seen := make(map[occupancyKey]struct{}, len(rows))
	for i, r := range rows {
		k := occupancyKey{id: r.ID, siteCode: r.SiteCode}
		if r.MoveInDate != nil {
			k.moveIn = r.MoveInDate.Format(dateLayout)
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("row %d: duplicate occupancy for id %d at '%s' moving in '%s'", i+2, r.ID, r.SiteCode, k.moveIn)
		}
		seen[k] = struct{}{}
		if knownRDs != nil {
			if _, ok := knownRDs[r.SiteCode]; !ok {
				return fmt.Errorf("row %d: unknown site_code '%s'", i+2, r.SiteCode)
			}
		}
	}
	return nil
}
