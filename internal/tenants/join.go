package tenants

import (
	"github.com/geotenants/geo-tenants-backend/internal/accounts"
	"github.com/geotenants/geo-tenants-backend/internal/occupancy"
)

// JoinGeocoded keeps the rows of the selected facilities that the view
// draws and attaches each one's geocode. Rows whose account is not in the
// lookup are skipped with a warning.
func JoinGeocoded(rows []Tenant, rds []string, view ViewMode, lookup accounts.Lookup) ([]occupancy.TenantAccount, []occupancy.Warning) {
	selected := make(map[string]struct{}, len(rds))
	for _, rd := range rds {
		selected[rd] = struct{}{}
	}

	out := make([]occupancy.TenantAccount, 0, len(rows))
	var warnings []occupancy.Warning

	for _, t := range rows {
		if _, ok := selected[t.SiteCode]; !ok || !view.includes(t) {
			continue
		}
		geo, ok := lookup.Get(t.ID)
		if !ok {
			warnings = append(warnings, occupancy.Warning{
				Kind:      occupancy.WarnMissingGeocode,
				AccountID: t.ID,
				SiteCode:  t.SiteCode,
				Detail:    "account not in geocoding cache",
			})
			continue
		}

		a := occupancy.TenantAccount{
			AccountID:  t.ID,
			SiteCode:   t.SiteCode,
			Lat:        geo.Lat,
			Lon:        geo.Lon,
			FullFIPS:   geo.FullFIPS,
			MovedOutAt: t.MovedOutAt,
			BadDebt:    t.BadDebt,
			WriteOffs:  t.WriteOffs,
		}
		if t.MoveInDate != nil {
			a.MoveIn = *t.MoveInDate
		}
		out = append(out, a)
	}

	return out, warnings
}

// latestPerAccount keeps one row per account for the snapshot views. The
// last row wins, matching the timeline merge.
func latestPerAccount(rows []occupancy.TenantAccount) []occupancy.TenantAccount {
	idx := make(map[int64]int, len(rows))
	out := make([]occupancy.TenantAccount, 0, len(rows))
	for _, r := range rows {
		if i, ok := idx[r.AccountID]; ok {
			out[i] = r
			continue
		}
		idx[r.AccountID] = len(out)
		out = append(out, r)
	}
	return out
}
