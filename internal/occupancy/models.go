package occupancy

import "time"

// Facility is a storage site ("RD") with fixed coordinates and the date the
// owner acquired it.
type Facility struct {
	Code       string    `json:"rd"`
	Lat        float64   `json:"latitude"`
	Lon        float64   `json:"longitude"`
	AcquiredOn time.Time `json:"acq_date"`
}

// TenantAccount is one occupancy row already joined with the geocoded account.
type TenantAccount struct {
	AccountID  int64      `json:"account_id"`
	SiteCode   string     `json:"site_code"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	FullFIPS   string     `json:"full_fips"`
	MoveIn     time.Time  `json:"move_in_date"`
	MovedOutAt *time.Time `json:"moved_out_at,omitempty"`
	BadDebt    bool       `json:"bad_debt"`
	WriteOffs  float64    `json:"write_offs"`
}

// Timeline is the set of month-end sample dates during which an account was
// an active tenant, in ascending order.
type Timeline struct {
	AccountID int64       `json:"account_id"`
	SiteCode  string      `json:"site_code"`
	Lat       float64     `json:"lat"`
	Lon       float64     `json:"lon"`
	FullFIPS  string      `json:"full_fips"`
	Dates     []time.Time `json:"dates"`
}

// Timelines is keyed by account id.
type Timelines map[int64]*Timeline

// Window is the inclusive reporting range and its month-end samples.
type Window struct {
	Start   time.Time
	End     time.Time
	Samples []time.Time
}
