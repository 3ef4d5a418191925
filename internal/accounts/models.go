package accounts

import "time"

// MasterAccount is one row of the geocoded account master list.
type MasterAccount struct {
	AccountID int64     `gorm:"primaryKey;autoIncrement:false;column:account_id" json:"account_id"`
	Lat       float64   `gorm:"column:lat" json:"lat"`
	Lng       float64   `gorm:"column:lng" json:"lng"`
	FullFIPS  string    `gorm:"column:full_fips" json:"full_fips"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MasterAccount) TableName() string { return "accounts.master_accounts" }

// Geocode is what the map needs from an account.
type Geocode struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	FullFIPS string  `json:"full_fips"`
}

// Lookup maps account id to its geocode. Treat as read-only.
type Lookup map[int64]Geocode

func (l Lookup) Get(id int64) (Geocode, bool) {
	g, ok := l[id]
	return g, ok
}

func buildLookup(rows []MasterAccount) Lookup {
	l := make(Lookup, len(rows))
	for _, r := range rows {
		l[r.AccountID] = Geocode{Lat: r.Lat, Lon: r.Lng, FullFIPS: r.FullFIPS}
	}
	return l
}
