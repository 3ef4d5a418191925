package tenants

import (
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/occupancy"
)

// Facility is a storage site, keyed by its RD code.
type Facility struct {
	RD        string    `gorm:"primaryKey;column:rd" json:"rd"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	AcqDate   time.Time `gorm:"column:acq_date;type:date;not null" json:"acq_date"`
}

func (Facility) TableName() string { return "tenants.facilities" }

func (f Facility) toOccupancy() occupancy.Facility {
	return occupancy.Facility{
		Code:       f.RD,
		Lat:        f.Latitude,
		Lon:        f.Longitude,
		AcquiredOn: f.AcqDate,
	}
}

// Tenant is one occupancy: an account renting at a facility from move-in to
// move-out. An account that moved between facilities, or left and came back,
// has several rows sharing ID. MoveInDate is nullable in the source data.
type Tenant struct {
	OccupancyID int64      `gorm:"primaryKey;column:occupancy_id" json:"occupancy_id"`
	ID          int64      `gorm:"index;not null;column:id" json:"id"`
	SiteCode    string     `gorm:"index;not null" json:"site_code"`
	MoveInDate  *time.Time `gorm:"type:date" json:"move_in_date"`
	MovedOut    bool       `gorm:"not null;default:false" json:"moved_out"`
	MovedOutAt  *time.Time `json:"moved_out_at"`
	BadDebt     bool       `gorm:"not null;default:false" json:"bad_debt"`
	WriteOffs   float64    `gorm:"not null;default:0" json:"write_offs"`
}

func (Tenant) TableName() string { return "tenants.tenants" }
