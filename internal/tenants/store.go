package tenants

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Store interface {
	Facilities(ctx context.Context) ([]Facility, error)
	TenantsAt(ctx context.Context, rds []string) ([]Tenant, error)
}

type DBStore struct {
	DB *gorm.DB
}

func (s DBStore) Facilities(ctx context.Context) ([]Facility, error) {
	var facilities []Facility
	err := s.DB.WithContext(ctx).
		Order("rd").
		Find(&facilities).Error
	return facilities, err
}

// TenantsAt returns every occupancy, current or former, at the given
// facilities. Rows of one account are ordered oldest move-in first.
func (s DBStore) TenantsAt(ctx context.Context, rds []string) ([]Tenant, error) {
	var tenants []Tenant
	if len(rds) == 0 {
		return tenants, nil
	}
	err := s.DB.WithContext(ctx).
		Where("site_code = ANY(?)", pq.Array(rds)).
		Order("id, move_in_date NULLS FIRST, occupancy_id").
		Find(&tenants).Error
	return tenants, err
}
