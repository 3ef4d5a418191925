package tenants

import "github.com/geotenants/geo-tenants-backend/internal/db"

func Init() {
	if err := db.EnsureSchema(db.DB, "tenants"); err != nil {
		log.Fatal("Failed to ensure schema tenants: ", err)
	}

	if err := db.DB.AutoMigrate(&Facility{}, &Tenant{}); err != nil {
		log.Fatal("Failed to auto-migrate tables: ", err)
	}
}
