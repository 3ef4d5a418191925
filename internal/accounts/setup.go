package accounts

import "github.com/geotenants/geo-tenants-backend/internal/db"

func Init() {
	if err := db.EnsureSchema(db.DB, "accounts"); err != nil {
		log.Fatal("Failed to ensure schema accounts: ", err)
	}

	if err := db.DB.AutoMigrate(&MasterAccount{}); err != nil {
		log.Fatal("Failed to auto-migrate tables: ", err)
	}
}
