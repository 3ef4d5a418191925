package auth

import (
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "app_auth"); err != nil {
		log.Fatal("Failed to ensure schema app_auth: ", err)
	}

	if err := db.DB.AutoMigrate(&Session{}); err != nil {
		log.Fatal("Failed to auto-migrate tables: ", err)
	}
}

// PruneLimiter forgets login clients idle for an hour; run from the scheduler.
func (h *Handler) PruneLimiter() {
	if h.Limiter == nil {
		return
	}
	if n := h.Limiter.Prune(time.Now().Add(-time.Hour)); n > 0 {
		log.WithField("count", n).Debug("Pruned idle login rate limiters")
	}
}

// PurgeExpired drops sessions past their expiry; run from the scheduler.
func PurgeExpired(store SessionStore) {
	n, err := store.DeleteExpired(time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to purge expired sessions")
		return
	}
	if n > 0 {
		log.WithField("count", n).Info("Purged expired sessions")
	}
}
