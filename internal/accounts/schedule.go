package accounts

import (
	"context"

	cron "github.com/robfig/cron/v3"
)

// RefreshSpec runs the forced reload daily at 05:00 in the cron's location.
const RefreshSpec = "0 5 * * *"

// Schedule registers the daily forced refresh on c.
func Schedule(c *cron.Cron, cache *Cache) (cron.EntryID, error) {
	return c.AddFunc(RefreshSpec, func() {
		if err := cache.Refresh(context.Background(), true); err != nil {
			log.WithError(err).Error("Scheduled account refresh failed")
		}
	})
}
