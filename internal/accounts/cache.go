package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/logging"
)

// DefaultMaxAge is how long a snapshot is served before a reload.
const DefaultMaxAge = 24 * time.Hour

var log = logging.Module("accounts")

// Snapshot is an immutable lookup and the time it was read from the source.
type Snapshot struct {
	LoadedAt time.Time `json:"loaded_at"`
	Accounts Lookup    `json:"accounts"`
}

func (s Snapshot) age(now time.Time) time.Duration {
	return now.Sub(s.LoadedAt)
}

// Cache serves the account geocoding lookup, reloading it from Source at
// most once per MaxAge unless forced. Mirror is optional.
type Cache struct {
	Source Source
	Mirror Mirror
	MaxAge time.Duration
	Now    func() time.Time

	// refreshMu serializes reloads; mu guards snap.
	refreshMu sync.Mutex
	mu        sync.RWMutex
	snap      *Snapshot
}

func NewCache(source Source, mirror Mirror) *Cache {
	return &Cache{
		Source: source,
		Mirror: mirror,
		MaxAge: DefaultMaxAge,
		Now:    time.Now,
	}
}

func (c *Cache) current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) set(s Snapshot) {
	c.mu.Lock()
	c.snap = &s
	c.mu.Unlock()
}

// Snapshot returns the lookup, loading or refreshing it first if needed.
func (c *Cache) Snapshot(ctx context.Context) (Lookup, error) {
	if s := c.current(); s != nil && s.age(c.Now()) < c.MaxAge {
		return s.Accounts, nil
	}
	snap, err := c.refresh(ctx, false)
	if err != nil {
		// Serve stale data over failing the request.
		if s := c.current(); s != nil {
			log.WithError(err).Warn("Account refresh failed, serving stale snapshot")
			return s.Accounts, nil
		}
		return nil, err
	}
	return snap.Accounts, nil
}

// LoadedAt reports when the current snapshot was read; zero before the first load.
func (c *Cache) LoadedAt() time.Time {
	if s := c.current(); s != nil {
		return s.LoadedAt
	}
	return time.Time{}
}

// Refresh reloads the lookup when it is older than MaxAge, or always when
// force is set.
func (c *Cache) Refresh(ctx context.Context, force bool) error {
	_, err := c.refresh(ctx, force)
	return err
}

// refresh returns the snapshot in effect when it finishes, which a concurrent
// Invalidate may already have cleared from the cache.
func (c *Cache) refresh(ctx context.Context, force bool) (Snapshot, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	now := c.Now()
	if !force {
		if s := c.current(); s != nil && s.age(now) < c.MaxAge {
			return *s, nil
		}
		if s, ok := c.fromMirror(ctx, now); ok {
			c.set(s)
			log.WithField("accounts", len(s.Accounts)).Info("Account cache hydrated from redis")
			return s, nil
		}
	}

	rows, err := c.Source.LoadAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	s := Snapshot{LoadedAt: now, Accounts: buildLookup(rows)}
	c.set(s)
	log.WithField("accounts", len(s.Accounts)).Info("Account cache refreshed")

	if c.Mirror != nil {
		if err := c.Mirror.Store(ctx, s, c.MaxAge); err != nil {
			log.WithError(err).Warn("Failed to mirror account cache to redis")
		}
	}
	return s, nil
}

func (c *Cache) fromMirror(ctx context.Context, now time.Time) (Snapshot, bool) {
	if c.Mirror == nil {
		return Snapshot{}, false
	}
	s, ok, err := c.Mirror.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read account cache from redis")
		return Snapshot{}, false
	}
	if !ok || s.age(now) >= c.MaxAge {
		return Snapshot{}, false
	}
	return s, true
}

// Invalidate drops the mirrored copy so the next refresh reads the source.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
	if c.Mirror == nil {
		return nil
	}
	return c.Mirror.Drop(ctx)
}
