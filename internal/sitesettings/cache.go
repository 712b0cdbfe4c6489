package sitesettings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Cache is a single-owner settings cache with a validity window. Get serves
// the cached copy while fresh, refetches when stale or forced, and falls
// back to the stale copy when a refresh fails and a previous value exists,
// so dashboards keep rendering through an API hiccough. There is no
// background refresh goroutine; the clock is injected for tests.
type Cache struct {
	gw  Gateway
	ttl time.Duration
	log *slog.Logger
	now func() time.Time

	mu        sync.Mutex
	cached    *Settings
	fetchedAt time.Time
}

func NewCache(gw Gateway, ttl time.Duration, log *slog.Logger) *Cache {
	return &Cache{
		gw:  gw,
		ttl: ttl,
		log: log.With("component", "sitesettings"),
		now: time.Now,
	}
}

func (c *Cache) Get(ctx context.Context, forceRefresh bool) (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && c.cached != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return *c.cached, nil
	}

	settings, err := c.gw.Fetch(ctx)
	if err != nil {
		if c.cached != nil {
			c.log.WarnContext(ctx, "settings refresh failed, serving stale copy",
				"age", c.now().Sub(c.fetchedAt), "error", err)
			return *c.cached, nil
		}
		return Settings{}, fmt.Errorf("fetch site settings: %w", err)
	}

	c.cached = &settings
	c.fetchedAt = c.now()
	return settings, nil
}

// MinimumSessionFee satisfies the calculator's settings dependency.
func (c *Cache) MinimumSessionFee(ctx context.Context) (float64, error) {
	settings, err := c.Get(ctx, false)
	if err != nil {
		return 0, err
	}
	return settings.MinimumSessionFee, nil
}
