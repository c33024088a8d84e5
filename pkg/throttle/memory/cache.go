package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/pkg/metrics"
	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// CacheConfig holds configuration for an expiring Cache.
type CacheConfig struct {
	// Name labels the cache in logs and metrics.
	Name string

	// Clock decides when entries expire. Defaults to throttle.SystemClock.
	Clock throttle.Clock

	// JanitorInterval is how often expired entries are swept. Zero uses one
	// minute; a negative value disables the janitor.
	JanitorInterval time.Duration

	// Logger receives janitor activity. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics configures entry and eviction gauges. Disabled by default.
	Metrics metrics.Config
}

type entry struct {
	value      any
	expiration time.Time
}

// Cache is an in-process key/value store whose entries expire at an absolute
// time read from an injected Clock. Expired entries are invisible to readers
// immediately and are reclaimed by a cron-driven janitor.
type Cache struct {
	mu    sync.Mutex
	items map[string]entry

	name     string
	clock    throttle.Clock
	logger   *slog.Logger
	registry *metrics.Registry

	janitor   *cron.Cron
	closeOnce sync.Once
}

// NewCache creates a Cache and starts its janitor.
func NewCache(config CacheConfig) (*Cache, error) {
	if config.Name == "" {
		config.Name = "throttle"
	}
	if config.Clock == nil {
		config.Clock = throttle.SystemClock{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.JanitorInterval == 0 {
		config.JanitorInterval = time.Minute
	}

	c := &Cache{
		items:    make(map[string]entry),
		name:     config.Name,
		clock:    config.Clock,
		logger:   config.Logger.With("cache", config.Name),
		registry: metrics.Resolve(config.Metrics),
	}

	if config.JanitorInterval > 0 {
		c.janitor = cron.New()
		if _, err := c.janitor.AddFunc("@every "+config.JanitorInterval.String(), c.sweep); err != nil {
			return nil, bperrors.NewValidationError("memory", "janitorInterval", config.JanitorInterval, err.Error())
		}
		c.janitor.Start()
	}

	return c, nil
}

// expired reports whether e is past its expiration at now. A zero
// expiration never expires.
func (e entry) expired(now time.Time) bool {
	return !e.expiration.IsZero() && !now.Before(e.expiration)
}

// Get returns the value stored under key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Cache) getLocked(key string) (any, bool) {
	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.clock.Now()) {
		delete(c.items, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key until expiration. A zero expiration keeps the
// entry until it is removed.
func (c *Cache) Set(key string, value any, expiration time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: value, expiration: expiration}
}

// Update performs an atomic read-modify-write of key. fn receives the live
// value (found is false when the key is absent or expired) and returns the
// value to store and its expiration. The stored value is returned.
func (c *Cache) Update(key string, fn func(current any, found bool) (any, time.Time)) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, found := c.getLocked(key)
	value, expiration := fn(current, found)
	c.items[key] = entry{value: value, expiration: expiration}
	return value
}

// Remove deletes key.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of stored entries, including expired ones the
// janitor has not reclaimed yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// DeleteExpired removes every expired entry and returns how many were removed.
func (c *Cache) DeleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			removed++
		}
	}

	if c.registry != nil {
		c.registry.CacheEvictions.WithLabelValues(c.name).Add(float64(removed))
		c.registry.CacheEntries.WithLabelValues(c.name).Set(float64(len(c.items)))
	}
	return removed
}

func (c *Cache) sweep() {
	if n := c.DeleteExpired(); n > 0 {
		c.logger.Debug("swept expired entries", "removed", n)
	}
}

// Close stops the janitor. The cache stays readable.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		if c.janitor != nil {
			<-c.janitor.Stop().Done()
		}
	})
}
