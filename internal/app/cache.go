package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/marquee-live/marquee/internal/domain/model"
)

// projectionCache memoizes projection results keyed by catalog version and
// window bounds. Re-projection on every render is the dominant cost risk,
// and a version bump invalidates every stale key naturally.
type projectionCache struct {
	mu      sync.Mutex
	entries map[string][]model.Occurrence
	order   []string // insertion order for FIFO eviction
	maxSize int
}

func newProjectionCache(maxSize int) *projectionCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &projectionCache{
		entries: make(map[string][]model.Occurrence, maxSize),
		maxSize: maxSize,
	}
}

// cacheKey includes the zone offsets via RFC3339 so windows with equal
// instants but different locations do not collide: day enumeration is
// location-dependent.
func cacheKey(version uint64, w model.Window, filter model.EntityType) string {
	return strconv.FormatUint(version, 10) + "|" +
		w.Start.Format(time.RFC3339Nano) + "|" +
		w.End.Format(time.RFC3339Nano) + "|" +
		string(filter)
}

func (c *projectionCache) get(key string) ([]model.Occurrence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	occ, ok := c.entries[key]
	return occ, ok
}

func (c *projectionCache) put(key string, occ []model.Occurrence) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = occ
		return
	}
	if len(c.entries) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = occ
	c.order = append(c.order, key)
}

func (c *projectionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
