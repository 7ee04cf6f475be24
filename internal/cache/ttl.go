// Package cache holds the in-process result cache shared by the flights and weather pipelines.
//
// Each pipeline stores exactly one entry under a fixed key. Entries expire passively on read.
// Clear drops everything, including results of loads that are still in flight.
package cache

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/airport-board/internal/clock"
)

const maxEntries = 16

// TTL is a concurrency-safe cache with per-entry expiry and per-key single-flight loading.
type TTL struct {
	gc    gcache.Cache
	group singleflight.Group

	// generation is bumped by Clear so loads started before it are not stored.
	generation atomic.Uint64
}

// New creates a cache reading time from clk. A nil clk uses the system clock.
func New(clk clock.Clock) *TTL {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TTL{
		gc: gcache.New(maxEntries).Simple().Clock(clk).Build(),
	}
}

// Get returns the live value for key.
func (c *TTL) Get(key string) (any, bool) {
	v, err := c.gc.Get(key)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Set stores value for ttl. A non-positive ttl stores nothing.
func (c *TTL) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	_ = c.gc.SetWithExpire(key, value, ttl)
}

// Clear removes every entry.
func (c *TTL) Clear() {
	c.generation.Add(1)
	c.gc.Purge()
}

// Len reports the number of live entries. Expiry is judged by the cache's clock, so every key
// is re-read through Get.
func (c *TTL) Len() int {
	n := 0
	for _, key := range c.gc.Keys(false) {
		k, ok := key.(string)
		if !ok {
			continue
		}
		if _, live := c.Get(k); live {
			n++
		}
	}
	return n
}

// LoadFunc produces a value and how long it may be cached.
type LoadFunc func() (any, time.Duration, error)

// Load returns the cached value for key or runs load once for all concurrent callers of
// the same key. Errors are returned to every waiter and never cached.
func (c *TTL) Load(key string, load LoadFunc) (value any, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		gen := c.generation.Load()
		v, ttl, err := load()
		if err != nil {
			return nil, err
		}
		if c.generation.Load() == gen {
			c.Set(key, v, ttl)
		}
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

var errType = errors.New("cached value has unexpected type")

// Fetch is a typed wrapper around TTL.Load.
func Fetch[V any](c *TTL, key string, load func() (V, time.Duration, error)) (V, bool, error) {
	var zero V
	v, hit, err := c.Load(key, func() (any, time.Duration, error) {
		val, ttl, err := load()
		return val, ttl, err
	})
	if err != nil {
		return zero, false, err
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false, fmt.Errorf("%w: key %q holds %T", errType, key, v)
	}
	return typed, hit, nil
}
