/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schemacache

import (
	"container/list"
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/logger"
	"github.com/suparena/partitionstore/schema"
)

// BuildFunc produces the artifact for a key on a cache miss.
type BuildFunc func() (*schema.Artifact, error)

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Entries       int
	Hits          uint64
	Misses        uint64
	Builds        uint64
	BuildFailures uint64
	Evictions     uint64
}

type entry struct {
	key            schema.Key
	artifact       *schema.Artifact
	createdAt      time.Time
	lastAccessedAt time.Time
	elem           *list.Element
}

// Cache maps schema keys to published artifacts.
//
// At most one build runs per key at any time. Callers asking for a key
// whose build is in flight wait for that build and share its result, and a
// failed build leaves the key absent so the next call retries. Artifacts are
// immutable, so callers keep using an artifact even after the cache has
// evicted it.
type Cache struct {
	mu      sync.Mutex
	entries map[schema.Key]*entry
	lru     *list.List

	flights singleflight.Group

	opts    Options
	log     *logger.Logger
	metrics *Metrics

	hits, misses, builds, failures, evictions atomic.Uint64
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	return &Cache{
		entries: make(map[schema.Key]*entry),
		lru:     list.New(),
		opts:    o,
		log:     o.Logger.With("component", "schemacache"),
		metrics: NewMetrics(o.Scope),
	}
}

// Get returns the published artifact for key without building.
func (c *Cache) Get(key schema.Key) (*schema.Artifact, bool) {
	a, ok := c.lookup(key)
	if ok {
		c.hits.Add(1)
		c.metrics.Hits.Inc(1)
	}
	return a, ok
}

// GetOrBuild returns the artifact for key, invoking build on a miss.
//
// If ctx is done while waiting, GetOrBuild returns ctx.Err() but the build
// keeps running and publishes for every other waiter.
func (c *Cache) GetOrBuild(ctx context.Context, key schema.Key, build BuildFunc) (*schema.Artifact, error) {
	if a, ok := c.Get(key); ok {
		return a, nil
	}
	c.misses.Add(1)
	c.metrics.Misses.Inc(1)

	ch := c.flights.DoChan(key.String(), func() (interface{}, error) {
		return c.buildAndPublish(key, build)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*schema.Artifact), nil
	case <-ctx.Done():
		c.metrics.Abandoned.Inc(1)
		c.log.Debug("stopped waiting for schema build", "key", key.String(), "error", ctx.Err())
		return nil, ctx.Err()
	}
}

// buildAndPublish runs inside a single flight for key.
func (c *Cache) buildAndPublish(key schema.Key, build BuildFunc) (*schema.Artifact, error) {
	// A flight for key may have published and finished between our miss
	// and joining the group; never build a key twice.
	if a, ok := c.lookup(key); ok {
		return a, nil
	}

	c.builds.Add(1)
	c.metrics.Builds.Inc(1)
	sw := c.metrics.BuildDuration.Start()
	a, err := runBuild(key, build)
	sw.Stop()
	if err != nil {
		c.failures.Add(1)
		c.metrics.BuildFailures.Inc(1)
		c.log.Warn("schema build failed", "key", key.String(), "error", err)
		return nil, err
	}

	c.publish(key, a)
	c.log.Debug("schema built", "key", key.String(), "table", a.TableName())
	return a, nil
}

func runBuild(key schema.Key, build BuildFunc) (a *schema.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, errors.NewBuildFailureError(key.String(), fmt.Errorf("panic: %v", r))
		}
	}()
	a, err = build()
	switch {
	case err != nil:
		if errors.IsValidationFailure(err) || errors.IsBuildFailure(err) {
			return nil, err
		}
		return nil, errors.NewBuildFailureError(key.String(), err)
	case a == nil:
		return nil, errors.NewBuildFailureError(key.String(), fmt.Errorf("builder returned no artifact"))
	case a.Key() != key:
		return nil, errors.NewBuildFailureError(key.String(), fmt.Errorf("builder returned artifact for %s", a.Key()))
	}
	return a, nil
}

func (c *Cache) lookup(key schema.Key) (*schema.Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	now := c.opts.Clock()
	if c.opts.TTL > 0 && now.Sub(e.createdAt) >= c.opts.TTL {
		c.removeLocked(e)
		c.log.Debug("schema expired", "key", key.String())
		return nil, false
	}
	e.lastAccessedAt = now
	c.lru.MoveToFront(e.elem)
	return e.artifact, true
}

func (c *Cache) publish(key schema.Key, a *schema.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Clock()
	if old, ok := c.entries[key]; ok {
		c.lru.Remove(old.elem)
	}
	e := &entry{key: key, artifact: a, createdAt: now, lastAccessedAt: now}
	e.elem = c.lru.PushFront(e)
	c.entries[key] = e

	for c.opts.MaxEntries > 0 && len(c.entries) > c.opts.MaxEntries {
		oldest := c.lru.Back().Value.(*entry)
		c.removeLocked(oldest)
		c.log.Debug("schema evicted", "key", oldest.key.String())
	}
	c.metrics.Entries.Update(float64(len(c.entries)))
}

// removeLocked drops e and counts an eviction. c.mu must be held.
func (c *Cache) removeLocked(e *entry) {
	c.lru.Remove(e.elem)
	delete(c.entries, e.key)
	c.evictions.Add(1)
	c.metrics.Evictions.Inc(1)
	c.metrics.Entries.Update(float64(len(c.entries)))
}

// Invalidate removes key. It reports whether an artifact was cached. A build
// already in flight for key still publishes when it completes.
func (c *Cache) Invalidate(key schema.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.lru.Remove(e.elem)
	delete(c.entries, key)
	c.metrics.Entries.Update(float64(len(c.entries)))
	return true
}

// EvictExpired drops every entry older than the TTL and returns how many
// were removed. It is a no-op without a TTL.
func (c *Cache) EvictExpired() int {
	if c.opts.TTL <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Clock()
	n := 0
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		e := el.Value.(*entry)
		if now.Sub(e.createdAt) >= c.opts.TTL {
			c.removeLocked(e)
			n++
		}
		el = prev
	}
	return n
}

// Clear empties the cache. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[schema.Key]*entry)
	c.lru.Init()
	c.metrics.Entries.Update(0)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys ordered by their string form.
func (c *Cache) Keys() []schema.Key {
	c.mu.Lock()
	keys := make([]schema.Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

func (c *Cache) Stats() Stats {
	return Stats{
		Entries:       c.Len(),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Builds:        c.builds.Load(),
		BuildFailures: c.failures.Load(),
		Evictions:     c.evictions.Load(),
	}
}
