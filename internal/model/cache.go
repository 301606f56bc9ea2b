package model

import (
	"context"
	"math"
	"sync"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/couchcryptid/aqi-warning-service/internal/observability"
)

// CachedModel wraps a PredictiveModel with an in-memory LRU of predictions
// and a one-time copy of the importances. The wrapped model must be
// deterministic.
type CachedModel struct {
	inner   domain.PredictiveModel
	cache   *lruCache[[domain.PollutantCount]float64, float64]
	metrics *observability.Metrics

	mu          sync.Mutex
	importances []domain.ImportanceEntry
}

// NewCachedModel creates a cache decorator holding up to maxEntries predictions.
func NewCachedModel(inner domain.PredictiveModel, maxEntries int, metrics *observability.Metrics) *CachedModel {
	return &CachedModel{
		inner:   inner,
		cache:   newLRUCache[[domain.PollutantCount]float64, float64](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedModel) Predict(ctx context.Context, reading domain.PollutantReading) (float64, error) {
	// Non-finite features never compare equal and would only fill the cache.
	if reading.Validate() != nil {
		return c.inner.Predict(ctx, reading)
	}

	key := reading.Features()
	if v, ok := c.cache.get(key); ok {
		c.metrics.ModelCache.WithLabelValues("hit").Inc()
		return v, nil
	}
	c.metrics.ModelCache.WithLabelValues("miss").Inc()

	v, err := c.inner.Predict(ctx, reading)
	if err != nil {
		return v, err
	}
	// Only finite predictions are cached so a bad result is retried.
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		c.cache.put(key, v)
	}
	return v, nil
}

func (c *CachedModel) FeatureImportances(ctx context.Context) ([]domain.ImportanceEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.importances == nil {
		entries, err := c.inner.FeatureImportances(ctx)
		if err != nil {
			return nil, err
		}
		c.importances = entries
	}
	out := make([]domain.ImportanceEntry, len(c.importances))
	copy(out, c.importances)
	return out, nil
}

// lruCache is a small thread-safe LRU.
type lruCache[K comparable, V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[K]*entry[K, V]
	head       *entry[K, V] // most recently used
	tail       *entry[K, V] // least recently used
}

type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

func newLRUCache[K comparable, V any](maxEntries int) *lruCache[K, V] {
	return &lruCache[K, V]{
		maxEntries: maxEntries,
		entries:    make(map[K]*entry[K, V]),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[K, V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[K, V]) moveToFront(e *entry[K, V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[K, V]) addToFront(e *entry[K, V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[K, V]) remove(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[K, V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
