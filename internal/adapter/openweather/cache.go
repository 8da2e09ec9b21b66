package openweather

import (
	"context"
	"sync"
	"time"

	"github.com/mersey-rowing/condition-checker/internal/domain"
	"github.com/mersey-rowing/condition-checker/internal/observability"
)

// forecastTTL bounds how long a response for the current or a future hour is
// served. Responses for past hours do not change and are kept until evicted.
const forecastTTL = 10 * time.Minute

// CachedProvider wraps a WeatherProvider with an in-memory LRU cache keyed by
// the hour. Requests are truncated to the hour before reaching the inner
// provider so every lookup within an hour shares one upstream call.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *lruCache[int64, cachedResponse]
	metrics *observability.Metrics
}

type cachedResponse struct {
	resp      domain.OpenWeatherResponse
	fetchedAt time.Time
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache[int64, cachedResponse](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) FetchWeather(ctx context.Context, at time.Time) (domain.OpenWeatherResponse, error) {
	hour := at.Truncate(time.Hour)
	key := hour.Unix()
	if cached, ok := c.cache.get(key); ok && fresh(hour, cached.fetchedAt, domain.Now()) {
		c.metrics.ProviderCache.WithLabelValues("hit").Inc()
		return cached.resp, nil
	}
	c.metrics.ProviderCache.WithLabelValues("miss").Inc()

	resp, err := c.inner.FetchWeather(ctx, hour)
	if err != nil {
		return resp, err
	}
	// Only cache non-empty responses so a transient empty answer can be retried.
	if len(resp.Data) > 0 {
		c.cache.put(key, cachedResponse{resp: resp, fetchedAt: domain.Now()})
	}
	return resp, nil
}

// fresh reports whether a response for hour fetched at fetchedAt may still be
// served at now. Data for an hour is final once it was fetched after the hour ended.
func fresh(hour, fetchedAt, now time.Time) bool {
	if !fetchedAt.Before(hour.Add(time.Hour)) {
		return true
	}
	return now.Sub(fetchedAt) < forecastTTL
}

// lruCache is a simple thread-safe LRU cache.
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
