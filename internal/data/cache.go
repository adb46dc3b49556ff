package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"fes-bids/internal/model"
)

// CacheEntry represents a cached vendor response
type CacheEntry struct {
	Response  *model.VendorForecast
	ExpiresAt time.Time
}

// ResponseCache keeps recent vendor responses in memory so that a re-run of
// the same trading day (API retries, IDA after D-1) does not hit the vendor again.
// A nil *ResponseCache is valid and caches nothing.
type ResponseCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewResponseCache returns nil when ttl <= 0, which disables caching.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		return nil
	}
	return &ResponseCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a cached response if available and not expired
func (c *ResponseCache) Get(key string) (*model.VendorForecast, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Response, true
}

// Set stores a response and drops anything already expired.
func (c *ResponseCache) Set(key string, response *model.VendorForecast) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.store {
		if now.After(e.ExpiresAt) {
			delete(c.store, k)
		}
	}
	c.store[key] = &CacheEntry{
		Response:  response,
		ExpiresAt: now.Add(c.ttl),
	}
}

// Clear removes all entries from the cache
func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// GenerateCacheKey creates a cache key from the request window and selectors.
func GenerateCacheKey(fr ForecastRequest) string {
	keyStr := fmt.Sprintf("%s:%s:%s:%s:%d:%d:%s",
		fr.VariableID,
		fr.PredictorID,
		fr.From.Format(isoNoZone),
		fr.To.Format(isoNoZone),
		fr.Granularity,
		fr.Percentile,
		strings.Join(fr.FacilityIDs, ","),
	)

	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
