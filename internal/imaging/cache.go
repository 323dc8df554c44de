package imaging

import (
	"crypto/sha256"
	"sync"
)

// Decoder turns encoded image bytes into a raster. *Codec and *RasterCache
// both implement it.
type Decoder interface {
	Decode(data []byte) (*Raster, error)
}

// CacheStats reports RasterCache activity.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// RasterCache memoizes decode results by the SHA-256 of the encoded bytes.
//
// The cache wraps a Decoder from the outside; the engine itself stays
// stateless and only sees another Decoder. Hosts that send the same base
// image repeatedly (for example a slider adjusting brightness) skip the
// decode on every call after the first.
//
// RasterCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// At most maxEntries rasters are kept. When full, the oldest entry is evicted
// first. Failed decodes are never cached.
//
// # Sharing
//
// The same *Raster is returned to every caller that hits the entry. Every
// operation in this package leaves its inputs untouched, so this is safe as
// long as callers outside the package do not write to Pix either.
type RasterCache struct {
	next       Decoder
	maxEntries int

	mu      sync.RWMutex
	entries map[[sha256.Size]byte]*Raster
	order   [][sha256.Size]byte
	hits    int64
	misses  int64
}

// NewRasterCache creates a cache in front of next holding up to maxEntries
// rasters. maxEntries <= 0 disables caching: every call goes to next.
func NewRasterCache(next Decoder, maxEntries int) *RasterCache {
	return &RasterCache{
		next:       next,
		maxEntries: maxEntries,
		entries:    make(map[[sha256.Size]byte]*Raster),
	}
}

// Decode returns the cached raster for data, decoding it on a miss.
func (c *RasterCache) Decode(data []byte) (*Raster, error) {
	if c.maxEntries <= 0 {
		return c.next.Decode(data)
	}

	key := sha256.Sum256(data)

	c.mu.RLock()
	r, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return r, nil
	}

	r, err := c.next.Decode(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
	if existing, ok := c.entries[key]; ok {
		// Another goroutine decoded the same bytes first.
		return existing, nil
	}
	for len(c.order) >= c.maxEntries {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = r
	c.order = append(c.order, key)
	return r, nil
}

// Evict removes the entry for data, if any.
func (c *RasterCache) Evict(data []byte) {
	key := sha256.Sum256(data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear removes all entries. Hit and miss counters are kept.
func (c *RasterCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[[sha256.Size]byte]*Raster)
	c.order = nil
	c.mu.Unlock()
}

// Len returns the number of cached rasters.
func (c *RasterCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *RasterCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
