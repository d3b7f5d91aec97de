package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// DEFAULT_CACHE_KEY is the default bucket key for persisted cache entries.
const DEFAULT_CACHE_KEY string = "geocode-cache.json"

const cache_version int = 1

// type Entry is a cached geocoding result. Misses are cached too, with Found set to false.
type Entry struct {
	Found     bool    `json:"found"`
	Latitude  float64 `json:"lat,omitempty"`
	Longitude float64 `json:"lon,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// type Cache is an interface for storing geocoding results. Implementations must be safe for concurrent use.
type Cache interface {
	Get(string) (Entry, bool)
	Set(string, Entry)
}

// type MemoryCache implements the `Cache` interface using an in-memory map.
type MemoryCache struct {
	mu      *sync.RWMutex
	entries map[string]Entry
}

// NewMemoryCache returns a new, empty `MemoryCache` instance.
func NewMemoryCache() *MemoryCache {

	c := &MemoryCache{
		mu:      new(sync.RWMutex),
		entries: make(map[string]Entry),
	}

	return c
}

// Get returns the entry for 'key'.
func (c *MemoryCache) Get(key string) (Entry, bool) {

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e, ok
}

// Set stores 'e' for 'key'.
func (c *MemoryCache) Set(key string, e Entry) {

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = e
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

type persistedCache struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// type BlobCache is a `MemoryCache` whose entries can be loaded from, and saved to, a gocloud.dev/blob bucket.
type BlobCache struct {
	*MemoryCache
	bucket *blob.Bucket
	key    string
}

// NewBlobCache returns a new `BlobCache` instance persisted to 'key' in 'bucket'. If 'key' is empty
// DEFAULT_CACHE_KEY is used.
func NewBlobCache(bucket *blob.Bucket, key string) *BlobCache {

	if key == "" {
		key = DEFAULT_CACHE_KEY
	}

	c := &BlobCache{
		MemoryCache: NewMemoryCache(),
		bucket:      bucket,
		key:         key,
	}

	return c
}

// Load reads persisted entries into the cache. A missing key, or entries written by a different version,
// leave the cache empty.
func (c *BlobCache) Load(ctx context.Context) error {

	logger := slog.Default()
	logger = logger.With("key", c.key)

	r, err := c.bucket.NewReader(ctx, c.key, nil)

	if err != nil {

		if gcerrors.Code(err) == gcerrors.NotFound {
			logger.Debug("Geocode cache does not exist")
			return nil
		}

		return fmt.Errorf("Failed to open geocode cache, %w", err)
	}

	defer r.Close()

	body, err := io.ReadAll(r)

	if err != nil {
		return fmt.Errorf("Failed to read geocode cache, %w", err)
	}

	var p persistedCache

	err = json.Unmarshal(body, &p)

	if err != nil {
		return fmt.Errorf("Failed to unmarshal geocode cache, %w", err)
	}

	if p.Version != cache_version || p.Entries == nil {
		logger.Debug("Geocode cache version mismatch, ignoring", "version", p.Version)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range p.Entries {
		c.entries[k] = e
	}

	logger.Debug("Loaded geocode cache", "count", len(p.Entries))
	return nil
}

// Save writes the current entries to the bucket.
func (c *BlobCache) Save(ctx context.Context) error {

	c.mu.RLock()

	p := persistedCache{
		Version: cache_version,
		Entries: make(map[string]Entry, len(c.entries)),
	}

	for k, e := range c.entries {
		p.Entries[k] = e
	}

	c.mu.RUnlock()

	body, err := json.MarshalIndent(p, "", "  ")

	if err != nil {
		return fmt.Errorf("Failed to marshal geocode cache, %w", err)
	}

	wr_opts := &blob.WriterOptions{
		ContentType: "application/json",
	}

	err = c.bucket.WriteAll(ctx, c.key, body, wr_opts)

	if err != nil {
		return fmt.Errorf("Failed to write geocode cache, %w", err)
	}

	return nil
}
