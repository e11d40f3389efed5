package cache

import (
	"sync"
	"time"

	"github.com/Sternrassler/modio-client/pkg/logging"
	"github.com/Sternrassler/modio-client/pkg/session"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxSize is the default cache budget in bytes.
	DefaultMaxSize = 1 << 20

	// DefaultEntryLifetime is how long a response stays fresh.
	DefaultEntryLifetime = 120 * time.Second
)

// Config configures a ResponseCache.
type Config struct {
	// MaxSize is the byte budget shared by all entries.
	MaxSize uint64

	// EntryLifetime is the age at which an entry becomes stale.
	// Resolution is one second.
	EntryLifetime time.Duration

	// BytesPerChar is the cost of one UTF-16 code unit of a body.
	BytesPerChar uint64

	// Normalizer maps request URLs to cache keys.
	Normalizer KeyNormalizer

	// Identity reports the current session. nil means anonymous.
	Identity session.Source

	// Clock returns server-relative time in seconds. nil uses the local clock.
	Clock func() int64

	// Logger overrides the component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration for the given API base URL and key.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		MaxSize:       DefaultMaxSize,
		EntryLifetime: DefaultEntryLifetime,
		BytesPerChar:  DefaultBytesPerChar,
		Normalizer:    NewKeyNormalizer(baseURL, apiKey),
	}
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Entries   int
	TotalSize uint64
	MaxSize   uint64
}

// ResponseCache is a size-bounded, time-expiring store of response bodies
// keyed by normalized endpoint URL.
//
// Entries are kept in insertion order and are only ever removed as a
// contiguous prefix of that order. A change of identity token drops the
// whole store. All methods are safe for concurrent use; every failure
// mode degrades to a miss or a skipped store.
type ResponseCache struct {
	mu sync.Mutex

	entries      []CacheEntry
	keyIndex     map[string]int
	totalSize    uint64
	lastIdentity string

	maxSize      uint64
	lifetime     int64
	bytesPerChar uint64
	normalizer   KeyNormalizer
	identity     session.Source
	clock        func() int64
	logger       zerolog.Logger
}

// New creates an empty cache. Zero fields of cfg take their defaults.
func New(cfg Config) *ResponseCache {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.EntryLifetime <= 0 {
		cfg.EntryLifetime = DefaultEntryLifetime
	}
	if cfg.BytesPerChar == 0 {
		cfg.BytesPerChar = DefaultBytesPerChar
	}
	if cfg.Identity == nil {
		cfg.Identity = session.Static("")
	}
	if cfg.Clock == nil {
		cfg.Clock = func() int64 { return time.Now().Unix() }
	}

	logger := logging.NewLogger("response-cache")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &ResponseCache{
		keyIndex:     make(map[string]int),
		lastIdentity: cfg.Identity.IdentityToken(),
		maxSize:      cfg.MaxSize,
		lifetime:     int64(cfg.EntryLifetime / time.Second),
		bytesPerChar: cfg.BytesPerChar,
		normalizer:   cfg.Normalizer,
		identity:     cfg.Identity,
		clock:        cfg.Clock,
		logger:       logger,
	}
}

// Normalizer returns the key normalizer the cache was built with.
func (c *ResponseCache) Normalizer() KeyNormalizer {
	return c.normalizer
}

// Identity returns the session source the cache observes.
func (c *ResponseCache) Identity() session.Source {
	return c.identity
}

// TryGet returns the cached body for url if a fresh entry exists.
//
// A stale entry is reported as a miss and evicted together with every
// entry older than it. A lookup under a different identity than the last
// store is a miss and does not adopt the new identity.
func (c *ResponseCache) TryGet(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tryGetLocked(c.identity.IdentityToken(), url)
}

// TryGetAs is TryGet for a caller acting as identity. It misses unless
// identity is both the current and the last stored identity.
func (c *ResponseCache) TryGetAs(identity, url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tryGetLocked(identity, url)
}

func (c *ResponseCache) tryGetLocked(identity, url string) (string, bool) {
	if identity != c.identity.IdentityToken() || identity != c.lastIdentity {
		CacheMisses.WithLabelValues("identity").Inc()
		return "", false
	}

	key, ok := c.normalizer.TryNormalize(url)
	if !ok {
		CacheMisses.WithLabelValues("uncacheable").Inc()
		return "", false
	}

	idx, ok := c.lookupLocked(key)
	if !ok {
		CacheMisses.WithLabelValues("absent").Inc()
		return "", false
	}

	entry := &c.entries[idx]
	if entry.IsStale(c.clock(), c.lifetime) {
		c.logger.Debug().
			Str("endpoint", key).
			Int64("age", entry.Age(c.clock())).
			Int("evicted", idx+1).
			Msg("Stale entry, evicting it and all older entries")
		CacheEvictions.WithLabelValues("stale").Add(float64(idx + 1))
		c.prefixEvictLocked(idx + 1)
		CacheMisses.WithLabelValues("stale").Inc()
		return "", false
	}

	CacheHits.Inc()
	c.logger.Debug().Str("endpoint", key).Msg("Cache hit")
	return entry.Body, true
}

// Store caches body under url. URLs outside the API base and bodies larger
// than the whole budget are logged and skipped. Older entries are evicted
// until the new one fits.
func (c *ResponseCache) Store(url, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(c.identity.IdentityToken(), url, body)
}

// StoreAs caches body fetched on behalf of identity. The body is dropped
// when identity is no longer the current one, so a response requested
// before a login or logout never lands in the new session's cache.
func (c *ResponseCache) StoreAs(identity, url, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(identity, url, body)
}

func (c *ResponseCache) storeLocked(identity, url, body string) {
	if !c.scopeLocked(identity) {
		return
	}

	key, ok := c.normalizer.TryNormalize(url)
	if !ok {
		c.logger.Warn().Str("url", url).Msg("URL is not cacheable")
		CacheRejected.WithLabelValues("uncacheable").Inc()
		return
	}

	if idx, ok := c.lookupLocked(key); ok {
		c.logger.Debug().
			Str("endpoint", key).
			Int("evicted", idx+1).
			Msg("Overwriting entry, evicting it and all older entries")
		CacheEvictions.WithLabelValues("overwrite").Add(float64(idx + 1))
		c.prefixEvictLocked(idx + 1)
	}

	size := entrySize(body, c.bytesPerChar)
	if size > c.maxSize {
		c.logger.Warn().
			Str("endpoint", key).
			Uint64("size", size).
			Uint64("max_size", c.maxSize).
			Msg("Response larger than cache budget")
		CacheRejected.WithLabelValues("too_large").Inc()
		return
	}

	c.makeRoomLocked(size)
	c.appendLocked(CacheEntry{
		Key:       key,
		Timestamp: c.clock(),
		Body:      body,
		Size:      size,
	})
	c.updateGaugesLocked()
}

// Clear drops every entry. The last seen identity is kept, so a following
// Store under the same identity does not clear again.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Stats returns the current entry count and budget usage.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   len(c.entries),
		TotalSize: c.totalSize,
		MaxSize:   c.maxSize,
	}
}

// Keys returns the cached keys from oldest to newest.
func (c *ResponseCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, len(c.entries))
	for i := range c.entries {
		keys[i] = c.entries[i].Key
	}
	return keys
}

// scopeLocked reports whether a write on behalf of identity may proceed.
// It rejects identities that are no longer current and otherwise adopts
// the current identity, clearing the store if it changed since the last
// write.
func (c *ResponseCache) scopeLocked(identity string) bool {
	current := c.identity.IdentityToken()
	if identity != current {
		c.logger.Debug().Msg("Identity changed during request, dropping response")
		CacheRejected.WithLabelValues("identity").Inc()
		return false
	}
	if current == c.lastIdentity {
		return true
	}
	c.logger.Debug().
		Int("evicted", len(c.entries)).
		Msg("Identity changed, invalidating cache")
	CacheInvalidations.Inc()
	c.clearLocked()
	c.lastIdentity = current
	return true
}

// lookupLocked resolves key to an entry index, purging mappings that point
// outside the entry list.
func (c *ResponseCache) lookupLocked(key string) (int, bool) {
	idx, ok := c.keyIndex[key]
	if !ok {
		return 0, false
	}
	if idx < 0 || idx >= len(c.entries) {
		delete(c.keyIndex, key)
		return 0, false
	}
	return idx, true
}

// makeRoomLocked evicts the shortest prefix after which size more bytes
// fit in the budget. size must not exceed maxSize.
func (c *ResponseCache) makeRoomLocked(size uint64) {
	if c.totalSize+size <= c.maxSize {
		return
	}

	remaining := c.totalSize
	count := 0
	for count < len(c.entries) && remaining+size > c.maxSize {
		remaining -= c.entries[count].Size
		count++
	}

	c.logger.Debug().
		Uint64("size", size).
		Uint64("total_size", c.totalSize).
		Int("evicted", count).
		Msg("Evicting oldest entries to fit budget")
	CacheEvictions.WithLabelValues("budget").Add(float64(count))
	c.prefixEvictLocked(count)
}

func (c *ResponseCache) appendLocked(entry CacheEntry) {
	c.keyIndex[entry.Key] = len(c.entries)
	c.entries = append(c.entries, entry)
	c.totalSize += entry.Size
}

// prefixEvictLocked removes the oldest count entries. It is the only
// deletion primitive of the store.
func (c *ResponseCache) prefixEvictLocked(count int) {
	if count <= 0 {
		return
	}
	if count >= len(c.entries) {
		c.clearLocked()
		return
	}

	var freed uint64
	for i := 0; i < count; i++ {
		freed += c.entries[i].Size
	}

	for key, idx := range c.keyIndex {
		idx -= count
		if idx < 0 {
			delete(c.keyIndex, key)
			continue
		}
		c.keyIndex[key] = idx
	}

	c.totalSize -= freed
	c.entries = append([]CacheEntry(nil), c.entries[count:]...)
	c.updateGaugesLocked()
}

func (c *ResponseCache) clearLocked() {
	c.entries = nil
	c.keyIndex = make(map[string]int)
	c.totalSize = 0
	c.updateGaugesLocked()
}

func (c *ResponseCache) updateGaugesLocked() {
	CacheSize.Set(float64(c.totalSize))
	CacheEntries.Set(float64(len(c.entries)))
}
