package cache

import "unicode/utf16"

// DefaultBytesPerChar is the budget cost of one UTF-16 code unit.
const DefaultBytesPerChar = 2

// CacheEntry is one cached response body.
// Entries are never modified after insertion, only removed.
type CacheEntry struct {
	// Key is the normalized endpoint the entry is indexed under.
	Key string

	// Timestamp is the server-relative insertion time in seconds.
	Timestamp int64

	// Body is the raw response, opaque to the cache.
	Body string

	// Size is the cost of Body counted against the cache budget.
	Size uint64
}

// Age returns the entry age in seconds at server time now.
func (e *CacheEntry) Age(now int64) int64 {
	return now - e.Timestamp
}

// IsStale reports whether the entry has reached lifetime seconds.
func (e *CacheEntry) IsStale(now, lifetime int64) bool {
	return e.Age(now) >= lifetime
}

// entrySize returns the budget cost of body: its length in UTF-16 code
// units times bytesPerChar.
func entrySize(body string, bytesPerChar uint64) uint64 {
	var units uint64
	for _, r := range body {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += uint64(n)
	}
	return units * bytesPerChar
}
