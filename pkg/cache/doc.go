// Package cache provides the in-memory response cache of the mod.io client.
//
// The cache stores raw response bodies keyed by endpoint: the request URL
// with the API base URL and the api_key credential removed.
//
//   - Entries expire EntryLifetime (120s by default) after insertion,
//     measured on a server-relative clock.
//   - The total cost of all bodies never exceeds MaxSize; cost is the
//     UTF-16 length of the body times BytesPerChar.
//   - Eviction always removes the oldest entries as a contiguous block. A
//     stale hit evicts that entry and everything older.
//   - When the identity reported by the session.Source changes, the next
//     store drops every entry; lookups under a new identity always miss.
//
// # Basic Usage
//
//	rc := cache.New(cache.Config{
//		MaxSize:    512 * 1024,
//		Normalizer: cache.NewKeyNormalizer("https://api.mod.io/v1", apiKey),
//		Identity:   tracker,
//	})
//
//	if body, ok := rc.TryGet(url); ok {
//		return body
//	}
//	identity := tracker.IdentityToken()
//	body := fetch(url, identity)
//	rc.StoreAs(identity, url, body)
//
// StoreAs drops the body if the session changed while it was fetched.
//
// # Side-loaded records
//
// List responses often contain complete records that have their own
// endpoint. StoreJSONBatch caches them in one pass:
//
//	cache.StoreJSONBatch(rc, identity, mods, func(m Mod) string {
//		return fmt.Sprintf("%s/games/%d/mods/%d", base, m.GameID, m.ID)
//	})
//	mod, ok := cache.TryGetJSON[Mod](rc, identity, modURL)
//
// # Metrics
//
//   - modio_cache_hits_total
//   - modio_cache_misses_total{reason}
//   - modio_cache_evictions_total{reason}
//   - modio_cache_invalidations_total
//   - modio_cache_rejected_total{reason}
//   - modio_cache_size_bytes, modio_cache_entries
package cache
