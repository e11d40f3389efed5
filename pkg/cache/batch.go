package cache

import "encoding/json"

type candidate struct {
	key  string
	body string
	size uint64
}

// StoreBatch caches records obtained as a side effect of another request,
// each under the URL returned by keyFn. It returns the number of records
// stored.
//
// identity is the session the records were fetched for; nothing is stored
// when it is no longer current. Records with a fresh cached copy, or whose
// URL is not cacheable, are skipped. A stale cached copy is evicted with
// every older entry, as a lookup would, and replaced.
//
// Candidates are accumulated in order until the next one would bring the
// batch to the cache budget or beyond; that record and all after it are
// not cached. Room is then made with a single eviction pass.
//
// serialize runs while the cache is locked and must not call back into it.
func StoreBatch[T any](c *ResponseCache, identity string, entities []T, keyFn func(T) string, serialize func(T) (string, error)) int {
	if len(entities) == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.scopeLocked(identity) {
		return 0
	}

	var (
		batch     []candidate
		batchSize uint64
		seen      = make(map[string]struct{}, len(entities))
	)

	for _, entity := range entities {
		key, ok := c.normalizer.TryNormalize(keyFn(entity))
		if !ok {
			CacheRejected.WithLabelValues("uncacheable").Inc()
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		if idx, ok := c.lookupLocked(key); ok {
			if !c.entries[idx].IsStale(c.clock(), c.lifetime) {
				continue
			}
			CacheEvictions.WithLabelValues("stale").Add(float64(idx + 1))
			c.prefixEvictLocked(idx + 1)
		}

		body, err := serialize(entity)
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", key).Msg("Failed to serialize record for cache")
			CacheRejected.WithLabelValues("serialize").Inc()
			continue
		}

		size := entrySize(body, c.bytesPerChar)
		if batchSize+size >= c.maxSize {
			c.logger.Debug().
				Int("accepted", len(batch)).
				Uint64("batch_size", batchSize).
				Msg("Batch reached cache budget, skipping remaining records")
			break
		}

		seen[key] = struct{}{}
		batch = append(batch, candidate{key: key, body: body, size: size})
		batchSize += size
	}

	if len(batch) == 0 {
		return 0
	}

	c.makeRoomLocked(batchSize)

	now := c.clock()
	for _, cand := range batch {
		c.appendLocked(CacheEntry{
			Key:       cand.key,
			Timestamp: now,
			Body:      cand.body,
			Size:      cand.size,
		})
	}
	c.updateGaugesLocked()

	return len(batch)
}

// TryGetEntity looks up url like TryGetAs and decodes the body. A decode
// failure is reported as a miss.
func TryGetEntity[T any](c *ResponseCache, identity, url string, decode func(string) (T, error)) (T, bool) {
	var zero T

	body, ok := c.TryGetAs(identity, url)
	if !ok {
		return zero, false
	}

	entity, err := decode(body)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("Failed to decode cached entity")
		CacheMisses.WithLabelValues("decode").Inc()
		return zero, false
	}
	return entity, true
}

// StoreJSONBatch is StoreBatch with JSON serialization.
func StoreJSONBatch[T any](c *ResponseCache, identity string, entities []T, keyFn func(T) string) int {
	return StoreBatch(c, identity, entities, keyFn, func(entity T) (string, error) {
		data, err := json.Marshal(entity)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
}

// TryGetJSON is TryGetEntity with JSON decoding.
func TryGetJSON[T any](c *ResponseCache, identity, url string) (T, bool) {
	return TryGetEntity(c, identity, url, func(body string) (T, error) {
		var entity T
		err := json.Unmarshal([]byte(body), &entity)
		return entity, err
	})
}
