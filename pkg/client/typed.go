package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sternrassler/modio-client/pkg/cache"
	"github.com/Sternrassler/modio-client/pkg/filter"
)

// ListResponse is the envelope of every list endpoint.
type ListResponse[T any] struct {
	Data         []T `json:"data"`
	ResultCount  int `json:"result_count"`
	ResultOffset int `json:"result_offset"`
	ResultLimit  int `json:"result_limit"`
	ResultTotal  int `json:"result_total"`
}

// GetEntity returns the record at endpoint decoded as T. A cached body that
// does not decode is ignored and the record is fetched again.
func GetEntity[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var entity T
	if strings.Trim(endpoint, "/") == "" {
		return entity, ErrEmptyEndpoint
	}

	identity := c.identity.IdentityToken()
	requestURL := c.URL(endpoint, nil)
	if c.cache != nil {
		if cached, ok := cache.TryGetJSON[T](c.cache, identity, requestURL); ok {
			cacheServedTotal.Inc()
			return cached, nil
		}
	}

	body, err := c.fetchAndStore(ctx, identity, endpoint, requestURL)
	if err != nil {
		return entity, err
	}
	if err := json.Unmarshal(body, &entity); err != nil {
		return entity, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return entity, nil
}

// GetList returns a page of endpoint filtered by fs. When itemEndpoint is
// set, every returned record is also cached under its own endpoint, so a
// later GetEntity for it is served without a request.
func GetList[T any](ctx context.Context, c *Client, endpoint string, fs *filter.FilterSet, itemEndpoint func(T) string) (*ListResponse[T], error) {
	identity := c.identity.IdentityToken()
	body, err := c.get(ctx, identity, endpoint, fs)
	if err != nil {
		return nil, err
	}

	var list ListResponse[T]
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if itemEndpoint != nil && c.cache != nil && len(list.Data) > 0 {
		stored := cache.StoreJSONBatch(c.cache, identity, list.Data, func(item T) string {
			return c.URL(itemEndpoint(item), nil)
		})
		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("records", len(list.Data)).
			Int("cached", stored).
			Msg("Cached list records")
	}

	return &list, nil
}
