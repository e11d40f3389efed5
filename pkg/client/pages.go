package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/modio-client/pkg/filter"
	"github.com/Sternrassler/modio-client/pkg/pagination"
)

// pageSource adapts a list endpoint to pagination.PageFetcher.
type pageSource struct {
	client   *Client
	endpoint string
	build    func() *filter.FilterSet
}

// Pages returns a page fetcher for endpoint. build creates the filter of
// every page request and may be nil; pagination is set on its result.
func (c *Client) Pages(endpoint string, build func() *filter.FilterSet) pagination.PageFetcher {
	return &pageSource{client: c, endpoint: endpoint, build: build}
}

// FetchPage implements pagination.PageFetcher.
func (p *pageSource) FetchPage(ctx context.Context, offset, limit int) ([]byte, int, error) {
	fs := filter.New()
	if p.build != nil {
		fs = p.build()
	}
	fs.SetPagination(offset, limit)

	body, err := p.client.Get(ctx, p.endpoint, fs)
	if err != nil {
		return nil, 0, err
	}

	var envelope struct {
		ResultTotal int `json:"result_total"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return body, envelope.ResultTotal, nil
}

// GetAll fetches every page of endpoint and returns the records in order.
// When a page fails, the records of the pages before it are returned with
// the error, so the result is always a contiguous run from the first record.
func GetAll[T any](ctx context.Context, c *Client, endpoint string, build func() *filter.FilterSet, cfg pagination.Config) ([]T, error) {
	pages, fetchErr := pagination.NewBatchFetcher(c.Pages(endpoint, build), cfg).FetchAllPages(ctx)

	var records []T
	for _, page := range pages {
		var list ListResponse[T]
		if err := json.Unmarshal(page, &list); err != nil {
			return records, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		records = append(records, list.Data...)
	}
	return records, fetchErr
}
