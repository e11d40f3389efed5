package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/modio-client/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MaxPageSize is the largest _limit the API accepts.
const MaxPageSize = 100

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests.
	MaxConcurrency int

	// Timeout per page fetch.
	Timeout time.Duration

	// PageSize is the _limit of every request, at most MaxPageSize.
	PageSize int
}

// DefaultConfig returns a conservative configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		PageSize:       MaxPageSize,
	}
}

// PageFetcher fetches one page of a list endpoint.
type PageFetcher interface {
	// FetchPage returns the raw page body and the total number of records.
	FetchPage(ctx context.Context, offset, limit int) (data []byte, total int, err error)
}

// BatchFetcher fetches all pages of one endpoint with a worker pool.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.PageSize <= 0 || config.PageSize > MaxPageSize {
		config.PageSize = MaxPageSize
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger("pagination"),
	}
}

// FetchAllPages fetches every page and returns their bodies ordered by
// offset. When a page fails it returns the contiguous run of pages before
// the first missing one, together with an error.
func (bf *BatchFetcher) FetchAllPages(ctx context.Context) ([][]byte, error) {
	start := time.Now()
	limit := bf.config.PageSize

	firstPage, total, err := bf.fetchPage(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}

	pageCount := 1
	if total > limit {
		pageCount = (total + limit - 1) / limit
	}

	bf.logger.Debug().
		Int("total", total).
		Int("pages", pageCount).
		Msg("Starting parallel page fetch")

	pages := make([][]byte, pageCount)
	pages[0] = firstPage
	if pageCount == 1 {
		return pages, nil
	}

	var (
		mu      sync.Mutex
		fetched = 1
	)
	g := new(errgroup.Group)
	g.SetLimit(bf.config.MaxConcurrency)
	for page := 1; page < pageCount && ctx.Err() == nil; page++ {
		g.Go(func() error {
			data, _, err := bf.fetchPage(ctx, page*limit)
			if err != nil {
				bf.logger.Warn().Err(err).Int("offset", page*limit).Msg("Page fetch failed")
				return err
			}
			mu.Lock()
			pages[page] = data
			fetched++
			mu.Unlock()
			return nil
		})
	}
	firstErr := g.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		prefix := leadingPages(pages)
		bf.logger.Warn().
			Err(firstErr).
			Int("fetched_pages", fetched).
			Int("returned_pages", len(prefix)).
			Int("total_pages", pageCount).
			Msg("Page fetch failed - returning leading pages")
		return prefix, fmt.Errorf("partial data (%d/%d pages): %w", len(prefix), pageCount, firstErr)
	}

	bf.logger.Debug().
		Int("pages", pageCount).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")
	return pages, nil
}

func (bf *BatchFetcher) fetchPage(ctx context.Context, offset int) ([]byte, int, error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()
	return bf.fetcher.FetchPage(pageCtx, offset, bf.config.PageSize)
}

// leadingPages returns the pages before the first one that was not fetched.
func leadingPages(pages [][]byte) [][]byte {
	for i, p := range pages {
		if p == nil {
			return pages[:i]
		}
	}
	return pages
}
