// Package pagination fetches every page of an offset-paginated list
// endpoint in parallel.
//
// List responses report result_total. The first page is fetched alone to
// learn it, the remaining offsets are spread over a worker pool.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(c.Pages("games/1/mods", nil), pagination.DefaultConfig())
//	pages, err := fetcher.FetchAllPages(ctx)
//
// The batch fetcher:
//   - Fetches the first page to determine the total
//   - Fetches the remaining offsets with a bounded errgroup (default 4)
//   - Returns the pages before the first failed one with an error
//
// Each page goes through the client, so pages are cached individually.
package pagination
