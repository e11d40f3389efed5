// Command modio-proxy serves mod.io API responses through the cached client.
//
// Requests to /api/<endpoint> are forwarded upstream with the configured
// API key. Query parameters are translated into a filter set, so
// /api/games/1/mods?name-lk=*map*&_sort=-downloads hits the same cache
// entry as the equivalent library call.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Sternrassler/modio-client/internal/config"
	"github.com/Sternrassler/modio-client/pkg/cache"
	"github.com/Sternrassler/modio-client/pkg/client"
	"github.com/Sternrassler/modio-client/pkg/filter"
	"github.com/Sternrassler/modio-client/pkg/logging"
	"github.com/Sternrassler/modio-client/pkg/metrics"
	"github.com/Sternrassler/modio-client/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:   logging.LogLevel(cfg.Log.Level),
		Pretty:  cfg.Log.Pretty,
		Output:  os.Stderr,
		Service: "modio-proxy",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store session.Store
	if cfg.HasRedis() {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisURL})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Session.RedisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Session.RedisURL).Msg("Connected to Redis")
		store = session.NewRedisStore(redisClient, cfg.Session.Key, cfg.Session.TTL)
	}

	tracker := session.NewTracker(store, logging.NewLogger("session"))
	if err := tracker.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to load stored session")
	}

	srv, err := newServer(cfg, tracker)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create client")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	logger.Info().
		Str("addr", httpServer.Addr).
		Str("api", cfg.API.BaseURL).
		Uint64("cache_max_bytes", cfg.Cache.MaxBytes).
		Msg("Starting modio proxy")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

type server struct {
	client  *client.Client
	tracker *session.Tracker
	logger  zerolog.Logger
}

func newServer(cfg *config.Config, tracker *session.Tracker) (*server, error) {
	cacheCfg := cache.DefaultConfig(cfg.API.BaseURL, cfg.API.APIKey)
	cacheCfg.MaxSize = cfg.Cache.MaxBytes
	cacheCfg.EntryLifetime = cfg.Cache.EntryLifetime
	cacheCfg.Identity = tracker

	c, err := client.New(client.Config{
		BaseURL:   cfg.API.BaseURL,
		APIKey:    cfg.API.APIKey,
		UserAgent: cfg.API.UserAgent,
		Cache:     cache.New(cacheCfg),
		Identity:  tracker,
	})
	if err != nil {
		return nil, err
	}

	return &server{
		client:  c,
		tracker: tracker,
		logger:  logging.NewLogger("proxy"),
	}, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("POST /session", s.loginHandler)
	mux.HandleFunc("DELETE /session", s.logoutHandler)
	mux.HandleFunc("GET /api/", s.apiHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (s *server) statsHandler(w http.ResponseWriter, r *http.Request) {
	st := s.client.Cache().Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"entries":    st.Entries,
		"total_size": st.TotalSize,
		"max_size":   st.MaxSize,
	})
}

func (s *server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.tracker.Login(r.Context(), req.Token); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.client.Logout(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("Logout failed")
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) apiHandler(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/api/")
	if !isLiteral(endpoint, "?#") {
		http.Error(w, fmt.Sprintf("invalid endpoint %q", endpoint), http.StatusBadRequest)
		return
	}

	fs, err := filterFromQuery(r.URL.Query(), s.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Another process may have logged in or out since the last request.
	if err := s.tracker.Refresh(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("Session refresh failed")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	body, err := s.client.Get(ctx, endpoint, fs)
	if err != nil {
		var apiErr *client.APIError
		switch {
		case errors.Is(err, client.ErrEmptyEndpoint):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &apiErr):
			http.Error(w, apiErr.Message, apiErr.StatusCode)
		default:
			http.Error(w, fmt.Sprintf("upstream request failed: %v", err), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}

// Longer suffixes come first so "-not-lk" is not read as "-lk".
var querySuffixes = []string{"-not-lk", "-not-in", "-bitwise-and", "-not", "-min", "-max", "-gt", "-st", "-lk", "-in"}

// queryDelimiters are characters that would change the structure of the
// upstream query if written back literally.
const queryDelimiters = "&=#?%+"

// isLiteral reports whether s can be written into a URL unescaped: it has
// none of the forbidden characters, no whitespace and no control bytes.
func isLiteral(s, forbidden string) bool {
	if strings.ContainsAny(s, forbidden) {
		return false
	}
	for _, r := range s {
		if r <= ' ' || r == 0x7f {
			return false
		}
	}
	return true
}

// filterFromQuery translates API-style query parameters into a filter set.
// Fields are added in sorted order so equal queries render equal keys.
// api_key is never taken from the caller. Filter values are rendered
// unescaped upstream, so names and values that are not plain literals are
// refused. Malformed pagination is logged and ignored.
func filterFromQuery(values url.Values, logger zerolog.Logger) (*filter.FilterSet, error) {
	for k, vs := range values {
		if k == "_q" {
			continue
		}
		if !isLiteral(k, queryDelimiters) {
			return nil, fmt.Errorf("invalid query parameter name %q", k)
		}
		for _, v := range vs {
			if !isLiteral(v, queryDelimiters) {
				return nil, fmt.Errorf("invalid value for query parameter %q", k)
			}
		}
	}

	fs := filter.New()

	offset := parsePaging(values, "_offset", logger)
	limit := parsePaging(values, "_limit", logger)
	if offset != 0 || limit != 0 {
		fs.SetPagination(offset, limit)
	}
	if q := values.Get("_q"); q != "" {
		fs.SetSearch(q)
	}
	if sortField := values.Get("_sort"); sortField != "" {
		fs.SortBy(strings.TrimPrefix(sortField, "-"), !strings.HasPrefix(sortField, "-"))
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.HasPrefix(k, "_") || k == "api_key" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		field, suffix := splitSuffix(k)
		value := values.Get(k)
		if f := fieldFilter(suffix, value); f != nil {
			fs.AddFieldFilter(field, f)
		}
	}
	return fs, nil
}

func parsePaging(values url.Values, name string, logger zerolog.Logger) int {
	v := values.Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("param", name).Str("value", v).Msg("Ignoring malformed pagination parameter")
		return 0
	}
	return n
}

func splitSuffix(key string) (string, string) {
	for _, suffix := range querySuffixes {
		if strings.HasSuffix(key, suffix) && len(key) > len(suffix) {
			return strings.TrimSuffix(key, suffix), suffix
		}
	}
	return key, ""
}

func fieldFilter(suffix, value string) filter.FieldFilter {
	switch suffix {
	case "":
		if strings.Contains(value, ",") {
			return filter.SetEquals(strings.Split(value, ","))
		}
		return filter.EqualTo(value)
	case "-not":
		return filter.NotEqualTo(value)
	case "-min":
		return filter.Min(value)
	case "-max":
		return filter.Max(value)
	case "-gt":
		return filter.GreaterThan(value)
	case "-st":
		return filter.LessThan(value)
	case "-lk":
		return filter.Like(value)
	case "-not-lk":
		return filter.NotLike(value)
	case "-in":
		return filter.In(strings.Split(value, ","))
	case "-not-in":
		return filter.NotIn(strings.Split(value, ","))
	case "-bitwise-and":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil
		}
		return filter.BitwiseAnd(n)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
