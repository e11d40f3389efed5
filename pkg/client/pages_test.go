package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/Sternrassler/modio-client/pkg/filter"
	"github.com/Sternrassler/modio-client/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// servePagedMods answers list requests for total mods honoring _offset and _limit.
func servePagedMods(env *testEnv, total int) {
	env.api.SetHandler("/v1/games/1/mods", modsHandler(total))
}

func modsHandler(total int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("_offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("_limit"))
		if limit == 0 {
			limit = 100
		}

		data := []mod{}
		for id := offset + 1; id <= min(offset+limit, total); id++ {
			data = append(data, mod{ID: id, GameID: 1, Name: "mod " + strconv.Itoa(id)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ListResponse[mod]{
			Data:         data,
			ResultCount:  len(data),
			ResultOffset: offset,
			ResultLimit:  limit,
			ResultTotal:  total,
		})
	}
}

func TestGetAll_CollectsPagesInOrder(t *testing.T) {
	env := setup(t)
	servePagedMods(env, 23)

	cfg := pagination.DefaultConfig()
	cfg.PageSize = 5

	mods, err := GetAll[mod](context.Background(), env.client, "games/1/mods", func() *filter.FilterSet {
		return filter.New().SortBy("id", true)
	}, cfg)
	require.NoError(t, err)
	require.Len(t, mods, 23)
	for i, m := range mods {
		assert.Equal(t, i+1, m.ID)
	}

	assert.Equal(t, 5, env.api.RequestCount("/v1/games/1/mods"))
	assert.Equal(t, 5, env.cache.Stats().Entries)
	assert.Contains(t, env.cache.Keys(), "games/1/mods?_sort=id&_offset=20&_limit=5")
}

func TestGetAll_RepeatIsServedFromCache(t *testing.T) {
	env := setup(t)
	servePagedMods(env, 12)

	cfg := pagination.DefaultConfig()
	cfg.PageSize = 10

	_, err := GetAll[mod](context.Background(), env.client, "games/1/mods", nil, cfg)
	require.NoError(t, err)
	mods, err := GetAll[mod](context.Background(), env.client, "games/1/mods", nil, cfg)
	require.NoError(t, err)

	assert.Len(t, mods, 12)
	assert.Equal(t, 2, env.api.RequestCount("/v1/games/1/mods"))
}

func TestGetAll_PartialFailureKeepsLeadingRecords(t *testing.T) {
	env := setup(t)
	pages := modsHandler(25)
	env.api.SetHandler("/v1/games/1/mods", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("_offset") == "10" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		pages(w, r)
	})

	cfg := pagination.DefaultConfig()
	cfg.PageSize = 5

	mods, err := GetAll[mod](context.Background(), env.client, "games/1/mods", nil, cfg)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	require.Len(t, mods, 10)
	for i, m := range mods {
		assert.Equal(t, i+1, m.ID)
	}
}

func TestGetAll_FirstPageError(t *testing.T) {
	env := setup(t)

	_, err := GetAll[mod](context.Background(), env.client, "games/1/mods", nil, pagination.DefaultConfig())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestPages_FetchPageReportsTotal(t *testing.T) {
	env := setup(t)
	servePagedMods(env, 7)

	body, total, err := env.client.Pages("games/1/mods", nil).FetchPage(context.Background(), 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	var list ListResponse[mod]
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Data, 2)
	assert.Equal(t, "_offset=5&_limit=5&api_key="+testAPIKey, env.api.LastRequest().URL.RawQuery)
}
