package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerfeed/internal/domain"
	"dealerfeed/internal/hub"
	"dealerfeed/internal/ingestor"
	"dealerfeed/internal/middleware"
	"dealerfeed/internal/store"
	"dealerfeed/pkg/dealerapi"
)

type fakeFeed struct {
	ready  bool
	status ingestor.Status
}

func (f *fakeFeed) Status() ingestor.Status { return f.status }
func (f *fakeFeed) IsReady() bool           { return f.ready }

func testCatalog() *store.Store {
	st := store.New()
	st.Replace(domain.CatalogSnapshot{
		Vehicles: []domain.Vehicle{
			{AdNumber: 1, Make: "Fiat", Model: "Panda", FuelType: "Benzina", Price: 8990, Images: []string{"https://x/1.jpg"}},
			{AdNumber: 2, Make: "Fiat", Model: "500", FuelType: "Diesel", Price: 12500, Images: []string{"https://x/2.jpg"}},
			{AdNumber: 3, Make: "BMW", Model: "X1", FuelType: "Diesel", Price: 27900},
		},
		Fingerprint: "fp",
		FetchedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}, domain.SourceLive)
	return st
}

func newTestServer(t *testing.T, st *store.Store, feed *fakeFeed, limiter *middleware.RateLimiter) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := NewStats()

	srv := httptest.NewServer(NewRouter(Routes{
		HTTP:     NewHTTPHandler(st, feed, 2, 50),
		WS:       NewWSHandler(hub.NewHub(logger), st, stats, logger),
		Health:   NewHealthHandler(feed, st),
		Stats:    NewStatsHandler(stats, st, limiter, "test"),
		Limiter:  limiter,
		Counters: stats,
		Logger:   logger,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, dest any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func TestListVehicles(t *testing.T) {
	srv := newTestServer(t, testCatalog(), &fakeFeed{ready: true}, nil)

	var body CatalogResponse
	code := getJSON(t, srv.URL+"/v1/vehicles?fuel=Diesel&sort=price&dir=asc", &body)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, 2, body.TotalCount)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 2, body.PageSize)
	require.Len(t, body.Vehicles, 2)
	assert.Equal(t, 2, body.Vehicles[0].AdNumber)
	assert.Equal(t, 3, body.Vehicles[1].AdNumber, "listing without pictures goes last")
	assert.Equal(t, domain.SourceLive, body.Source)

	fuel := map[string]int{}
	for _, f := range body.Facets.FuelTypes {
		fuel[f.Value] = f.Count
	}
	assert.Equal(t, map[string]int{"Diesel": 2, "Benzina": 1}, fuel)
}

func TestListVehicles_PagingAndGarbageInput(t *testing.T) {
	srv := newTestServer(t, testCatalog(), &fakeFeed{ready: true}, nil)

	var body CatalogResponse
	code := getJSON(t, srv.URL+"/v1/vehicles?page=2&page_size=2&price_min=abc&doors=x&sort=nope", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, body.TotalCount)
	assert.Equal(t, 2, body.Page)
	require.Len(t, body.Vehicles, 1)

	code = getJSON(t, srv.URL+"/v1/vehicles?page=9", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Vehicles)
	assert.Equal(t, 3, body.TotalCount)

	code = getJSON(t, srv.URL+"/v1/vehicles?page_size=1000", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 50, body.PageSize)
}

func TestGetVehicle(t *testing.T) {
	srv := newTestServer(t, testCatalog(), &fakeFeed{ready: true}, nil)

	var v domain.Vehicle
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/vehicles/3", &v))
	assert.Equal(t, "X1", v.Model)

	var e errorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/v1/vehicles/99", &e))
	assert.Equal(t, "vehicle not found", e.Error)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/v1/vehicles/abc", &e))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/v1/vehicles/-4", &e))
}

func TestFeedStatus(t *testing.T) {
	feed := &fakeFeed{
		ready: true,
		status: ingestor.Status{
			Result:      dealerapi.Result{Success: false, Error: "feed: unexpected status code 503"},
			LastAttempt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		},
	}
	srv := newTestServer(t, testCatalog(), feed, nil)

	var body FeedStatusResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/feed/status", &body))
	assert.True(t, body.Ready)
	assert.Equal(t, 3, body.Vehicles)
	assert.Equal(t, 2, body.WithImages)
	assert.Equal(t, []string{"BMW", "Fiat"}, body.Makes)
	assert.Equal(t, "fp", body.Fingerprint)
	assert.False(t, body.LastFetch.Result.Success)
	assert.Contains(t, body.LastFetch.Result.Error, "503")
}

func TestHealthAndReadiness(t *testing.T) {
	feed := &fakeFeed{}
	srv := newTestServer(t, store.New(), feed, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ready ReadyResponse
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/readyz", &ready))
	assert.False(t, ready.Ready)
	assert.Equal(t, domain.SourceNone, ready.Source)

	feed.ready = true
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/readyz", &ready))
	assert.True(t, ready.Ready)
}

func TestStats(t *testing.T) {
	limiter := middleware.NewRateLimiter(100, time.Minute, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := newTestServer(t, testCatalog(), &fakeFeed{ready: true}, limiter)

	getJSON(t, srv.URL+"/v1/vehicles", nil)

	var body StatsResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/stats", &body))
	assert.Equal(t, 3, body.Catalog.Total)
	assert.Equal(t, 2, body.Catalog.Makes)
	assert.Equal(t, "test", body.Server.Version)
	assert.GreaterOrEqual(t, body.Server.RequestCount, int64(1))
	require.NotNil(t, body.RateLimit)
	assert.Equal(t, 100, body.RateLimit.RatePerWindow)
}

func TestRateLimitedRoutes(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := newTestServer(t, testCatalog(), &fakeFeed{ready: true}, limiter)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/vehicles", nil))

	resp, err := http.Get(srv.URL + "/v1/vehicles")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Probes are not limited.
	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
