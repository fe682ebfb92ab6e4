package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/adapters/agencies"
	"github.com/Maureenhddi/sergic-app/internal/adapters/connectivity"
	"github.com/Maureenhddi/sergic-app/internal/adapters/contracts"
	"github.com/Maureenhddi/sergic-app/internal/adapters/kvstore"
	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/usecase"
	"github.com/Maureenhddi/sergic-app/pkg/workerpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type stubAPI struct {
	pages   map[domain.Category][]domain.Listing
	details map[string]domain.ListingDetail
}

func (s *stubAPI) FetchListings(_ context.Context, filters domain.Filters) (*domain.ListingPage, error) {
	items := s.pages[filters.ContractType]
	return &domain.ListingPage{Announcements: items, TotalResult: len(items)}, nil
}

func (s *stubAPI) FetchHolidays(ctx context.Context, filters domain.Filters) (*domain.ListingPage, error) {
	return s.FetchListings(ctx, filters.WithContractType(domain.CategoryHoliday))
}

func (s *stubAPI) FetchDetail(_ context.Context, slug string) (*domain.ListingDetail, error) {
	d, ok := s.details[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, slug)
	}
	return &d, nil
}

type fixture struct {
	router  http.Handler
	monitor *connectivity.Monitor
	cache   *usecase.OfflineCache
}

func rental(ref string) domain.Listing {
	return domain.Listing{
		Reference:    ref,
		Slug:         "slug-" + ref,
		City:         "Lyon",
		ZipCode:      "69003",
		ContractType: string(domain.CategoryRental),
		Price:        900,
		LabelType:    "T2",
		Title:        "Appartement " + ref,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := contextkeys.NoopLogger()

	pictures := `["a.jpg","b.jpg"]`
	api := &stubAPI{
		pages: map[domain.Category][]domain.Listing{
			domain.CategoryRental: {rental("R1"), rental("R2")},
		},
		details: map[string]domain.ListingDetail{
			"slug-R1": {
				Listing:            rental("R1"),
				Agency:             &domain.Agency{Siret: "37795663600064"},
				AnnouncementExtras: []domain.Extra{{Name: "pictures", Value: &pictures}},
			},
		},
	}

	schemas, err := contracts.NewRegistry()
	require.NoError(t, err)
	store := contracts.NewValidatingStore(kvstore.NewMemoryStore(), schemas)
	monitor := connectivity.NewMonitor("sergic.app", false, logger)
	cache := usecase.NewOfflineCache(store, monitor)
	listings := usecase.NewListingService(api, cache, monitor)

	registry := usecase.NewFavoritesRegistry(ctx, store, listings, workerpool.New(1, 0))
	t.Cleanup(registry.Close)

	directory, err := agencies.NewDirectory()
	require.NoError(t, err)

	handlers := Handlers{
		Listings: NewListingsHandler(
			listings,
			usecase.NewBrowseListingsUseCase(listings, nil, nil, monitor),
			usecase.NewShareListingUseCase(listings, nil),
			directory,
		),
		Cache:        NewCacheHandler(cache),
		Favorites:    NewFavoritesHandler(registry),
		Connectivity: NewConnectivityHandler(monitor, nil),
	}
	return &fixture{
		router:  NewRouter(handlers, []string{"http://localhost:8100"}, logger),
		monitor: monitor,
		cache:   cache,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthzAndTraceID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-ID"))
}

func TestGetListingsOnlineThenOffline(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/listings?contract_type=location", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	page := decode[domain.ListingPage](t, rec)
	assert.Len(t, page.Announcements, 2)

	rec = f.do(t, http.MethodPut, "/api/v1/connectivity", `{"offline":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[connectivityState](t, rec).Offline)

	rec = f.do(t, http.MethodGet, "/api/v1/listings?contract_type=rental", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[domain.ListingPage](t, rec)
	assert.Len(t, page.Announcements, 2)
	assert.Equal(t, "R1", page.Announcements[0].Reference)
}

func TestGetListingsBadQuery(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{
		"/api/v1/listings?contract_type=bogus",
		"/api/v1/listings?price_min=cheap",
		"/api/v1/listings/browse?page=0",
		"/api/v1/listings/browse?lat=45.7",
		"/api/v1/listings/browse?radius_km=-1",
		"/api/v1/listings/browse?rooms_min=two",
	} {
		rec := f.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.NotEmpty(t, decode[map[string]string](t, rec)["error"], path)
	}
}

func TestBrowseListings(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/listings/browse?contract_type=location&q=lyon&sort=price_asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[domain.BrowseResult](t, rec)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.False(t, result.HasMore)
	assert.False(t, result.Offline)

	rec = f.do(t, http.MethodPost, "/api/v1/listings/refresh?contract_type=location&q=paris", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[domain.BrowseResult](t, rec).Total)
}

func TestGetListingDetail(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/listings/slug-R1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "R1", decode[domain.ListingDetail](t, rec).Reference)

	rec = f.do(t, http.MethodGet, "/api/v1/listings/slug-R1/pictures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, decode[picturesResponse](t, rec).Pictures)

	rec = f.do(t, http.MethodGet, "/api/v1/listings/slug-R1/agency", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Paris", decode[domain.AgencyInfo](t, rec).City)

	rec = f.do(t, http.MethodGet, "/api/v1/listings/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.monitor.SetOffline()

	rec = f.do(t, http.MethodGet, "/api/v1/listings/slug-R1", "")
	assert.Equal(t, http.StatusOK, rec.Code, "detail was cached by the first read")

	rec = f.do(t, http.MethodGet, "/api/v1/listings/unknown", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestShareListing(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/listings/slug-R1/share", `{"url":"https://sergic.app/l/slug-R1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decode[domain.SharePayload](t, rec)
	assert.Equal(t, "Appartement R1", payload.Title)
	assert.Equal(t, "https://sergic.app/l/slug-R1", payload.URL)

	rec = f.do(t, http.MethodPost, "/api/v1/listings/slug-R1/share", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/listings/slug-R1/share", `{"url":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoritesRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/favorites", `{"city":"Lyon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/favorites", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/favorites", `{"reference":"R1","slug":"slug-R1","title":"T2 Lyon"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, decode[listResponse](t, rec).Count)

	rec = f.do(t, http.MethodPost, "/api/v1/favorites/toggle", `{"reference":"R2","slug":"slug-R2","title":"T2 Lyon"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[toggleResponse](t, rec)
	assert.True(t, toggled.Added)
	assert.Equal(t, 2, toggled.Count)

	rec = f.do(t, http.MethodPost, "/api/v1/favorites/toggle", `{"reference":"R2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[toggleResponse](t, rec).Added)

	rec = f.do(t, http.MethodDelete, "/api/v1/favorites/R1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[listResponse](t, rec)
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Items)

	rec = f.do(t, http.MethodDelete, "/api/v1/favorites", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCompareRoutes(t *testing.T) {
	f := newFixture(t)

	for i := 1; i <= usecase.CompareMaxItems; i++ {
		body := fmt.Sprintf(`{"reference":"C%d","slug":"slug-C%d","title":"T%d"}`, i, i, i)
		rec := f.do(t, http.MethodPost, "/api/v1/compare", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, i, decode[listResponse](t, rec).Count)
	}

	rec := f.do(t, http.MethodPost, "/api/v1/compare", `{"reference":"C1","title":"T1"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "already present")

	rec = f.do(t, http.MethodPost, "/api/v1/compare", `{"reference":"C4","title":"T4"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/compare/toggle", `{"reference":"C4","title":"T4"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/compare/toggle", `{"reference":"C2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[toggleResponse](t, rec)
	assert.False(t, toggled.Added)
	assert.Equal(t, 2, toggled.Count)

	rec = f.do(t, http.MethodDelete, "/api/v1/compare/C1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/compare", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[listResponse](t, rec)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "C3", list.Items[0].Reference)

	rec = f.do(t, http.MethodDelete, "/api/v1/compare", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCacheRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/cache/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[cacheStatsResponse](t, rec)
	assert.False(t, stats.HasCachedData)
	assert.Nil(t, stats.AgeMinutes)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/listings?contract_type=location", "").Code)

	rec = f.do(t, http.MethodGet, "/api/v1/cache/stats", "")
	stats = decode[cacheStatsResponse](t, rec)
	assert.True(t, stats.HasCachedData)
	assert.Equal(t, 2, stats.Listings["location"])
	require.NotNil(t, stats.AgeMinutes)
	assert.Equal(t, 0, *stats.AgeMinutes)

	rec = f.do(t, http.MethodGet, "/api/v1/cache/listings?category=location", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cached := decode[cacheListingsResponse](t, rec)
	assert.Equal(t, "location", cached.Category)
	assert.Equal(t, 2, cached.Total)

	rec = f.do(t, http.MethodGet, "/api/v1/cache/listings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[cacheListingsResponse](t, rec).Total)

	rec = f.do(t, http.MethodGet, "/api/v1/cache/listings?category=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/cache/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, f.cache.HasCachedData(context.Background()))
}

func TestImageRoute(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/images?ref=photos/1.jpg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.DefaultImageBaseURL+"photos/1.jpg", decode[imageResponse](t, rec).URL)

	f.monitor.SetOffline()
	rec = f.do(t, http.MethodGet, "/api/v1/images?ref=photos/1.jpg", "")
	assert.Equal(t, usecase.OfflinePlaceholderImage, decode[imageResponse](t, rec).URL)
}

func TestConnectivityRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/connectivity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[connectivityState](t, rec).Offline)

	for _, body := range []string{`{}`, `{"offline":"yes"}`, `nope`} {
		rec = f.do(t, http.MethodPut, "/api/v1/connectivity", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.False(t, f.monitor.IsOffline())
}

func TestConnectivityStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/connectivity/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var state connectivityState
	require.NoError(t, wsjson.Read(ctx, conn, &state))
	assert.False(t, state.Offline)

	f.monitor.SetOffline()
	require.NoError(t, wsjson.Read(ctx, conn, &state))
	assert.True(t, state.Offline)

	f.monitor.SetOnline()
	require.NoError(t, wsjson.Read(ctx, conn, &state))
	assert.False(t, state.Offline)
}
