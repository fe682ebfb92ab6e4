package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

var errNetwork = errors.New("network unreachable")

type fakeConnectivity struct {
	offline atomic.Bool
}

func online() *fakeConnectivity { return &fakeConnectivity{} }

func offline() *fakeConnectivity {
	c := &fakeConnectivity{}
	c.offline.Store(true)
	return c
}

func (c *fakeConnectivity) IsOffline() bool { return c.offline.Load() }

type fakeAPI struct {
	mu       sync.Mutex
	listings map[domain.Category]*domain.ListingPage
	fail     map[domain.Category]error
	details  map[string]*domain.ListingDetail
	detErr   error
	calls    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		listings: map[domain.Category]*domain.ListingPage{},
		fail:     map[domain.Category]error{},
		details:  map[string]*domain.ListingDetail{},
	}
}

func (a *fakeAPI) record(call string) {
	a.mu.Lock()
	a.calls = append(a.calls, call)
	a.mu.Unlock()
}

func (a *fakeAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeAPI) FetchListings(_ context.Context, filters domain.Filters) (*domain.ListingPage, error) {
	a.record("listings:" + filters.ContractType.String())
	if err := a.fail[filters.ContractType]; err != nil {
		return nil, err
	}
	if page, ok := a.listings[filters.ContractType]; ok {
		return page, nil
	}
	return &domain.ListingPage{}, nil
}

func (a *fakeAPI) FetchHolidays(_ context.Context, _ domain.Filters) (*domain.ListingPage, error) {
	a.record("holidays")
	if err := a.fail[domain.CategoryHoliday]; err != nil {
		return nil, err
	}
	if page, ok := a.listings[domain.CategoryHoliday]; ok {
		return page, nil
	}
	return &domain.ListingPage{}, nil
}

func (a *fakeAPI) FetchDetail(_ context.Context, slug string) (*domain.ListingDetail, error) {
	a.record("detail:" + slug)
	if a.detErr != nil {
		return nil, a.detErr
	}
	if d, ok := a.details[slug]; ok {
		return d, nil
	}
	return nil, domain.ErrListingNotFound
}

// fakeDetails answers GetBySlug; gate, when set, holds every call until it is closed.
type fakeDetails struct {
	details map[string]domain.ListingDetail
	err     error
	gate    chan struct{}
	calls   atomic.Int32
}

func (f *fakeDetails) GetBySlug(ctx context.Context, slug string) (*domain.ListingDetail, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[slug]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return &d, nil
}

type fakeDevice struct {
	shares  chan domain.SharePayload
	haptics chan domain.HapticStyle
	err     error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		shares:  make(chan domain.SharePayload, 4),
		haptics: make(chan domain.HapticStyle, 4),
	}
}

func (d *fakeDevice) Share(_ context.Context, payload domain.SharePayload) error {
	d.shares <- payload
	return d.err
}

func (d *fakeDevice) Haptic(_ context.Context, style domain.HapticStyle) error {
	d.haptics <- style
	return d.err
}

type fakeGeocoder struct {
	points map[string]domain.GeoPoint
	calls  atomic.Int32
}

func (g *fakeGeocoder) Geocode(_ context.Context, query string) (*domain.GeoPoint, error) {
	g.calls.Add(1)
	if p, ok := g.points[query]; ok {
		return &p, nil
	}
	return nil, nil
}

// brokenStore fails every write, and every read when readErr is set.
type brokenStore struct {
	inner   *memStore
	readErr bool
}

func (s *brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.readErr {
		return nil, errors.New("disk I/O error")
	}
	return s.inner.Get(ctx, key)
}

func (s *brokenStore) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func (s *brokenStore) Delete(context.Context, ...string) error {
	return errors.New("quota exceeded")
}

// memStore is a minimal map store; the real one lives in the kvstore adapter.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *memStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func listing(ref string) domain.Listing {
	return domain.Listing{Reference: ref, Slug: "slug-" + ref, City: "Lyon", ZipCode: "69003", Price: 1000}
}

func listingsN(prefix string, n int) []domain.Listing {
	out := make([]domain.Listing, n)
	for i := range out {
		out[i] = listing(prefix + string(rune('a'+i)))
	}
	return out
}

func refs(listings []domain.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.Reference
	}
	return out
}
