package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
)

const (
	// CacheMaxItems - listings kept per category.
	CacheMaxItems = 10
	// DetailCacheMaxItems - distinct details kept in the detail map.
	DetailCacheMaxItems = 30

	DefaultImageBaseURL = "https://ad-sergic-middle-prod.itroom.fr/"

	// OfflinePlaceholderImage - grey picture with a camera icon, served for every image while offline.
	OfflinePlaceholderImage = `data:image/svg+xml,%3Csvg xmlns="http://www.w3.org/2000/svg" width="200" height="200" viewBox="0 0 200 200"%3E%3Crect fill="%23E5E7EB" width="200" height="200"/%3E%3Cpath fill="%239CA3AF" d="M100 60c-16.5 0-30 13.5-30 30s13.5 30 30 30 30-13.5 30-30-13.5-30-30-30zm0 50c-11 0-20-9-20-20s9-20 20-20 20 9 20 20-9 20-20 20z"/%3E%3Cpath stroke="%239CA3AF" stroke-width="4" stroke-linecap="round" stroke-linejoin="round" fill="none" d="M50 150l40-40 25 25 25-25 40 40"/%3E%3C/svg%3E`
)

// OfflineCache keeps a bounded copy of fetched listings and details in the key-value store.
type OfflineCache struct {
	store        port.KeyValueStorePort
	connectivity port.ConnectivityPort
	imageBaseURL string
	now          func() time.Time

	// mu serializes writers so read-modify-write on the detail map is not lost.
	mu sync.Mutex
}

type OfflineCacheOption func(*OfflineCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) OfflineCacheOption {
	return func(c *OfflineCache) { c.now = now }
}

func WithImageBaseURL(baseURL string) OfflineCacheOption {
	return func(c *OfflineCache) {
		if baseURL != "" {
			c.imageBaseURL = baseURL
		}
	}
}

func NewOfflineCache(store port.KeyValueStorePort, connectivity port.ConnectivityPort, opts ...OfflineCacheOption) *OfflineCache {
	c := &OfflineCache{
		store:        store,
		connectivity: connectivity,
		imageBaseURL: DefaultImageBaseURL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheListings stores the first CacheMaxItems listings of a category, replacing the previous entry.
func (c *OfflineCache) CacheListings(ctx context.Context, listings []domain.Listing, category domain.Category) {
	logger := c.logger(ctx, "CacheListings").WithFields(port.Fields{"category": category.String()})

	key := domain.CacheKey(category)
	if key == "" {
		logger.Warn("Refusing to cache listings for unknown category.", nil)
		return
	}

	n := len(listings)
	if n > CacheMaxItems {
		n = CacheMaxItems
	}
	toCache := make([]domain.Listing, n)
	copy(toCache, listings[:n])

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := saveJSON(ctx, c.store, key, domain.NewCacheEntry(toCache, c.now())); err != nil {
		logger.Error("Failed to cache listings, previous entry kept.", err, nil)
		return
	}
	logger.Debug("Listings cached.", port.Fields{"count": n})
}

// GetCachedListings returns the cached listings of a category, or an empty slice.
func (c *OfflineCache) GetCachedListings(ctx context.Context, category domain.Category) []domain.Listing {
	key := domain.CacheKey(category)
	if key == "" {
		return []domain.Listing{}
	}
	entry, ok := loadJSON[domain.CacheEntry[[]domain.Listing]](ctx, c.store, key)
	if !ok || entry.Data == nil {
		return []domain.Listing{}
	}
	return entry.Data
}

// GetAllCachedListings merges purchase, rental, holiday and favorites, first occurrence of a reference wins.
func (c *OfflineCache) GetAllCachedListings(ctx context.Context) []domain.Listing {
	sources := make([][]domain.Listing, 0, len(domain.Categories)+1)
	for _, category := range domain.Categories {
		sources = append(sources, c.GetCachedListings(ctx, category))
	}
	sources = append(sources, readListingList(ctx, c.store, domain.KeyFavorites))

	seen := make(map[string]struct{})
	result := make([]domain.Listing, 0)
	for _, source := range sources {
		for _, l := range source {
			if _, dup := seen[l.Reference]; dup {
				continue
			}
			seen[l.Reference] = struct{}{}
			result = append(result, l)
		}
	}
	return result
}

// CacheListingDetail adds the detail to the detail map and evicts the oldest slugs beyond DetailCacheMaxItems.
func (c *OfflineCache) CacheListingDetail(ctx context.Context, detail domain.ListingDetail) {
	logger := c.logger(ctx, "CacheListingDetail").WithFields(port.Fields{"slug": detail.Slug})

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := loadJSON[domain.CacheEntry[*domain.DetailMap]](ctx, c.store, domain.KeyCacheDetails)
	if !ok || entry.Data == nil {
		entry = domain.CacheEntry[*domain.DetailMap]{Data: domain.NewDetailMap()}
	}

	entry.Data.Put(detail)
	entry.Timestamp = c.now().UnixMilli()
	if removed := entry.Data.TrimOldest(DetailCacheMaxItems); len(removed) > 0 {
		logger.Debug("Evicted oldest cached details.", port.Fields{"evicted": removed})
	}

	if err := saveJSON(ctx, c.store, domain.KeyCacheDetails, entry); err != nil {
		logger.Error("Failed to cache listing detail.", err, nil)
	}
}

// GetCachedListingDetail returns the cached detail for slug.
func (c *OfflineCache) GetCachedListingDetail(ctx context.Context, slug string) (*domain.ListingDetail, bool) {
	entry, ok := loadJSON[domain.CacheEntry[*domain.DetailMap]](ctx, c.store, domain.KeyCacheDetails)
	if !ok || entry.Data == nil {
		return nil, false
	}
	detail, found := entry.Data.Get(slug)
	if !found {
		return nil, false
	}
	return &detail, true
}

// HasCachedData only looks at purchase and rental; holiday and favorites do not count.
func (c *OfflineCache) HasCachedData(ctx context.Context) bool {
	return len(c.GetCachedListings(ctx, domain.CategoryPurchase)) > 0 ||
		len(c.GetCachedListings(ctx, domain.CategoryRental)) > 0
}

func (c *OfflineCache) GetCacheAge(ctx context.Context) (int, bool) {
	var oldest int64
	found := false
	for _, category := range []domain.Category{domain.CategoryPurchase, domain.CategoryRental} {
		entry, ok := loadJSON[domain.CacheEntry[[]domain.Listing]](ctx, c.store, domain.CacheKey(category))
		if !ok || entry.Timestamp == 0 {
			continue
		}
		if !found || entry.Timestamp < oldest {
			oldest = entry.Timestamp
			found = true
		}
	}
	if !found {
		return 0, false
	}

	minutes := int(c.now().Sub(time.UnixMilli(oldest)) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	return minutes, true
}

// ClearCache removes purchase, rental and details. Holiday listings and favorites are left in place.
func (c *OfflineCache) ClearCache(ctx context.Context) {
	logger := c.logger(ctx, "ClearCache")

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.Delete(ctx,
		domain.KeyCachePurchase,
		domain.KeyCacheRental,
		domain.KeyCacheDetails,
		domain.KeyLegacyTimestamp,
	)
	if err != nil {
		logger.Error("Failed to clear cache.", err, nil)
		return
	}
	logger.Info("Offline cache cleared.", nil)
}

// GetImageURL resolves a picture reference. While offline every reference maps to the placeholder.
func (c *OfflineCache) GetImageURL(ref string) string {
	if c.connectivity != nil && c.connectivity.IsOffline() {
		return OfflinePlaceholderImage
	}
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return strings.TrimRight(c.imageBaseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

// CacheImage is a no-op: the image origin does not allow cross-origin reads, so bytes are never stored.
func (c *OfflineCache) CacheImage(ctx context.Context, ref string) {}

func (c *OfflineCache) Stats(ctx context.Context) domain.CacheStats {
	stats := domain.CacheStats{
		Listings: make(map[domain.Category]int, len(domain.Categories)),
	}
	for _, category := range domain.Categories {
		stats.Listings[category] = len(c.GetCachedListings(ctx, category))
	}
	if entry, ok := loadJSON[domain.CacheEntry[*domain.DetailMap]](ctx, c.store, domain.KeyCacheDetails); ok && entry.Data != nil {
		stats.Details = entry.Data.Len()
	}
	stats.Favorites = len(readListingList(ctx, c.store, domain.KeyFavorites))
	stats.Compare = len(readListingList(ctx, c.store, domain.KeyCompare))
	stats.HasCachedData = stats.Listings[domain.CategoryPurchase] > 0 || stats.Listings[domain.CategoryRental] > 0
	if age, ok := c.GetCacheAge(ctx); ok {
		stats.AgeMinutes = &age
	}
	if c.connectivity != nil {
		stats.Offline = c.connectivity.IsOffline()
	}
	return stats
}

func (c *OfflineCache) logger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "OfflineCache",
		"method":    method,
	})
}

// loadJSON reads and decodes key. Missing keys, storage errors and corrupt blobs all report ok=false.
func loadJSON[T any](ctx context.Context, store port.KeyValueStorePort, key string) (T, bool) {
	var value T
	raw, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			contextkeys.LoggerFromContext(ctx).Warn("Failed to read from store, treating as empty.", port.Fields{
				"key": key, "error": err.Error(),
			})
		}
		return value, false
	}
	if len(raw) == 0 {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Corrupt blob in store, treating as empty.", port.Fields{
			"key": key, "error": err.Error(),
		})
		var zero T
		return zero, false
	}
	return value, true
}

func saveJSON(ctx context.Context, store port.KeyValueStorePort, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw)
}

// readListingList reads a bare JSON array of listings (favorites and compare lists).
func readListingList(ctx context.Context, store port.KeyValueStorePort, key string) []domain.Listing {
	list, ok := loadJSON[[]domain.Listing](ctx, store, key)
	if !ok || list == nil {
		return []domain.Listing{}
	}
	return list
}
