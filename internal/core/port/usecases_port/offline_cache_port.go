package usecases_port

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

// OfflineCachePort - bounded local mirror of fetched listings. No method returns an error:
// storage failures degrade to "no data" on read and to a dropped write.
type OfflineCachePort interface {
	CacheListings(ctx context.Context, listings []domain.Listing, category domain.Category)
	GetCachedListings(ctx context.Context, category domain.Category) []domain.Listing
	GetAllCachedListings(ctx context.Context) []domain.Listing

	CacheListingDetail(ctx context.Context, detail domain.ListingDetail)
	GetCachedListingDetail(ctx context.Context, slug string) (*domain.ListingDetail, bool)

	HasCachedData(ctx context.Context) bool
	// GetCacheAge returns whole minutes since the older purchase/rental write; ok is false when neither exists.
	GetCacheAge(ctx context.Context) (minutes int, ok bool)
	ClearCache(ctx context.Context)
	GetImageURL(ref string) string

	Stats(ctx context.Context) domain.CacheStats
}
