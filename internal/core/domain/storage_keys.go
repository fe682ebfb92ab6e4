package domain

// Storage keys shared by the offline cache and the favorites registry.
// Values are kept identical to the ones used by the mobile app so existing stores stay readable.
const (
	KeyCachePurchase = "sergic_cache_achat"
	KeyCacheRental   = "sergic_cache_location"
	KeyCacheHoliday  = "sergic_cache_vacance"
	KeyCacheDetails  = "sergic_cache_details"
	KeyFavorites     = "sergic_favorites"
	KeyCompare       = "sergic_compare"

	// KeyLegacyTimestamp is no longer written, only removed on clear.
	KeyLegacyTimestamp = "sergic_cache_timestamp"
)

// CacheKey returns the storage key of a category cache.
func CacheKey(c Category) string {
	switch c {
	case CategoryPurchase:
		return KeyCachePurchase
	case CategoryRental:
		return KeyCacheRental
	case CategoryHoliday:
		return KeyCacheHoliday
	}
	return ""
}

// CacheStats - snapshot of what the offline cache currently holds.
type CacheStats struct {
	Listings      map[Category]int `json:"listings"`
	Details       int              `json:"details"`
	Favorites     int              `json:"favorites"`
	Compare       int              `json:"compare"`
	HasCachedData bool             `json:"has_cached_data"`
	AgeMinutes    *int             `json:"age_minutes"`
	Offline       bool             `json:"offline"`
}
