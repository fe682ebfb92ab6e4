package domain

// BrowseQuery - what the listing screen asks for: server filters plus client-side narrowing.
type BrowseQuery struct {
	Filters Filters

	// Query is a city or postal code; it is geocoded when possible and searched within RadiusKm.
	Query    string
	RadiusKm float64

	// UserLocation enables the "around me" radius filter.
	UserLocation *GeoPoint

	RoomsMin *int
	RoomsMax *int

	Sort SortOption
	Page int
}

// BrowseResult - one page of the narrowed, sorted list.
type BrowseResult struct {
	Listings []Listing `json:"announcements"`
	Total    int       `json:"total_result"`
	Page     int       `json:"page"`
	HasMore  bool      `json:"has_more"`
	Offline  bool      `json:"offline"`
	// Center is the point used for the text search radius, if any.
	Center *GeoPoint `json:"center,omitempty"`
}
