package rest

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// parseFilters reads the listing filters from the query string.
func parseFilters(q url.Values) (domain.Filters, error) {
	f := domain.Filters{
		PlaceType: strings.TrimSpace(q.Get("place_type")),
		City:      strings.TrimSpace(q.Get("city")),
		ZipCode:   strings.TrimSpace(q.Get("zip_code")),
	}
	if raw := q.Get("contract_type"); strings.TrimSpace(raw) != "" {
		c, err := domain.ParseCategory(raw)
		if err != nil {
			return f, err
		}
		f.ContractType = c
	}

	var err error
	if f.PriceMin, err = optionalFloat(q, "price_min"); err != nil {
		return f, err
	}
	if f.PriceMax, err = optionalFloat(q, "price_max"); err != nil {
		return f, err
	}
	if f.SurfaceMin, err = optionalFloat(q, "surface_min"); err != nil {
		return f, err
	}
	if f.SurfaceMax, err = optionalFloat(q, "surface_max"); err != nil {
		return f, err
	}
	return f, nil
}

// parseBrowseQuery reads filters plus the client-side narrowing parameters.
func parseBrowseQuery(q url.Values) (domain.BrowseQuery, error) {
	filters, err := parseFilters(q)
	if err != nil {
		return domain.BrowseQuery{}, err
	}
	query := domain.BrowseQuery{
		Filters: filters,
		Query:   strings.TrimSpace(q.Get("q")),
		Sort:    domain.ParseSortOption(q.Get("sort")),
		Page:    1,
	}

	radius, err := optionalFloat(q, "radius_km")
	if err != nil {
		return query, err
	}
	if radius != nil {
		if *radius < 0 {
			return query, badRequest("radius_km must be positive")
		}
		query.RadiusKm = *radius
	}

	lat, err := optionalFloat(q, "lat")
	if err != nil {
		return query, err
	}
	lng, err := optionalFloat(q, "lng")
	if err != nil {
		return query, err
	}
	if (lat == nil) != (lng == nil) {
		return query, badRequest("lat and lng go together")
	}
	if lat != nil {
		query.UserLocation = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}

	if query.RoomsMin, err = optionalInt(q, "rooms_min"); err != nil {
		return query, err
	}
	if query.RoomsMax, err = optionalInt(q, "rooms_max"); err != nil {
		return query, err
	}
	page, err := optionalInt(q, "page")
	if err != nil {
		return query, err
	}
	if page != nil {
		if *page < 1 {
			return query, badRequest("page starts at 1")
		}
		query.Page = *page
	}
	return query, nil
}

func optionalFloat(q url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest("%s must be a number", name)
	}
	return &v, nil
}

func optionalInt(q url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, badRequest("%s must be an integer", name)
	}
	return &v, nil
}

type picturesResponse struct {
	Slug     string   `json:"slug"`
	Pictures []string `json:"pictures"`
}

type shareRequest struct {
	URL string `json:"url"`
}

type cacheListingsResponse struct {
	Category      string           `json:"category,omitempty"`
	Announcements []domain.Listing `json:"announcements"`
	Total         int              `json:"total_result"`
}

type cacheStatsResponse struct {
	Listings      map[string]int `json:"listings"`
	Details       int            `json:"details"`
	Favorites     int            `json:"favorites"`
	Compare       int            `json:"compare"`
	HasCachedData bool           `json:"has_cached_data"`
	AgeMinutes    *int           `json:"age_minutes"`
	Offline       bool           `json:"offline"`
}

func newCacheStatsResponse(s domain.CacheStats) cacheStatsResponse {
	listings := make(map[string]int, len(s.Listings))
	for c, n := range s.Listings {
		listings[c.String()] = n
	}
	return cacheStatsResponse{
		Listings:      listings,
		Details:       s.Details,
		Favorites:     s.Favorites,
		Compare:       s.Compare,
		HasCachedData: s.HasCachedData,
		AgeMinutes:    s.AgeMinutes,
		Offline:       s.Offline,
	}
}

type imageResponse struct {
	URL string `json:"url"`
}

type listResponse struct {
	Items []domain.Listing `json:"items"`
	Count int              `json:"count"`
}

func newListResponse(items []domain.Listing) listResponse {
	if items == nil {
		items = []domain.Listing{}
	}
	return listResponse{Items: items, Count: len(items)}
}

type toggleResponse struct {
	Reference string `json:"reference"`
	Added     bool   `json:"added"`
	Count     int    `json:"count"`
}

type connectivityState struct {
	Offline bool `json:"offline"`
}

type connectivityRequest struct {
	Offline *bool `json:"offline"`
}
