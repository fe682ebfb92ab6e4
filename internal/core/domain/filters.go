package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// PlaceTypeAll disables the place type filter.
const PlaceTypeAll = "all"

// Filters - server-side query of the listings endpoints, also applied locally over cached data.
// Nil bounds are "not specified".
type Filters struct {
	ContractType Category
	PlaceType    string
	City         string
	ZipCode      string
	PriceMin     *float64
	PriceMax     *float64
	SurfaceMin   *float64
	SurfaceMax   *float64
}

// WithContractType returns a copy bound to the given category.
func (f Filters) WithContractType(c Category) Filters {
	f.ContractType = c
	return f
}

// Apply narrows listings locally: inclusive price and surface ranges,
// case-insensitive substring on city, prefix on zip code.
func (f Filters) Apply(listings []Listing) []Listing {
	result := make([]Listing, 0, len(listings))

	var cityNeedle string
	city := strings.TrimSpace(f.City)
	if city != "" {
		cityNeedle = cases.Fold().String(city)
	}
	zip := strings.TrimSpace(f.ZipCode)

	for _, l := range listings {
		if !inRange(l.Price, f.PriceMin, f.PriceMax) {
			continue
		}
		if !inRange(l.SquareMeter, f.SurfaceMin, f.SurfaceMax) {
			continue
		}
		if cityNeedle != "" && !strings.Contains(cases.Fold().String(l.City), cityNeedle) {
			continue
		}
		if zip != "" && !strings.HasPrefix(l.ZipCode, zip) {
			continue
		}
		result = append(result, l)
	}
	return result
}

func inRange(v float64, min, max *float64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

// FilterByRooms keeps listings whose room count is within [min, max].
// The count comes from number_of_beds, else from the label. Listings without one are kept.
func FilterByRooms(listings []Listing, min, max *int) []Listing {
	if min == nil && max == nil {
		return listings
	}
	result := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if rooms, ok := l.Rooms(); ok {
			if min != nil && rooms < *min {
				continue
			}
			if max != nil && rooms > *max {
				continue
			}
		}
		result = append(result, l)
	}
	return result
}
