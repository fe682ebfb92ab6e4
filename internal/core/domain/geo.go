package domain

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = earthRadiusKm * math.Pi / 180

	// geohash precision used when looking for a prefilter cell; 9 chars is a few meters.
	maxPrefilterPrecision = 9
)

// GeoPoint - latitude/longitude in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Haversine returns the great-circle distance in kilometers.
func Haversine(a, b GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// FilterByRadius keeps the listings within radiusKm of center, in their original order.
// Listings without coordinates are dropped.
func FilterByRadius(listings []Listing, center GeoPoint, radiusKm float64) []Listing {
	result := make([]Listing, 0, len(listings))
	if radiusKm < 0 {
		return result
	}

	cells, precision, usePrefilter := prefilterCells(center, radiusKm)
	for _, l := range listings {
		point, ok := l.Coordinates()
		if !ok {
			continue
		}
		if usePrefilter {
			if _, near := cells[geohash.EncodeWithPrecision(point.Lat, point.Lng, precision)]; !near {
				continue
			}
		}
		if Haversine(center, point) <= radiusKm {
			result = append(result, l)
		}
	}
	return result
}

// prefilterCells returns the center cell and its 8 neighbors at the finest precision whose
// cells are still larger than the radius, so every point in range falls into one of them.
func prefilterCells(center GeoPoint, radiusKm float64) (map[string]struct{}, uint, bool) {
	for p := maxPrefilterPrecision; p >= 1; p-- {
		hash := geohash.EncodeWithPrecision(center.Lat, center.Lng, uint(p))
		box := geohash.BoundingBox(hash)

		cellHeight := box.MaxLat - box.MinLat
		farLat := math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat)) + cellHeight
		if farLat >= 89 {
			return nil, 0, false
		}
		heightKm := cellHeight * kmPerDegree
		widthKm := (box.MaxLng - box.MinLng) * kmPerDegree * math.Cos(toRad(farLat))

		if heightKm >= radiusKm && widthKm >= 1.5*radiusKm {
			cells := make(map[string]struct{}, 9)
			cells[hash] = struct{}{}
			for _, n := range geohash.Neighbors(hash) {
				cells[n] = struct{}{}
			}
			return cells, uint(p), true
		}
	}
	return nil, 0, false
}
