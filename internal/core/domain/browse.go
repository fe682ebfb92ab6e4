package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PageSize - number of listings revealed per "load more" step.
const PageSize = 12

// DefaultRadiusKm is used by text and location search when no radius is given.
const DefaultRadiusKm = 10.0

// SortOption - ordering of a browse result.
type SortOption string

const (
	SortRecent    SortOption = "recent"
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
	SortSurface   SortOption = "surface"
)

// ParseSortOption falls back to SortRecent for unknown values.
func ParseSortOption(raw string) SortOption {
	switch SortOption(strings.ToLower(strings.TrimSpace(raw))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	case SortSurface:
		return SortSurface
	default:
		return SortRecent
	}
}

// SortListings returns a sorted copy. The sort is stable.
func SortListings(listings []Listing, by SortOption) []Listing {
	sorted := make([]Listing, len(listings))
	copy(sorted, listings)

	var less func(a, b Listing) bool
	switch by {
	case SortPriceAsc:
		less = func(a, b Listing) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b Listing) bool { return a.Price > b.Price }
	case SortSurface:
		less = func(a, b Listing) bool { return a.SquareMeter > b.SquareMeter }
	default:
		less = func(a, b Listing) bool { return a.PublishedAt().After(b.PublishedAt()) }
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// Paginate reveals the first page*PageSize listings. Pages start at 1.
func Paginate(listings []Listing, page int) (visible []Listing, hasMore bool) {
	if page < 1 {
		page = 1
	}
	limit := page * PageSize
	if limit >= len(listings) {
		return listings, false
	}
	return listings[:limit], true
}

var roomsLabelPattern = regexp.MustCompile(`(?i)T(\d+)`)

// RoomsFromLabel derives the room count from labels like "T3" or "Studio".
func RoomsFromLabel(label string) (int, bool) {
	if label == "" {
		return 0, false
	}
	if m := roomsLabelPattern.FindStringSubmatch(label); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if strings.Contains(strings.ToLower(label), "studio") {
		return 1, true
	}
	return 0, false
}

// FoldText lowercases and strips diacritics: "Chennevières" -> "chennevieres".
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		stripped = strings.TrimSpace(s)
	}
	return cases.Fold().String(stripped)
}

// MatchesQuery reports whether a free-text search hits the listing city or zip code.
func MatchesQuery(l Listing, query string) bool {
	q := FoldText(query)
	if q == "" {
		return true
	}
	return strings.Contains(FoldText(l.City), q) || strings.Contains(l.ZipCode, q)
}
