package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomsFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{"T3", 3, true},
		{"Appartement t2", 2, true},
		{"Maison T10", 10, true},
		{"Studio", 1, true},
		{"studio meublé", 1, true},
		{"Parking", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := RoomsFromLabel(tt.label)
		assert.Equal(t, tt.ok, ok, tt.label)
		assert.Equal(t, tt.want, got, tt.label)
	}
}

func TestListingRooms(t *testing.T) {
	rooms, ok := Listing{NumberOfBeds: ptrI(4), LabelType: "T2"}.Rooms()
	assert.True(t, ok)
	assert.Equal(t, 4, rooms)

	rooms, ok = Listing{LabelType: "T2"}.Rooms()
	assert.True(t, ok)
	assert.Equal(t, 2, rooms)

	_, ok = Listing{LabelType: "Local"}.Rooms()
	assert.False(t, ok)
}

func TestSortListings(t *testing.T) {
	listings := []Listing{
		{Reference: "old", Price: 200, SquareMeter: 50, Date: "2024-01-01T10:00:00"},
		{Reference: "new", Price: 100, SquareMeter: 30, Date: "2024-06-01T10:00:00"},
		{Reference: "mid", Price: 300, SquareMeter: 90, Date: "2024-03-01"},
		{Reference: "nodate", Price: 100, SquareMeter: 30},
	}

	assert.Equal(t, []string{"new", "mid", "old", "nodate"}, references(SortListings(listings, SortRecent)))
	assert.Equal(t, []string{"new", "nodate", "old", "mid"}, references(SortListings(listings, SortPriceAsc)))
	assert.Equal(t, []string{"mid", "old", "new", "nodate"}, references(SortListings(listings, SortPriceDesc)))
	assert.Equal(t, []string{"mid", "old", "new", "nodate"}, references(SortListings(listings, SortSurface)))

	// input untouched
	assert.Equal(t, "old", listings[0].Reference)
}

func TestParseSortOption(t *testing.T) {
	assert.Equal(t, SortPriceAsc, ParseSortOption("PRICE-ASC"))
	assert.Equal(t, SortSurface, ParseSortOption("surface"))
	assert.Equal(t, SortRecent, ParseSortOption(""))
	assert.Equal(t, SortRecent, ParseSortOption("cheapest"))
}

func TestPaginate(t *testing.T) {
	listings := make([]Listing, 30)

	visible, more := Paginate(listings, 1)
	assert.Len(t, visible, PageSize)
	assert.True(t, more)

	visible, more = Paginate(listings, 2)
	assert.Len(t, visible, 2*PageSize)
	assert.True(t, more)

	visible, more = Paginate(listings, 3)
	assert.Len(t, visible, 30)
	assert.False(t, more)

	visible, more = Paginate(listings[:PageSize], 1)
	assert.Len(t, visible, PageSize)
	assert.False(t, more)

	visible, _ = Paginate(listings, 0)
	assert.Len(t, visible, PageSize)
}

func TestMatchesQuery(t *testing.T) {
	l := Listing{City: "Chennevières-sur-Marne", ZipCode: "94430"}

	assert.True(t, MatchesQuery(l, "chennevieres"))
	assert.True(t, MatchesQuery(l, "CHENNEVIÈRES"))
	assert.True(t, MatchesQuery(l, "944"))
	assert.True(t, MatchesQuery(l, "  "))
	assert.False(t, MatchesQuery(l, "Lyon"))
}

func TestFoldText(t *testing.T) {
	assert.Equal(t, "chennevieres", FoldText(" Chennevières "))
	assert.Equal(t, "saint-etienne", FoldText("Saint-Étienne"))
}

func TestNewSharePayload(t *testing.T) {
	p := NewSharePayload(Listing{LabelType: "T3", Price: 250000, City: "Lyon"}, "https://sergic.app/annonce/t3-lyon")

	assert.Equal(t, "T3", p.Title)
	assert.Equal(t, "https://sergic.app/annonce/t3-lyon", p.URL)
	require.True(t, strings.HasPrefix(p.Text, "Découvrez cette annonce : T3 - "), p.Text)
	require.True(t, strings.HasSuffix(p.Text, " € - Lyon"), p.Text)

	price := strings.TrimSuffix(strings.TrimPrefix(p.Text, "Découvrez cette annonce : T3 - "), " € - Lyon")
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, price)
	assert.Equal(t, "250000", digits)
	assert.NotContains(t, price, ",")

	titled := NewSharePayload(Listing{LabelType: "T3", Title: "Bel appartement", Price: 900, City: "Paris"}, "")
	assert.Equal(t, "Bel appartement", titled.Title)
	assert.Equal(t, "Découvrez cette annonce : Bel appartement - 900 € - Paris", titled.Text)
}

func TestFormatPriceFRDecimals(t *testing.T) {
	assert.Contains(t, FormatPriceFR(12.5), ",50")
}
