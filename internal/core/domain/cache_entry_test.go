package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detail(slug string) ListingDetail {
	return ListingDetail{Listing: Listing{Slug: slug, Reference: "ref-" + slug}}
}

func TestNewCacheEntry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := NewCacheEntry([]string{"x"}, now)

	assert.Equal(t, now.UnixMilli(), e.Timestamp)
	assert.True(t, e.WrittenAt().Equal(now))
}

func TestDetailMapKeepsInsertionOrder(t *testing.T) {
	m := NewDetailMap()
	m.Put(detail("c"))
	m.Put(detail("a"))
	m.Put(detail("b"))

	updated := detail("a")
	updated.Title = "updated"
	m.Put(updated)

	assert.Equal(t, []string{"c", "a", "b"}, m.Slugs())
	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "updated", got.Title)

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded DetailMap
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []string{"c", "a", "b"}, decoded.Slugs())
	got, ok = decoded.Get("a")
	require.True(t, ok)
	assert.Equal(t, "updated", got.Title)
}

func TestDetailMapDecodeUsesDocumentOrder(t *testing.T) {
	var m DetailMap
	require.NoError(t, json.Unmarshal([]byte(`{"z":{"slug":"z"},"m":{},"a":{"slug":"a"}}`), &m))

	assert.Equal(t, []string{"z", "m", "a"}, m.Slugs())
	assert.Equal(t, 3, m.Len())
}

func TestDetailMapTrimOldest(t *testing.T) {
	m := NewDetailMap()
	for _, s := range []string{"a", "b", "c", "d"} {
		m.Put(detail(s))
	}

	removed := m.TrimOldest(2)
	assert.Equal(t, []string{"a", "b"}, removed)
	assert.Equal(t, []string{"c", "d"}, m.Slugs())
	_, ok := m.Get("a")
	assert.False(t, ok)

	assert.Nil(t, m.TrimOldest(5))
}

func TestDetailMapRejectsNonObject(t *testing.T) {
	var m DetailMap
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &m))
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Zero(t, m.Len())
}

func TestListingDetailPictureURLs(t *testing.T) {
	raw := `["https://img/1.jpg","https://img/2.jpg"]`
	bad := `not json`
	d := ListingDetail{AnnouncementExtras: []Extra{{Name: "pictures", Value: &raw}}}
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, d.PictureURLs())

	d = ListingDetail{AnnouncementExtras: []Extra{{Name: "pictures", Value: &bad}}}
	assert.Equal(t, []string{}, d.PictureURLs())

	assert.Equal(t, []string{}, ListingDetail{}.PictureURLs())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, KeyCachePurchase, CacheKey(CategoryPurchase))
	assert.Equal(t, KeyCacheRental, CacheKey(CategoryRental))
	assert.Equal(t, KeyCacheHoliday, CacheKey(CategoryHoliday))
	assert.Equal(t, "", CacheKey("other"))
}
