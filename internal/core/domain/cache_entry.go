package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CacheEntry - envelope stored under every cache key. Timestamp is epoch milliseconds.
type CacheEntry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

// NewCacheEntry wraps data with the write instant.
func NewCacheEntry[T any](data T, now time.Time) CacheEntry[T] {
	return CacheEntry[T]{Data: data, Timestamp: now.UnixMilli()}
}

// WrittenAt returns the write instant.
func (e CacheEntry[T]) WrittenAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// DetailMap - slug -> detail map that remembers insertion order.
// It is serialized as a plain JSON object whose keys appear in insertion order,
// and decoding restores the order from the document.
type DetailMap struct {
	slugs []string
	items map[string]ListingDetail
}

func NewDetailMap() *DetailMap {
	return &DetailMap{items: make(map[string]ListingDetail)}
}

// Put stores the detail under its slug. An existing slug keeps its position.
func (m *DetailMap) Put(detail ListingDetail) {
	if m.items == nil {
		m.items = make(map[string]ListingDetail)
	}
	if _, exists := m.items[detail.Slug]; !exists {
		m.slugs = append(m.slugs, detail.Slug)
	}
	m.items[detail.Slug] = detail
}

func (m *DetailMap) Get(slug string) (ListingDetail, bool) {
	d, ok := m.items[slug]
	return d, ok
}

func (m *DetailMap) Len() int { return len(m.slugs) }

// Slugs returns the keys in insertion order.
func (m *DetailMap) Slugs() []string {
	out := make([]string, len(m.slugs))
	copy(out, m.slugs)
	return out
}

// TrimOldest removes the oldest entries until at most max remain and returns the removed slugs.
func (m *DetailMap) TrimOldest(max int) []string {
	if max < 0 {
		max = 0
	}
	if len(m.slugs) <= max {
		return nil
	}
	cut := len(m.slugs) - max
	removed := make([]string, cut)
	copy(removed, m.slugs[:cut])
	for _, slug := range removed {
		delete(m.items, slug)
	}
	m.slugs = append([]string(nil), m.slugs[cut:]...)
	return removed
}

func (m DetailMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, slug := range m.slugs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(slug)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.items[slug])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal detail %q: %w", slug, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *DetailMap) UnmarshalJSON(data []byte) error {
	m.slugs = nil
	m.items = make(map[string]ListingDetail)

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("detail map: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		slug, ok := tok.(string)
		if !ok {
			return fmt.Errorf("detail map: expected string key, got %v", tok)
		}
		var detail ListingDetail
		if err := dec.Decode(&detail); err != nil {
			return fmt.Errorf("detail map: entry %q: %w", slug, err)
		}
		// The key is authoritative, the embedded slug may be missing in old blobs.
		if _, exists := m.items[slug]; !exists {
			m.slugs = append(m.slugs, slug)
		}
		m.items[slug] = detail
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
