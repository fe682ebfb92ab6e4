package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
)

const DefaultURL = "https://api-adresse.data.gouv.fr/search"

// Client resolves municipalities through the French address API.
// Hits are cached for the process lifetime; misses and failures are not.
type Client struct {
	url        string
	httpClient *http.Client

	mu    sync.RWMutex
	cache map[string]domain.GeoPoint
}

func NewClient(apiURL string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        apiURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      make(map[string]domain.GeoPoint),
	}
}

// Geocode never returns an error: failures are logged and reported as "not found".
func (c *Client) Geocode(ctx context.Context, query string) (*domain.GeoPoint, error) {
	key := domain.FoldText(query)
	if key == "" {
		return nil, nil
	}

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "GeocodingClient",
		"query":     query,
	})

	point, err := c.search(ctx, query)
	if err != nil {
		logger.Warn("Geocoding failed.", port.Fields{"error": err.Error()})
		return nil, nil
	}
	if point == nil {
		logger.Debug("No municipality found.", nil)
		return nil, nil
	}

	c.mu.Lock()
	c.cache[key] = *point
	c.mu.Unlock()
	return point, nil
}

func (c *Client) search(ctx context.Context, query string) (*domain.GeoPoint, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "municipality")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) < 2 {
		return nil, nil
	}
	coords := body.Features[0].Geometry.Coordinates
	return &domain.GeoPoint{Lat: coords[1], Lng: coords[0]}, nil
}
