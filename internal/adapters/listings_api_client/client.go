package listings_api_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
)

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 4 << 10

// Client talks to the remote listings API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) doRequest(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	if c.token != "" {
		req.Header.Set("api-token", c.token)
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

// getJSON performs a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any, logger port.LoggerPort) error {
	logger.Debug("Sending request to listings API", port.Fields{"url": rawURL})

	resp, err := c.doRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		logger.Error("Failed to perform request to listings API", err, nil)
		return fmt.Errorf("listings API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("listings API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusNotFound {
			err = fmt.Errorf("%w: %w", domain.ErrListingNotFound, err)
		}
		logger.Error("Received error response from listings API", err, port.Fields{"status_code": resp.StatusCode})
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error("Failed to decode listings API response", err, nil)
		return fmt.Errorf("failed to decode listings API response: %w", err)
	}
	return nil
}

func (c *Client) FetchListings(ctx context.Context, filters domain.Filters) (*domain.ListingPage, error) {
	logger := c.logger(ctx, "FetchListings")
	endpoint := c.baseURL + "/announcements/" + encodeQuery(filters, true)

	var body pageResponse
	if err := c.getJSON(ctx, endpoint, &body, logger); err != nil {
		return nil, err
	}
	page := body.toDomain()
	logger.Info("Listings received.", port.Fields{"count": len(page.Announcements), "total": page.TotalResult})
	return page, nil
}

func (c *Client) FetchHolidays(ctx context.Context, filters domain.Filters) (*domain.ListingPage, error) {
	logger := c.logger(ctx, "FetchHolidays")
	endpoint := c.baseURL + "/holidays/" + encodeQuery(filters, false)

	var body pageResponse
	if err := c.getJSON(ctx, endpoint, &body, logger); err != nil {
		return nil, err
	}
	page := body.toDomain()
	logger.Info("Holiday listings received.", port.Fields{"count": len(page.Announcements)})
	return page, nil
}

func (c *Client) FetchDetail(ctx context.Context, slug string) (*domain.ListingDetail, error) {
	logger := c.logger(ctx, "FetchDetail").WithFields(port.Fields{"slug": slug})
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("slug is required")
	}
	endpoint := c.baseURL + "/announcements/" + url.PathEscape(slug)

	var detail domain.ListingDetail
	if err := c.getJSON(ctx, endpoint, &detail, logger); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetBySlug fetches a detail straight from the API, bypassing the offline cache.
func (c *Client) GetBySlug(ctx context.Context, slug string) (*domain.ListingDetail, error) {
	return c.FetchDetail(ctx, slug)
}

func (c *Client) logger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ListingsApiClient",
		"method":    method,
	})
}

// encodeQuery renders filters as a query string (with leading "?", or "" when empty).
// Empty strings and zero bounds are left out, as is place_type "all".
func encodeQuery(f domain.Filters, withContractType bool) string {
	q := url.Values{}
	if withContractType && f.ContractType != "" {
		q.Set("contract_type", f.ContractType.String())
	}
	if f.PlaceType != "" && f.PlaceType != domain.PlaceTypeAll {
		q.Set("place_type", f.PlaceType)
	}
	if f.City != "" {
		q.Set("city", f.City)
	}
	if f.ZipCode != "" {
		q.Set("zip_code", f.ZipCode)
	}
	setNumber(q, "price_min", f.PriceMin)
	setNumber(q, "price_max", f.PriceMax)
	setNumber(q, "surface_min", f.SurfaceMin)
	setNumber(q, "surface_max", f.SurfaceMax)

	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func setNumber(q url.Values, name string, v *float64) {
	if v == nil || *v == 0 {
		return
	}
	q.Set(name, strconv.FormatFloat(*v, 'f', -1, 64))
}
