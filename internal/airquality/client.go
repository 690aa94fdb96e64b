// Package airquality proxies city air-quality lookups (api-ninjas) and
// map/station queries (WAQI). Both upstreams are treated as opaque: their
// payloads are passed through without reshaping.
package airquality

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Preeth02/aqi-using-ai/internal/middleware"
)

// Client calls the external air-quality APIs with server-held credentials
// so tokens never reach the browser.
type Client struct {
	httpClient   *http.Client
	ninjasURL    string
	ninjasAPIKey string
	waqiURL      string
	waqiToken    string
}

// NewClient returns an air-quality client for the given upstreams.
func NewClient(ninjasURL, ninjasAPIKey, waqiURL, waqiToken string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		ninjasURL:    strings.TrimRight(ninjasURL, "/"),
		ninjasAPIKey: ninjasAPIKey,
		waqiURL:      strings.TrimRight(waqiURL, "/"),
		waqiToken:    waqiToken,
	}
}

// CityAQI looks up current air quality for a city via api-ninjas.
// The upstream payload is returned verbatim.
func (c *Client) CityAQI(ctx context.Context, city string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v1/airquality?city=%s", c.ninjasURL, url.QueryEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build aqi request failed: %w", err)
	}
	req.Header.Set("X-Api-Key", c.ninjasAPIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	middleware.UpstreamLatency.WithLabelValues("api-ninjas").Observe(time.Since(start).Seconds())
	if err != nil {
		middleware.UpstreamErrors.WithLabelValues("api-ninjas").Inc()
		return nil, fmt.Errorf("aqi request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read aqi response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		middleware.UpstreamErrors.WithLabelValues("api-ninjas").Inc()
		return nil, fmt.Errorf("aqi response status %d: %s", resp.StatusCode, string(raw))
	}

	return json.RawMessage(raw), nil
}

// Search finds WAQI stations matching the keyword.
func (c *Client) Search(ctx context.Context, keyword string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/search/?keyword=%s&token=%s",
		c.waqiURL, url.QueryEscape(keyword), url.QueryEscape(c.waqiToken))
	return c.waqiGet(ctx, endpoint)
}

// Bounds lists WAQI stations inside the given map bounds
// ("north,west,south,east").
func (c *Client) Bounds(ctx context.Context, latlng string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v2/map/bounds/?latlng=%s&token=%s",
		c.waqiURL, url.QueryEscape(latlng), url.QueryEscape(c.waqiToken))
	return c.waqiGet(ctx, endpoint)
}

// StationFeed fetches the detailed feed for one station by UID.
func (c *Client) StationFeed(ctx context.Context, uid string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/feed/@%s/?token=%s",
		c.waqiURL, url.PathEscape(uid), url.QueryEscape(c.waqiToken))
	return c.waqiGet(ctx, endpoint)
}

// waqiGet performs a WAQI API call and unwraps its {status, data} envelope,
// returning the raw data payload.
func (c *Client) waqiGet(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build waqi request failed: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	middleware.UpstreamLatency.WithLabelValues("waqi").Observe(time.Since(start).Seconds())
	if err != nil {
		middleware.UpstreamErrors.WithLabelValues("waqi").Inc()
		return nil, fmt.Errorf("waqi request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read waqi response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		middleware.UpstreamErrors.WithLabelValues("waqi").Inc()
		return nil, fmt.Errorf("waqi response status %d: %s", resp.StatusCode, string(raw))
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("parse waqi json failed: %w", err)
	}
	if envelope.Status != "ok" {
		middleware.UpstreamErrors.WithLabelValues("waqi").Inc()
		return nil, fmt.Errorf("waqi status %q: %s", envelope.Status, string(envelope.Data))
	}

	return envelope.Data, nil
}
