// Package exchange provides an HTTP client for the external
// currency-exchange rate service.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	apperrors "fintrack/internal/errors"
)

// Client fetches conversion rates from an exchangerate-api style service.
// Fetched rates are cached in-memory for the lifetime of the client, so a
// short-lived client should be used where freshness matters. Safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
	mu         sync.RWMutex
	rates      map[string]float64 // "USD/EUR" -> 0.92
}

// NewClient creates a rate client against the given service base URL.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		rates:      make(map[string]float64),
	}
}

// pairResponse is the wire shape of the service's pair endpoint.
type pairResponse struct {
	ConversionRate float64 `json:"conversion_rate"`
}

// GetRate fetches (or returns cached) the conversion rate from one
// currency to another. Identical currencies always yield 1.
func (c *Client) GetRate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return 1.0, nil
	}

	key := from + "/" + to
	c.mu.RLock()
	rate, ok := c.rates[key]
	c.mu.RUnlock()
	if ok {
		return rate, nil
	}

	rate, err := c.fetchRate(ctx, from, to)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.rates[key] = rate
	c.mu.Unlock()

	return rate, nil
}

// fetchRate requests GET {base}/{key}/pair/{from}/{to} and extracts the
// conversion rate. Any transport failure, non-200 status, or missing
// rate maps to ErrRateUnavailable.
func (c *Client) fetchRate(ctx context.Context, from, to string) (float64, error) {
	url := fmt.Sprintf("%s/%s/pair/%s/%s", c.baseURL, c.apiKey, from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.Wrap(apperrors.ErrRateUnavailable,
			fmt.Errorf("rate request %s/%s: unexpected status %d", from, to, resp.StatusCode))
	}

	var pair pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}

	if pair.ConversionRate <= 0 {
		return 0, apperrors.Wrap(apperrors.ErrRateUnavailable,
			fmt.Errorf("invalid conversion rate for %s/%s: %f", from, to, pair.ConversionRate))
	}

	return pair.ConversionRate, nil
}

// GetLatest fetches the full latest-rates document for a base currency.
// The document is passed through to the caller untouched.
func (c *Client) GetLatest(ctx context.Context, base string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, strings.ToUpper(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrRateUnavailable,
			fmt.Errorf("latest rates request for %s: unexpected status %d", base, resp.StatusCode))
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}

	return doc, nil
}
