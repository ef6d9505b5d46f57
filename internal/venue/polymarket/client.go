// Package polymarket implements the venue.Client contract against the
// Polymarket Gamma API.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quantcluster/marketlens/internal/domain"
	"github.com/quantcluster/marketlens/internal/venue"
)

// VenueName identifies Polymarket in domain.Market.Venue.
const VenueName = "polymarket"

const defaultPageSize = 100

// Client is the REST client for the Polymarket Gamma API, which provides
// market discovery and metadata.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// New creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func New(baseURL string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		baseURL:  baseURL,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the venue identifier.
func (c *Client) Name() string { return VenueName }

// FetchMarkets pages through the Gamma markets listing and returns every
// active market.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	var markets []domain.Market
	offset := 0
	for {
		page, err := c.getMarkets(ctx, c.pageSize, offset)
		if err != nil {
			return nil, err
		}
		for i := range page {
			m := page[i].toDomainMarket()
			if m.Status != domain.MarketStatusActive {
				continue
			}
			markets = append(markets, m)
		}
		if len(page) < c.pageSize {
			return markets, nil
		}
		offset += c.pageSize
	}
}

// getMarkets returns one page of the markets listing.
func (c *Client) getMarkets(ctx context.Context, limit, offset int) ([]apiMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("active", "true")
	params.Set("closed", "false")

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket: get markets: %w", err)
	}

	var page []apiMarket
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("polymarket: decode markets: %w", err)
	}
	return page, nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := venue.CheckHTTPStatus(VenueName, resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// Compile-time interface check.
var _ venue.Client = (*Client)(nil)
