// Package kalshi implements the venue.Client contract against the public
// Kalshi trade API. Only the unauthenticated market listing is used.
package kalshi

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

// VenueName identifies Kalshi in domain.Market.Venue.
const VenueName = "kalshi"

const defaultPageSize = 100

// Client is the REST client for the Kalshi exchange API.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// New creates a new Kalshi REST client.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
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

// FetchMarkets pages through the markets listing via cursor pagination and
// returns every open market.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	var markets []domain.Market
	cursor := ""
	for {
		page, next, err := c.getMarkets(ctx, cursor)
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
		if next == "" || len(page) == 0 {
			return markets, nil
		}
		cursor = next
	}
}

// getMarkets returns one page of the markets listing plus the next cursor.
func (c *Client) getMarkets(ctx context.Context, cursor string) ([]apiMarket, string, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("status", "open")
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, "", fmt.Errorf("kalshi: get markets: %w", err)
	}

	var resp struct {
		Markets []apiMarket `json:"markets"`
		Cursor  string      `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("kalshi: decode markets: %w", err)
	}
	return resp.Markets, resp.Cursor, nil
}

// doGet sends an unauthenticated GET request to the Kalshi API.
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
