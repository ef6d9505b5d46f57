package kalshi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcluster/marketlens/internal/domain"
)

func marketsPage(cursor string, markets ...apiMarket) []byte {
	payload := struct {
		Markets []apiMarket `json:"markets"`
		Cursor  string      `json:"cursor"`
	}{Markets: markets, Cursor: cursor}
	data, _ := json.Marshal(payload)
	return data
}

func openMarket(ticker string) apiMarket {
	return apiMarket{
		Ticker:    ticker,
		Title:     "Will Bitcoin close above $100k?",
		Status:    "open",
		YesBid:    60,
		YesAsk:    64,
		Volume:    5000,
		Liquidity: 120000,
		CloseTime: "2025-12-31T23:59:59Z",
	}
}

func TestFetchMarketsCursorPagination(t *testing.T) {
	var cursors []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)

		w.Header().Set("Content-Type", "application/json")
		if cursor == "" {
			w.Write(marketsPage("next-1", openMarket("KXBTC-A"), openMarket("KXBTC-B")))
			return
		}
		w.Write(marketsPage("", openMarket("KXBTC-C")))
	}))
	defer srv.Close()

	c := New(srv.URL, 100)
	markets, err := c.FetchMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "next-1"}, cursors)
	require.Len(t, markets, 3)

	m := markets[0]
	assert.Equal(t, VenueName, m.Venue)
	assert.Equal(t, "KXBTC-A", m.ExternalID)
	assert.Equal(t, domain.MarketStatusActive, m.Status)
	require.NotNil(t, m.EndDate)

	// Cent quotes become a 0..1 midpoint with complementary no price.
	require.Len(t, m.Outcomes, 2)
	assert.Equal(t, "Yes", m.Outcomes[0].Name)
	assert.InDelta(t, 0.62, m.Outcomes[0].Price, 1e-9)
	assert.Equal(t, "No", m.Outcomes[1].Name)
	assert.InDelta(t, 0.38, m.Outcomes[1].Price, 1e-9)
	assert.InDelta(t, 1200, m.Liquidity, 1e-9)
}

func TestFetchMarketsSkipsSettled(t *testing.T) {
	settled := openMarket("KXOLD")
	settled.Status = "settled"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(marketsPage("", openMarket("KXNEW"), settled))
	}))
	defer srv.Close()

	c := New(srv.URL, 100)
	markets, err := c.FetchMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "KXNEW", markets[0].ExternalID)
}

func TestFetchMarketsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, 100)
	_, err := c.FetchMarkets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestYesPriceFallsBackToLastTrade(t *testing.T) {
	m := apiMarket{LastPrice: 55}
	assert.InDelta(t, 0.55, m.yesPrice(), 1e-9)

	quoted := apiMarket{YesBid: 40, YesAsk: 44, LastPrice: 99}
	assert.InDelta(t, 0.42, quoted.yesPrice(), 1e-9)
}
