package polymarket

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

const gammaMarket = `{
	"id": "0x123",
	"question": "Will Bitcoin reach $100k in 2025?",
	"category": "Crypto",
	"active": true,
	"closed": false,
	"outcomes": "[\"Yes\",\"No\"]",
	"outcomePrices": "[\"0.62\",\"0.38\"]",
	"volume": "150000.5",
	"liquidity": "42000",
	"end_date_iso": "2025-12-31T23:59:59Z"
}`

func TestFetchMarketsPagination(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		assert.Equal(t, "false", r.URL.Query().Get("closed"))
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)

		w.Header().Set("Content-Type", "application/json")
		if offset == "0" {
			// Full page: the client must request the next one.
			w.Write([]byte("[" + gammaMarket + "," + gammaMarket + "]"))
			return
		}
		w.Write([]byte("[" + gammaMarket + "]"))
	}))
	defer srv.Close()

	c := New(srv.URL, 2)
	markets, err := c.FetchMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, offsets)
	require.Len(t, markets, 3)

	m := markets[0]
	assert.Equal(t, VenueName, m.Venue)
	assert.Equal(t, "0x123", m.ExternalID)
	assert.Equal(t, "Will Bitcoin reach $100k in 2025?", m.Title)
	assert.Equal(t, domain.MarketStatusActive, m.Status)
	assert.Equal(t, 150000.5, m.Volume)
	assert.Equal(t, 42000.0, m.Liquidity)
	require.NotNil(t, m.EndDate)

	require.Len(t, m.Outcomes, 2)
	assert.Equal(t, "Yes", m.Outcomes[0].Name)
	assert.Equal(t, 0.62, m.Outcomes[0].Price)
	assert.Equal(t, 0.38, m.Outcomes[1].Price)
}

func TestFetchMarketsSkipsInactive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"id": "a", "question": "open", "active": true, "closed": false},
			{"id": "b", "question": "done", "active": false, "closed": true}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, 10)
	markets, err := c.FetchMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "a", markets[0].ExternalID)
}

func TestFetchMarketsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, 10)
	_, err := c.FetchMarkets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFlexBool(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"True"`, true},
		{`"false"`, false},
		{`"1"`, true},
	}
	for _, tt := range tests {
		var f flexBool
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
		assert.Equal(t, tt.want, bool(f), "raw %s", tt.raw)
	}

	var f flexBool
	assert.Error(t, json.Unmarshal([]byte(`42`), &f))
}

func TestToDomainMarketStatus(t *testing.T) {
	closed := apiMarket{ID: "x", Closed: true, Active: true}
	assert.Equal(t, domain.MarketStatusClosed, closed.toDomainMarket().Status)

	resolved := apiMarket{ID: "x"}
	assert.Equal(t, domain.MarketStatusResolved, resolved.toDomainMarket().Status)
}
