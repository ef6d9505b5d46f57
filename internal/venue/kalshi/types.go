package kalshi

import (
	"time"

	"github.com/quantcluster/marketlens/internal/domain"
)

// apiMarket represents a market as returned by the Kalshi REST API. Prices
// are quoted in cents (1-99).
type apiMarket struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Status         string  `json:"status"` // "open", "closed", "settled"
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	NoBid          float64 `json:"no_bid"`
	NoAsk          float64 `json:"no_ask"`
	LastPrice      float64 `json:"last_price"`
	Volume         int64   `json:"volume"`
	Liquidity      int64   `json:"liquidity"`
	OpenInterest   int64   `json:"open_interest"`
	Category       string  `json:"category"`
	OpenTime       string  `json:"open_time"`
	CloseTime      string  `json:"close_time"`
	ExpirationTime string  `json:"expiration_time"`
}

// toDomainMarket converts a Kalshi apiMarket to a domain.Market. Kalshi
// markets are binary; the yes price is the bid/ask midpoint when both sides
// are quoted, falling back to the last trade. The no price is its complement.
func (m *apiMarket) toDomainMarket() domain.Market {
	dm := domain.Market{
		Venue:      VenueName,
		ExternalID: m.Ticker,
		Title:      m.Title,
		Category:   m.Category,
		Volume:     float64(m.Volume),
		Liquidity:  float64(m.Liquidity) / 100,
	}

	switch m.Status {
	case "open", "active":
		dm.Status = domain.MarketStatusActive
	case "closed":
		dm.Status = domain.MarketStatusClosed
	default:
		dm.Status = domain.MarketStatusResolved
	}

	yes := m.yesPrice()
	dm.Outcomes = []domain.Outcome{
		{Name: "Yes", Price: yes, Volume: float64(m.Volume)},
		{Name: "No", Price: 1 - yes, Volume: float64(m.Volume)},
	}

	if m.CloseTime != "" {
		if t, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
			dm.EndDate = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, m.OpenTime); err == nil {
		dm.CreatedAt = t
	}

	return dm
}

// yesPrice converts cent quotes into a 0..1 probability.
func (m *apiMarket) yesPrice() float64 {
	if m.YesBid > 0 && m.YesAsk > 0 {
		return (m.YesBid + m.YesAsk) / 2 / 100
	}
	return m.LastPrice / 100
}
