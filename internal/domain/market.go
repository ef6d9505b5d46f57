package domain

import "time"

// MarketStatus represents the lifecycle state of a market listing.
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusClosed   MarketStatus = "closed"
	MarketStatusResolved MarketStatus = "resolved"
)

// Outcome is one possible resolution of a market. Price is the implied
// probability quoted by the venue; it is expected to lie in [0,1] but the
// engine tolerates out-of-range values.
type Outcome struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume,omitempty"`
}

// Market is one tradable question listed on a venue. Identity is unique per
// (venue, external_id). GroupID is empty until the market is assigned to a
// matched group.
type Market struct {
	ID         string       `json:"id"`
	Venue      string       `json:"venue"`
	ExternalID string       `json:"external_id"`
	Title      string       `json:"title"`
	Category   string       `json:"category,omitempty"`
	Status     MarketStatus `json:"status"`
	Volume     float64      `json:"volume"`
	Liquidity  float64      `json:"liquidity"`
	EndDate    *time.Time   `json:"end_date,omitempty"`
	Outcomes   []Outcome    `json:"outcomes"`
	GroupID    string       `json:"group_id,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Popularity is the composite score used to pick a group's canonical title.
// Liquidity is weighted twice as heavily as volume.
func (m Market) Popularity() float64 {
	return m.Volume + 2*m.Liquidity
}

// OutcomeSum returns the sum of all outcome prices. For a well-priced set of
// mutually exclusive outcomes this is close to 1.
func (m Market) OutcomeSum() float64 {
	var sum float64
	for _, o := range m.Outcomes {
		sum += o.Price
	}
	return sum
}
