package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// OpportunityType tags the detector that produced a finding.
type OpportunityType string

const (
	OpportunityDivergence OpportunityType = "cross_venue_divergence"
	OpportunitySanity     OpportunityType = "internal_inconsistency"
	OpportunityArbitrage  OpportunityType = "arbitrage"
)

// Arbitrage classification kinds.
const (
	ArbKindGuaranteedProfit = "guaranteed_profit"
	ArbKindNearArbitrage    = "near_arbitrage"
)

// Sanity issue directions.
const (
	SanityExceeds = "exceeds"
	SanityBelow   = "below"
)

// PriceQuote is one venue's price for a particular outcome.
type PriceQuote struct {
	Venue    string  `json:"venue"`
	MarketID string  `json:"market_id"`
	Price    float64 `json:"price"`
}

// OutcomeComparison collects every quote for one normalized outcome name
// within a group. Spread and SpreadPct are only meaningful when at least two
// distinct markets contribute; single-contributor buckets carry spread 0.
type OutcomeComparison struct {
	Name      string       `json:"name"`
	Quotes    []PriceQuote `json:"quotes"`
	Spread    float64      `json:"spread"`
	SpreadPct float64      `json:"spread_pct"`
}

// Contributors returns the number of distinct markets quoting this outcome.
func (c OutcomeComparison) Contributors() int {
	seen := make(map[string]bool, len(c.Quotes))
	for _, q := range c.Quotes {
		seen[q.MarketID] = true
	}
	return len(seen)
}

// DivergenceDetails is the payload for cross-venue divergence findings.
type DivergenceDetails struct {
	Outcome   string       `json:"outcome"`
	MaxSpread float64      `json:"max_spread"`
	SpreadPct float64      `json:"spread_pct"`
	Venues    []string     `json:"venues"`
	Quotes    []PriceQuote `json:"quotes"`
}

// SanityIssue describes one market whose outcome prices do not sum to 1
// within tolerance.
type SanityIssue struct {
	MarketID   string  `json:"market_id"`
	Venue      string  `json:"venue"`
	OutcomeSum float64 `json:"outcome_sum"`
	Deviation  float64 `json:"deviation"`
	Issue      string  `json:"issue"` // "exceeds" or "below"
}

// SanityDetails is the payload for internal-inconsistency findings.
type SanityDetails struct {
	Inconsistent []SanityIssue `json:"inconsistent"`
}

// ArbitrageDetails is the payload for arbitrage findings.
type ArbitrageDetails struct {
	Kind      string  `json:"kind"`
	YesVenue  string  `json:"yes_venue"`
	YesPrice  float64 `json:"yes_price"`
	NoVenue   string  `json:"no_venue"`
	NoPrice   float64 `json:"no_price"`
	TotalCost float64 `json:"total_cost"`
	Profit    float64 `json:"profit"`
	ProfitPct float64 `json:"profit_pct"`
}

// Opportunity is a detected pricing inconsistency for one group. Exactly one
// of the detail pointers is set, matching Type. Findings are created fresh on
// every detection pass; the scan service deactivates the previous generation
// before inserting the new one.
type Opportunity struct {
	ID           string
	GroupID      string
	Type         OpportunityType
	Score        float64
	Spread       float64
	Description  string
	AvgLiquidity float64
	Divergence   *DivergenceDetails
	Sanity       *SanityDetails
	Arbitrage    *ArbitrageDetails
	Active       bool
	DetectedAt   time.Time
}

// Details returns the populated variant payload for the opportunity's type.
func (o Opportunity) Details() any {
	switch o.Type {
	case OpportunityDivergence:
		return o.Divergence
	case OpportunitySanity:
		return o.Sanity
	case OpportunityArbitrage:
		return o.Arbitrage
	}
	return nil
}

// opportunityJSON is the serialized wire shape. Details is a tagged-variant
// payload whose structure is determined by Type.
type opportunityJSON struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"group_id"`
	Type         OpportunityType `json:"type"`
	Score        float64         `json:"score"`
	Spread       float64         `json:"spread"`
	Description  string          `json:"description"`
	Details      json.RawMessage `json:"details"`
	AvgLiquidity float64         `json:"avg_liquidity"`
	Active       bool            `json:"active"`
	DetectedAt   time.Time       `json:"detected_at"`
}

// MarshalJSON serializes the opportunity with its variant payload under the
// "details" key.
func (o Opportunity) MarshalJSON() ([]byte, error) {
	details, err := json.Marshal(o.Details())
	if err != nil {
		return nil, fmt.Errorf("opportunity %s: marshal details: %w", o.ID, err)
	}
	return json.Marshal(opportunityJSON{
		ID:           o.ID,
		GroupID:      o.GroupID,
		Type:         o.Type,
		Score:        o.Score,
		Spread:       o.Spread,
		Description:  o.Description,
		Details:      details,
		AvgLiquidity: o.AvgLiquidity,
		Active:       o.Active,
		DetectedAt:   o.DetectedAt,
	})
}

// UnmarshalJSON decodes the variant payload into the detail struct selected
// by the "type" tag.
func (o *Opportunity) UnmarshalJSON(data []byte) error {
	var raw opportunityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Opportunity{
		ID:           raw.ID,
		GroupID:      raw.GroupID,
		Type:         raw.Type,
		Score:        raw.Score,
		Spread:       raw.Spread,
		Description:  raw.Description,
		AvgLiquidity: raw.AvgLiquidity,
		Active:       raw.Active,
		DetectedAt:   raw.DetectedAt,
	}
	if len(raw.Details) == 0 || string(raw.Details) == "null" {
		return nil
	}
	switch raw.Type {
	case OpportunityDivergence:
		o.Divergence = &DivergenceDetails{}
		return json.Unmarshal(raw.Details, o.Divergence)
	case OpportunitySanity:
		o.Sanity = &SanityDetails{}
		return json.Unmarshal(raw.Details, o.Sanity)
	case OpportunityArbitrage:
		o.Arbitrage = &ArbitrageDetails{}
		return json.Unmarshal(raw.Details, o.Arbitrage)
	}
	return fmt.Errorf("opportunity %s: unknown type %q", raw.ID, raw.Type)
}
