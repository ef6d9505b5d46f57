package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpportunityJSONVariant(t *testing.T) {
	detected := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	opp := Opportunity{
		ID:      "opp-1",
		GroupID: "grp-1",
		Type:    OpportunityArbitrage,
		Score:   85.5,
		Spread:  0.07,
		Arbitrage: &ArbitrageDetails{
			Kind:      ArbKindGuaranteedProfit,
			YesVenue:  "polymarket",
			YesPrice:  0.45,
			NoVenue:   "kalshi",
			NoPrice:   0.48,
			TotalCost: 0.93,
			Profit:    0.07,
		},
		Active:     true,
		DetectedAt: detected,
	}

	data, err := json.Marshal(opp)
	require.NoError(t, err)

	// The variant payload lives under the "details" key.
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Contains(t, envelope, "details")
	assert.NotContains(t, envelope, "arbitrage")

	var decoded Opportunity
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, opp.ID, decoded.ID)
	assert.Equal(t, opp.Type, decoded.Type)
	require.NotNil(t, decoded.Arbitrage)
	assert.Equal(t, opp.Arbitrage.Kind, decoded.Arbitrage.Kind)
	assert.Equal(t, opp.Arbitrage.YesVenue, decoded.Arbitrage.YesVenue)
	assert.Nil(t, decoded.Divergence)
	assert.Nil(t, decoded.Sanity)
	assert.True(t, decoded.DetectedAt.Equal(detected))
}

func TestOpportunityJSONTypeSelectsPayload(t *testing.T) {
	divergence := Opportunity{
		ID:   "opp-d",
		Type: OpportunityDivergence,
		Divergence: &DivergenceDetails{
			Outcome:   "yes",
			MaxSpread: 0.12,
			Venues:    []string{"polymarket", "kalshi"},
		},
	}
	sanity := Opportunity{
		ID:   "opp-s",
		Type: OpportunitySanity,
		Sanity: &SanityDetails{
			Inconsistent: []SanityIssue{{MarketID: "m1", Issue: SanityExceeds}},
		},
	}

	for _, opp := range []Opportunity{divergence, sanity} {
		data, err := json.Marshal(opp)
		require.NoError(t, err)
		var decoded Opportunity
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, opp.Type, decoded.Type)
	}

	var decoded Opportunity
	data, _ := json.Marshal(divergence)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "yes", decoded.Divergence.Outcome)
	assert.Nil(t, decoded.Arbitrage)
}

func TestOpportunityUnknownType(t *testing.T) {
	raw := `{"id":"x","type":"mystery","details":{"a":1}}`
	var decoded Opportunity
	assert.Error(t, json.Unmarshal([]byte(raw), &decoded))
}

func TestOpportunityNullDetails(t *testing.T) {
	raw := `{"id":"x","type":"arbitrage","details":null}`
	var decoded Opportunity
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Nil(t, decoded.Arbitrage)
}

func TestMarketPopularityAndOutcomeSum(t *testing.T) {
	m := Market{
		Volume:    100,
		Liquidity: 50,
		Outcomes: []Outcome{
			{Name: "Yes", Price: 0.55},
			{Name: "No", Price: 0.45},
		},
	}
	assert.Equal(t, 200.0, m.Popularity())
	assert.InDelta(t, 1.0, m.OutcomeSum(), 1e-9)
}

func TestGroupVenuesAndAvgLiquidity(t *testing.T) {
	g := MarketGroup{Markets: []Market{
		{Venue: "polymarket", Liquidity: 1000},
		{Venue: "kalshi", Liquidity: 3000},
		{Venue: "kalshi", Liquidity: 2000},
	}}
	assert.Equal(t, []string{"polymarket", "kalshi"}, g.Venues())
	assert.InDelta(t, 2000, g.AvgLiquidity(), 1e-9)
	assert.Zero(t, MarketGroup{}.AvgLiquidity())
}

func TestOutcomeComparisonContributors(t *testing.T) {
	c := OutcomeComparison{Quotes: []PriceQuote{
		{MarketID: "m1", Price: 0.5},
		{MarketID: "m1", Price: 0.6},
		{MarketID: "m2", Price: 0.4},
	}}
	assert.Equal(t, 2, c.Contributors())
}
