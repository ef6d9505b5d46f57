package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcluster/marketlens/internal/domain"
)

func binaryGroup(yesA, noA, yesB, noB float64) domain.MarketGroup {
	return groupOf(
		domain.Market{ID: "m1", Venue: "polymarket", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: yesA},
			{Name: "No", Price: noA},
		}},
		domain.Market{ID: "m2", Venue: "kalshi", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: yesB},
			{Name: "No", Price: noB},
		}},
	)
}

func TestArbitrageGuaranteedProfit(t *testing.T) {
	d := NewArbitrage(ArbitrageConfig{NearFloor: -0.02})
	// polymarket yes 0.45 + kalshi no 0.48 costs 0.93 against a payout of 1.
	group := binaryGroup(0.45, 0.56, 0.53, 0.48)

	opp, ok := d.Detect(group, AlignOutcomes(group))
	require.True(t, ok)
	assert.Equal(t, domain.OpportunityArbitrage, opp.Type)
	require.NotNil(t, opp.Arbitrage)

	arb := opp.Arbitrage
	assert.Equal(t, domain.ArbKindGuaranteedProfit, arb.Kind)
	assert.Equal(t, "polymarket", arb.YesVenue)
	assert.Equal(t, "kalshi", arb.NoVenue)
	assert.InDelta(t, 0.93, arb.TotalCost, 1e-9)
	assert.InDelta(t, 0.07, arb.Profit, 1e-9)
	assert.InDelta(t, 0.07/0.93*100, arb.ProfitPct, 1e-6)

	// Guaranteed-profit severity starts at 80.
	assert.InDelta(t, 80+arb.ProfitPct*2, opp.Score, 1e-9)
	assert.Greater(t, opp.Score, 80.0)
}

func TestArbitrageNear(t *testing.T) {
	d := NewArbitrage(ArbitrageConfig{NearFloor: -0.02})
	// Best cross-venue pairing costs 1.01: a loss, but inside the near
	// floor, so it reports as near-arbitrage.
	group := binaryGroup(0.50, 0.55, 0.54, 0.51)

	opp, ok := d.Detect(group, AlignOutcomes(group))
	require.True(t, ok)
	arb := opp.Arbitrage
	assert.Equal(t, domain.ArbKindNearArbitrage, arb.Kind)
	assert.InDelta(t, 1.01, arb.TotalCost, 1e-9)
	assert.InDelta(t, -0.01, arb.Profit, 1e-9)
	// Near-arbitrage severity stays below the guaranteed band.
	assert.Less(t, opp.Score, 80.0)
	assert.GreaterOrEqual(t, opp.Score, 40.0)
}

func TestArbitrageNone(t *testing.T) {
	d := NewArbitrage(ArbitrageConfig{NearFloor: -0.02})
	// Both cross-venue pairings cost well above 1.
	group := binaryGroup(0.60, 0.50, 0.55, 0.48)

	_, ok := d.Detect(group, AlignOutcomes(group))
	assert.False(t, ok)
}

func TestArbitrageGuaranteedBeatsNear(t *testing.T) {
	d := NewArbitrage(ArbitrageConfig{NearFloor: -0.02})
	// polymarket yes + kalshi no costs 0.99 (guaranteed, tiny profit);
	// kalshi yes + polymarket no costs 1.01 (near). Guaranteed wins even
	// though both qualify.
	group := binaryGroup(0.50, 0.51, 0.50, 0.49)

	opp, ok := d.Detect(group, AlignOutcomes(group))
	require.True(t, ok)
	assert.Equal(t, domain.ArbKindGuaranteedProfit, opp.Arbitrage.Kind)
	assert.InDelta(t, 0.01, opp.Arbitrage.Profit, 1e-9)
}

func TestArbitrageIgnoresSameVenuePairing(t *testing.T) {
	d := NewArbitrage(ArbitrageConfig{NearFloor: -0.02})
	// Each venue's own yes/no sums under 1, but same-venue pairings never
	// count; the cross-venue combinations all cost too much.
	group := binaryGroup(0.40, 0.45, 0.70, 0.75)

	_, ok := d.Detect(group, AlignOutcomes(group))
	assert.False(t, ok)
}

func TestArbitrageRequiresBothSidesOnTwoVenues(t *testing.T) {
	d := NewArbitrage(ArbitrageConfig{NearFloor: -0.02})
	group := groupOf(
		domain.Market{ID: "m1", Venue: "polymarket", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: 0.40},
			{Name: "No", Price: 0.40},
		}},
		domain.Market{ID: "m2", Venue: "kalshi", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: 0.45},
		}},
	)

	// The no bucket has a single contributor, so no pairing is possible.
	_, ok := d.Detect(group, AlignOutcomes(group))
	assert.False(t, ok)
}
