package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcluster/marketlens/internal/domain"
)

func groupOf(markets ...domain.Market) domain.MarketGroup {
	return domain.MarketGroup{ID: "g1", Status: domain.GroupStatusActive, Markets: markets}
}

func TestAlignOutcomesBucketsByNormalizedName(t *testing.T) {
	group := groupOf(
		domain.Market{ID: "m1", Venue: "polymarket", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: 0.60},
			{Name: "No", Price: 0.40},
		}},
		domain.Market{ID: "m2", Venue: "kalshi", Outcomes: []domain.Outcome{
			{Name: "YES!", Price: 0.50},
			{Name: "no", Price: 0.50},
		}},
	)

	comparisons := AlignOutcomes(group)
	require.Len(t, comparisons, 2)

	yes, ok := comparisons["yes"]
	require.True(t, ok)
	require.Len(t, yes.Quotes, 2)
	assert.Equal(t, 2, yes.Contributors())
	assert.InDelta(t, 0.10, yes.Spread, 1e-9)
	assert.InDelta(t, 0.10/0.50, yes.SpreadPct, 1e-9)

	no, ok := comparisons["no"]
	require.True(t, ok)
	assert.InDelta(t, 0.10, no.Spread, 1e-9)
}

func TestAlignOutcomesSingleContributorKept(t *testing.T) {
	group := groupOf(
		domain.Market{ID: "m1", Venue: "polymarket", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: 0.60},
			{Name: "Maybe", Price: 0.10},
		}},
		domain.Market{ID: "m2", Venue: "kalshi", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: 0.55},
		}},
	)

	comparisons := AlignOutcomes(group)
	maybe, ok := comparisons["maybe"]
	require.True(t, ok)
	assert.Equal(t, 1, maybe.Contributors())
	assert.Zero(t, maybe.Spread)
	assert.Zero(t, maybe.SpreadPct)
}

func TestAlignOutcomesZeroMinimumPrice(t *testing.T) {
	group := groupOf(
		domain.Market{ID: "m1", Venue: "polymarket", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: 0},
		}},
		domain.Market{ID: "m2", Venue: "kalshi", Outcomes: []domain.Outcome{
			{Name: "Yes", Price: 0.30},
		}},
	)

	comparisons := AlignOutcomes(group)
	yes := comparisons["yes"]
	assert.InDelta(t, 0.30, yes.Spread, 1e-9)
	// Spread fraction is undefined against a zero floor and stays zero.
	assert.Zero(t, yes.SpreadPct)
}

func TestAlignOutcomesDistinctNamesStaySeparate(t *testing.T) {
	group := groupOf(
		domain.Market{ID: "m1", Venue: "polymarket", Outcomes: []domain.Outcome{
			{Name: "Chiefs win", Price: 0.55},
		}},
		domain.Market{ID: "m2", Venue: "kalshi", Outcomes: []domain.Outcome{
			{Name: "Kansas City wins", Price: 0.52},
		}},
	)

	comparisons := AlignOutcomes(group)
	require.Len(t, comparisons, 2)
	for _, c := range comparisons {
		assert.Equal(t, 1, c.Contributors())
	}
}
