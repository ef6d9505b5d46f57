package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcluster/marketlens/internal/domain"
)

func TestRank(t *testing.T) {
	opportunities := []domain.Opportunity{
		{ID: "low", Score: 20},
		{ID: "high", Score: 90},
		{ID: "mid-a", Score: 50},
		{ID: "mid-b", Score: 50},
	}

	ranked := Rank(opportunities)
	require.Len(t, ranked, 4)
	assert.Equal(t, "high", ranked[0].ID)
	// Equal scores keep input order.
	assert.Equal(t, "mid-a", ranked[1].ID)
	assert.Equal(t, "mid-b", ranked[2].ID)
	assert.Equal(t, "low", ranked[3].ID)

	// The input slice is left untouched.
	assert.Equal(t, "low", opportunities[0].ID)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestFreshnessDecay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	halfLife := time.Hour

	t.Run("fresh data keeps full score", func(t *testing.T) {
		assert.Equal(t, 80.0, FreshnessDecay(80, now, now, halfLife))
	})

	t.Run("future timestamp treated as fresh", func(t *testing.T) {
		assert.Equal(t, 80.0, FreshnessDecay(80, now.Add(time.Minute), now, halfLife))
	})

	t.Run("halves at one half-life", func(t *testing.T) {
		got := FreshnessDecay(80, now.Add(-time.Hour), now, halfLife)
		assert.InDelta(t, 40, got, 1e-9)
	})

	t.Run("quarters at two half-lives", func(t *testing.T) {
		got := FreshnessDecay(80, now.Add(-2*time.Hour), now, halfLife)
		assert.InDelta(t, 20, got, 1e-9)
	})

	t.Run("never reaches zero", func(t *testing.T) {
		got := FreshnessDecay(80, now.Add(-48*time.Hour), now, halfLife)
		assert.Greater(t, got, 0.0)
	})

	t.Run("non-positive half-life falls back to one hour", func(t *testing.T) {
		got := FreshnessDecay(80, now.Add(-time.Hour), now, 0)
		assert.InDelta(t, 40, got, 1e-9)
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewSanity(SanityConfig{Tolerance: 0.03}))
	r.Register(NewDivergence(DivergenceConfig{SpreadFloor: 0.03}))
	r.Register(NewArbitrage(ArbitrageConfig{NearFloor: -0.02}))

	d, err := r.Get(string(domain.OpportunitySanity))
	require.NoError(t, err)
	assert.Equal(t, string(domain.OpportunitySanity), d.Name())

	_, err = r.Get("unknown")
	assert.Error(t, err)

	all := r.All()
	require.Len(t, all, 3)
	// Ordered by name for deterministic passes.
	assert.Equal(t, string(domain.OpportunityArbitrage), all[0].Name())
	assert.Equal(t, string(domain.OpportunityDivergence), all[1].Name())
	assert.Equal(t, string(domain.OpportunitySanity), all[2].Name())
}
