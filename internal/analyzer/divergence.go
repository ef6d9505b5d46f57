package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantcluster/marketlens/internal/domain"
)

// Divergence severity component caps.
const (
	divergenceSpreadCap = 30.0
	divergenceLiqCap    = 30.0
	divergenceVenueCap  = 20.0
)

// DivergenceConfig configures the cross-venue divergence detector.
type DivergenceConfig struct {
	// SpreadFloor is the minimum absolute spread, on the [0,1] price scale,
	// for a bucket to count as significant.
	SpreadFloor float64
}

// Divergence flags groups where the same outcome trades at meaningfully
// different prices on different venues.
type Divergence struct {
	cfg DivergenceConfig
}

// NewDivergence creates the divergence detector.
func NewDivergence(cfg DivergenceConfig) *Divergence {
	return &Divergence{cfg: cfg}
}

// Name returns the detector identifier.
func (d *Divergence) Name() string { return string(domain.OpportunityDivergence) }

// Detect looks for outcome buckets with at least two contributors whose
// spread reaches the floor. Severity combines the largest spread, the
// group's average liquidity, and the number of distinct venues involved.
func (d *Divergence) Detect(group domain.MarketGroup, comparisons map[string]domain.OutcomeComparison) (domain.Opportunity, bool) {
	if len(group.Markets) < 2 {
		return domain.Opportunity{}, false
	}

	// Walk buckets in sorted key order so ties resolve deterministically.
	keys := make([]string, 0, len(comparisons))
	for k := range comparisons {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var worst domain.OutcomeComparison
	found := false
	for _, k := range keys {
		c := comparisons[k]
		if c.Contributors() < 2 || c.Spread < d.cfg.SpreadFloor {
			continue
		}
		if !found || c.Spread > worst.Spread {
			worst = c
			found = true
		}
	}
	if !found {
		return domain.Opportunity{}, false
	}

	avgLiq := group.AvgLiquidity()
	venues := group.Venues()

	spreadScore := math.Min(worst.Spread*100, divergenceSpreadCap)
	liqScore := math.Min(math.Log10(avgLiq+1)*5, divergenceLiqCap)
	venueScore := math.Min(float64(len(venues)-1)*10, divergenceVenueCap)

	bucketVenues := quoteVenues(worst.Quotes)
	return domain.Opportunity{
		ID:           uuid.New().String(),
		GroupID:      group.ID,
		Type:         domain.OpportunityDivergence,
		Score:        spreadScore + liqScore + venueScore,
		Spread:       worst.Spread,
		Description: fmt.Sprintf("outcome %q diverges by %.3f across %s",
			worst.Name, worst.Spread, strings.Join(bucketVenues, ", ")),
		AvgLiquidity: avgLiq,
		Divergence: &domain.DivergenceDetails{
			Outcome:   worst.Name,
			MaxSpread: worst.Spread,
			SpreadPct: worst.SpreadPct,
			Venues:    bucketVenues,
			Quotes:    worst.Quotes,
		},
		Active:     true,
		DetectedAt: time.Now().UTC(),
	}, true
}

// quoteVenues returns the distinct venues quoting a bucket, in quote order.
func quoteVenues(quotes []domain.PriceQuote) []string {
	seen := make(map[string]bool, len(quotes))
	var venues []string
	for _, q := range quotes {
		if !seen[q.Venue] {
			seen[q.Venue] = true
			venues = append(venues, q.Venue)
		}
	}
	return venues
}
