package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/quantcluster/marketlens/internal/domain"
)

// ArbitrageConfig configures the cross-venue arbitrage detector.
type ArbitrageConfig struct {
	// NearFloor is the (negative) profit floor below which a yes/no pairing
	// is ignored rather than reported as near-arbitrage.
	NearFloor float64
}

// Arbitrage looks for cross-venue yes/no pairings whose combined cost is
// below the guaranteed payout of 1, or just short of it. Only defined for
// groups whose outcomes are framed as binary yes/no on at least two venues.
type Arbitrage struct {
	cfg ArbitrageConfig
}

// NewArbitrage creates the arbitrage detector.
func NewArbitrage(cfg ArbitrageConfig) *Arbitrage {
	return &Arbitrage{cfg: cfg}
}

// Name returns the detector identifier.
func (d *Arbitrage) Name() string { return string(domain.OpportunityArbitrage) }

// Detect evaluates every cross-venue (yes price, no price) pairing.
// Guaranteed-profit candidates (profit > 0) always take precedence over
// near-arbitrage ones (profit within the near floor), regardless of
// magnitude; within a class, the best profit wins.
func (d *Arbitrage) Detect(group domain.MarketGroup, comparisons map[string]domain.OutcomeComparison) (domain.Opportunity, bool) {
	if len(group.Markets) < 2 {
		return domain.Opportunity{}, false
	}
	yes, okYes := comparisons["yes"]
	no, okNo := comparisons["no"]
	if !okYes || !okNo || yes.Contributors() < 2 || no.Contributors() < 2 {
		return domain.Opportunity{}, false
	}

	var best *domain.ArbitrageDetails
	for _, yq := range yes.Quotes {
		for _, nq := range no.Quotes {
			if yq.Venue == nq.Venue {
				continue
			}
			cost := yq.Price + nq.Price
			profit := 1 - cost
			if profit <= d.cfg.NearFloor {
				continue
			}
			kind := domain.ArbKindNearArbitrage
			if profit > 0 {
				kind = domain.ArbKindGuaranteedProfit
			}
			if !better(best, kind, profit) {
				continue
			}
			var profitPct float64
			if cost != 0 {
				profitPct = profit / cost * 100
			}
			best = &domain.ArbitrageDetails{
				Kind:      kind,
				YesVenue:  yq.Venue,
				YesPrice:  yq.Price,
				NoVenue:   nq.Venue,
				NoPrice:   nq.Price,
				TotalCost: cost,
				Profit:    profit,
				ProfitPct: profitPct,
			}
		}
	}
	if best == nil {
		return domain.Opportunity{}, false
	}

	var score float64
	if best.Kind == domain.ArbKindGuaranteedProfit {
		score = 80 + best.ProfitPct*2
	} else {
		score = 40 + math.Max(0, best.ProfitPct+2)*10
	}

	return domain.Opportunity{
		ID:      uuid.New().String(),
		GroupID: group.ID,
		Type:    domain.OpportunityArbitrage,
		Score:   score,
		Spread:  best.Profit,
		Description: fmt.Sprintf("buy yes on %s at %.2f and no on %s at %.2f, total cost %.2f",
			best.YesVenue, best.YesPrice, best.NoVenue, best.NoPrice, best.TotalCost),
		AvgLiquidity: group.AvgLiquidity(),
		Arbitrage:    best,
		Active:       true,
		DetectedAt:   time.Now().UTC(),
	}, true
}

// better reports whether a candidate of the given kind and profit should
// replace the current best. Guaranteed profit outranks near-arbitrage;
// otherwise higher profit wins, first-found keeping ties.
func better(current *domain.ArbitrageDetails, kind string, profit float64) bool {
	if current == nil {
		return true
	}
	curGuaranteed := current.Kind == domain.ArbKindGuaranteedProfit
	newGuaranteed := kind == domain.ArbKindGuaranteedProfit
	if curGuaranteed != newGuaranteed {
		return newGuaranteed
	}
	return profit > current.Profit
}
