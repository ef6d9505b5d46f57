package analyzer

import (
	"github.com/quantcluster/marketlens/internal/domain"
	"github.com/quantcluster/marketlens/internal/matcher"
)

// AlignOutcomes buckets every outcome of every market in the group by its
// normalized name. Buckets with at least two distinct contributing markets
// get spread = max - min and spread-as-fraction-of-min (zero when the minimum
// price is zero); single-contributor buckets are retained with spread 0 so
// sanity checks still see them. Name variance beyond what the shared
// normalizer collapses stays in separate buckets on purpose: under-merging
// is safer than comparing prices of different options.
func AlignOutcomes(group domain.MarketGroup) map[string]domain.OutcomeComparison {
	comparisons := make(map[string]domain.OutcomeComparison)
	for _, m := range group.Markets {
		for _, o := range m.Outcomes {
			key := matcher.Normalize(o.Name)
			c := comparisons[key]
			c.Name = key
			c.Quotes = append(c.Quotes, domain.PriceQuote{
				Venue:    m.Venue,
				MarketID: m.ID,
				Price:    o.Price,
			})
			comparisons[key] = c
		}
	}

	for key, c := range comparisons {
		if c.Contributors() < 2 {
			continue
		}
		lo, hi := c.Quotes[0].Price, c.Quotes[0].Price
		for _, q := range c.Quotes[1:] {
			if q.Price < lo {
				lo = q.Price
			}
			if q.Price > hi {
				hi = q.Price
			}
		}
		c.Spread = hi - lo
		if lo != 0 {
			c.SpreadPct = c.Spread / lo
		}
		comparisons[key] = c
	}
	return comparisons
}
