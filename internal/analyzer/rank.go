package analyzer

import (
	"math"
	"sort"
	"time"

	"github.com/quantcluster/marketlens/internal/domain"
)

// Rank returns the findings ordered by severity score descending. The sort
// is stable so findings with equal scores keep their relative input order.
func Rank(opportunities []domain.Opportunity) []domain.Opportunity {
	ranked := make([]domain.Opportunity, len(opportunities))
	copy(ranked, opportunities)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// FreshnessDecay discounts a severity score exponentially by data age:
// score x 0.5^(age/halfLife). At age zero the score is returned unchanged;
// the multiplier approaches but never reaches zero. Negative ages are
// treated as zero. A non-positive half-life falls back to one hour.
func FreshnessDecay(score float64, lastUpdated, now time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		halfLife = time.Hour
	}
	age := now.Sub(lastUpdated)
	if age <= 0 {
		return score
	}
	return score * math.Pow(0.5, age.Minutes()/halfLife.Minutes())
}
