package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/quantcluster/marketlens/internal/domain"
)

// Sanity severity component caps.
const (
	sanityDeviationCap = 40.0
	sanityCountCap     = 30.0
)

// SanityConfig configures the internal-consistency detector.
type SanityConfig struct {
	// Tolerance is the allowed deviation of a market's outcome-price sum
	// from 1 before it is flagged.
	Tolerance float64
}

// Sanity flags markets whose own outcome prices do not sum to 1 within
// tolerance. The check is identical for binary markets and markets with more
// than two mutually exclusive outcomes.
type Sanity struct {
	cfg SanityConfig
}

// NewSanity creates the internal-consistency detector.
func NewSanity(cfg SanityConfig) *Sanity {
	return &Sanity{cfg: cfg}
}

// Name returns the detector identifier.
func (d *Sanity) Name() string { return string(domain.OpportunitySanity) }

// Detect checks every market in the group independently and collects the
// inconsistent ones. The description states only the count; which markets
// are affected is carried in the structured details.
func (d *Sanity) Detect(group domain.MarketGroup, _ map[string]domain.OutcomeComparison) (domain.Opportunity, bool) {
	var issues []domain.SanityIssue
	var maxDeviation float64
	for _, m := range group.Markets {
		sum := m.OutcomeSum()
		deviation := math.Abs(sum - 1)
		if deviation <= d.cfg.Tolerance {
			continue
		}
		issue := domain.SanityBelow
		if sum > 1 {
			issue = domain.SanityExceeds
		}
		issues = append(issues, domain.SanityIssue{
			MarketID:   m.ID,
			Venue:      m.Venue,
			OutcomeSum: sum,
			Deviation:  deviation,
			Issue:      issue,
		})
		if deviation > maxDeviation {
			maxDeviation = deviation
		}
	}
	if len(issues) == 0 {
		return domain.Opportunity{}, false
	}

	score := math.Min(maxDeviation*100, sanityDeviationCap) +
		math.Min(float64(len(issues))*10, sanityCountCap)

	return domain.Opportunity{
		ID:           uuid.New().String(),
		GroupID:      group.ID,
		Type:         domain.OpportunitySanity,
		Score:        score,
		Spread:       maxDeviation,
		Description:  fmt.Sprintf("%d market(s) in group have outcome prices that do not sum to 1", len(issues)),
		AvgLiquidity: group.AvgLiquidity(),
		Sanity:       &domain.SanityDetails{Inconsistent: issues},
		Active:       true,
		DetectedAt:   time.Now().UTC(),
	}, true
}
