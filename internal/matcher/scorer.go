package matcher

import (
	"fmt"
	"strings"

	"github.com/quantcluster/marketlens/internal/domain"
)

// Score weights. Each rule contributes a bounded share of the 0-100 scale.
const (
	similarityWeight = 50.0 // title similarity scaled into points
	entityPoints     = 10.0 // per shared entity
	maxEntityPoints  = 30.0
	yearPoints       = 10.0 // flat bonus for a shared 4-digit year
)

// ScorerConfig holds the tunable thresholds for pairwise scoring.
type ScorerConfig struct {
	// SimilarityFloor rejects pairs whose title similarity is below it.
	SimilarityFloor float64
	// MatchFloor is the minimum total score for a pair to be accepted.
	MatchFloor float64
}

// DefaultScorerConfig returns the production thresholds.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		SimilarityFloor: 0.50,
		MatchFloor:      55,
	}
}

// Scorer computes a 0-100 confidence score and human-readable rationale for
// two markets from different venues.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a Scorer with the given thresholds.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score evaluates a pair of markets. The rules run in order; each is either a
// hard gate or an additive contribution:
//
//  1. markets on the same venue never match
//  2. title similarity below the floor rejects, otherwise contributes
//     similarity x 50
//  3. when both titles carry entities but share none the pair is rejected;
//     a non-empty intersection contributes min(n x 10, 30)
//  4. a 4-digit year present on both sides and shared adds a flat 10
//  5. the total must reach the acceptance floor
//
// The result is symmetric in its arguments: accept/reject and score do not
// depend on order.
func (s *Scorer) Score(a, b domain.Market) (domain.MatchCandidate, bool) {
	if a.Venue == b.Venue {
		return domain.MatchCandidate{}, false
	}

	sim := TitleSimilarity(a.Title, b.Title)
	if sim < s.cfg.SimilarityFloor {
		return domain.MatchCandidate{}, false
	}
	score := sim * similarityWeight
	reasons := []string{fmt.Sprintf("title similarity %.0f%%", sim*100)}

	entitiesA := ExtractEntities(a.Title)
	entitiesB := ExtractEntities(b.Title)
	shared := intersect(entitiesA, entitiesB)
	if len(entitiesA) > 0 && len(entitiesB) > 0 && len(shared) == 0 {
		// Both titles carry extractable entities that disagree entirely:
		// same template about different specific events.
		return domain.MatchCandidate{}, false
	}
	if len(shared) > 0 {
		pts := float64(len(shared)) * entityPoints
		if pts > maxEntityPoints {
			pts = maxEntityPoints
		}
		score += pts
		reasons = append(reasons, "shared entities: "+strings.Join(shared, ", "))
	}

	yearsA := Years(a.Title)
	yearsB := Years(b.Title)
	if len(yearsA) > 0 && len(yearsB) > 0 {
		sharedYears := intersectSlices(yearsA, yearsB)
		if len(sharedYears) > 0 {
			score += yearPoints
			reasons = append(reasons, "shared year "+strings.Join(sharedYears, ", "))
		}
	}

	if score < s.cfg.MatchFloor {
		return domain.MatchCandidate{}, false
	}

	return domain.MatchCandidate{
		MarketAID: a.ID,
		MarketBID: b.ID,
		Score:     score,
		Reasons:   reasons,
	}, true
}

// Candidates runs the O(n^2) pairwise scan in ascending index-pair order.
// The emission order is the tie-break the assigner relies on for determinism.
func (s *Scorer) Candidates(markets []domain.Market) []domain.MatchCandidate {
	var candidates []domain.MatchCandidate
	for i := 0; i < len(markets); i++ {
		for j := i + 1; j < len(markets); j++ {
			if c, ok := s.Score(markets[i], markets[j]); ok {
				candidates = append(candidates, c)
			}
		}
	}
	return candidates
}

// intersectSlices returns the ordered intersection of two string slices,
// preserving the order of the first.
func intersectSlices(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var shared []string
	for _, s := range a {
		if inB[s] {
			shared = append(shared, s)
		}
	}
	return shared
}
